// config/config.go
// Package config loads formrelay settings from defaults, config files,
// FORMRELAY_* environment variables and command-line flags.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dalemusser/formrelay/logging"
	"github.com/dalemusser/formrelay/pantry/validate"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix is prepended to every key when reading environment variables,
// e.g. http_port -> FORMRELAY_HTTP_PORT.
const EnvPrefix = "FORMRELAY"

// Mail providers understood by MailConfig.Provider.
const (
	ProviderSMTP     = "smtp"
	ProviderPostmark = "postmark"
	ProviderResend   = "resend"
	ProviderSES      = "ses"
	ProviderLog      = "log"
)

// Rate limit stores understood by RateLimitConfig.Store.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// HTTPConfig groups HTTP/HTTPS port and protocol settings.
type HTTPConfig struct {
	HTTPPort  int  `mapstructure:"http_port"`
	HTTPSPort int  `mapstructure:"https_port"`
	UseHTTPS  bool `mapstructure:"use_https"`

	ReadHeaderTimeout time.Duration `mapstructure:"-"`
	ShutdownTimeout   time.Duration `mapstructure:"-"`
}

// TLSConfig groups manual TLS and Let's Encrypt (http-01) settings.
type TLSConfig struct {
	CertFile            string `mapstructure:"cert_file"`
	KeyFile             string `mapstructure:"key_file"`
	UseLetsEncrypt      bool   `mapstructure:"use_lets_encrypt"`
	LetsEncryptEmail    string `mapstructure:"lets_encrypt_email"`
	LetsEncryptCacheDir string `mapstructure:"lets_encrypt_cache_dir"`
	Domain              string `mapstructure:"domain"`
}

// CORSConfig groups all CORS behavior and lists.
type CORSConfig struct {
	EnableCORS           bool     `mapstructure:"enable_cors"`
	CORSAllowedOrigins   []string `mapstructure:"cors_allowed_origins"`
	CORSAllowedMethods   []string `mapstructure:"cors_allowed_methods"`
	CORSAllowedHeaders   []string `mapstructure:"cors_allowed_headers"`
	CORSAllowCredentials bool     `mapstructure:"cors_allow_credentials"`
	CORSMaxAge           int      `mapstructure:"cors_max_age"`
}

// SecurityConfig toggles the response security headers.
type SecurityConfig struct {
	EnableSecurityHeaders bool   `mapstructure:"enable_security_headers"`
	ContentSecurityPolicy string `mapstructure:"content_security_policy"`
}

// LogConfig controls the optional rotating log file. Stderr is always used.
type LogConfig struct {
	File       string `mapstructure:"log_file"`
	MaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	MaxBackups int    `mapstructure:"log_max_backups"`
	MaxAgeDays int    `mapstructure:"log_max_age_days"`
}

// RelayConfig controls where submissions are delivered and how the
// notification email reads.
type RelayConfig struct {
	// DefaultTo is the fixed destination for POST /. Empty means POST /
	// answers with a missing-destination error.
	DefaultTo string `mapstructure:"relay_default_to"`

	// AllowPathDestination mounts POST /{destinationEmail}.
	AllowPathDestination bool `mapstructure:"relay_allow_path_destination"`

	// SiteURL is quoted in the notification body.
	SiteURL string `mapstructure:"relay_site_url"`

	Subject string `mapstructure:"relay_subject"`
}

// RateLimitConfig caps submissions per client IP.
type RateLimitConfig struct {
	Requests int           `mapstructure:"rate_limit_requests"`
	Window   time.Duration `mapstructure:"-"`
	Store    string        `mapstructure:"rate_limit_store"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

// MailConfig selects and configures the mail provider.
type MailConfig struct {
	Provider string `mapstructure:"mail_provider"`
	From     string `mapstructure:"mail_from"`
	FromName string `mapstructure:"mail_from_name"`

	SMTPHost     string        `mapstructure:"smtp_host"`
	SMTPPort     int           `mapstructure:"smtp_port"`
	SMTPUsername string        `mapstructure:"smtp_username"`
	SMTPPassword string        `mapstructure:"smtp_password"`
	SMTPUseSSL   bool          `mapstructure:"smtp_use_ssl"`
	SMTPTimeout  time.Duration `mapstructure:"-"`

	PostmarkServerToken  string `mapstructure:"postmark_server_token"`
	PostmarkAccountToken string `mapstructure:"postmark_account_token"`

	ResendAPIKey string `mapstructure:"resend_api_key"`

	// SES credentials are optional; the AWS default chain applies without them.
	SESRegion          string `mapstructure:"ses_region"`
	SESAccessKeyID     string `mapstructure:"ses_access_key_id"`
	SESSecretAccessKey string `mapstructure:"ses_secret_access_key"`
	SESEndpoint        string `mapstructure:"ses_endpoint"`
}

// CaptchaConfig enables reCAPTCHA verification of submissions.
type CaptchaConfig struct {
	Secret   string `mapstructure:"recaptcha_secret"`
	Required bool   `mapstructure:"recaptcha_required"`
}

// Config is the complete, immutable configuration of a formrelay process.
// It is built once by Load and passed by pointer to everything that needs it.
type Config struct {
	// runtime
	Env      string `mapstructure:"env"`       // "dev" | "prod"
	LogLevel string `mapstructure:"log_level"` // debug, info, warn, error …

	// PublicURL is only used for the startup log line in prod.
	PublicURL string `mapstructure:"public_url"`

	Log       LogConfig       `mapstructure:",squash"`
	HTTP      HTTPConfig      `mapstructure:",squash"`
	TLS       TLSConfig       `mapstructure:",squash"`
	CORS      CORSConfig      `mapstructure:",squash"`
	Security  SecurityConfig  `mapstructure:",squash"`
	Relay     RelayConfig     `mapstructure:",squash"`
	RateLimit RateLimitConfig `mapstructure:",squash"`
	Mail      MailConfig      `mapstructure:",squash"`
	Captcha   CaptchaConfig   `mapstructure:",squash"`

	MaxRequestBodyBytes int64 `mapstructure:"max_request_body_bytes"`
	EnableCompression   bool  `mapstructure:"enable_compression"`
}

// IsProd reports whether the process runs in production mode.
func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

// Dump returns a pretty, redacted JSON string of the config for debugging.
// Use at debug level only.
func (c Config) Dump() string {
	s := c.redactedCopy()
	b, _ := json.MarshalIndent(s, "", "  ")
	return string(b)
}

func (c Config) redactedCopy() Config {
	cp := c
	cp.Mail.SMTPPassword = redact(cp.Mail.SMTPPassword)
	cp.Mail.PostmarkServerToken = redact(cp.Mail.PostmarkServerToken)
	cp.Mail.PostmarkAccountToken = redact(cp.Mail.PostmarkAccountToken)
	cp.Mail.ResendAPIKey = redact(cp.Mail.ResendAPIKey)
	cp.Mail.SESSecretAccessKey = redact(cp.Mail.SESSecretAccessKey)
	cp.RateLimit.RedisPassword = redact(cp.RateLimit.RedisPassword)
	cp.Captcha.Secret = redact(cp.Captcha.Secret)
	return cp
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "[redacted]"
}

// Load merges defaults → config.* file(s) → env vars → explicit flags into one Config,
// reading flags from the process command line.
// Final precedence (highest wins): flags(explicit) > env > config > defaults.
func Load(logger *zap.Logger) (*Config, error) {
	return LoadFrom(logger, pflag.CommandLine, os.Args[1:])
}

// LoadFrom is Load with an explicit flag set and argument list.
func LoadFrom(logger *zap.Logger, fs *pflag.FlagSet, args []string) (*Config, error) {
	// 0) Optionally load .env (safe: real env still wins over .env)
	if err := godotenv.Load(); err == nil && logger != nil {
		logger.Info("Loaded .env file")
	}

	// 1) Define flags (only *explicitly set* flags will override)
	defineFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// 2) Viper + env
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, k := range allKeys() {
		_ = v.BindEnv(k)
	}
	// PaaS hosts hand the port over as plain PORT.
	_ = v.BindEnv("http_port", EnvPrefix+"_HTTP_PORT", "PORT")

	// 3) Optional config.* files (yaml|yml|json|toml)
	mergeConfigFiles(logger, v)

	// 4) Defaults (lowest precedence)
	setDefaults(v)

	// 5) Apply *explicit* flags (highest precedence)
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			_ = v.BindPFlag(f.Name, f)
		}
	})

	// 6) Normalize list keys (accept JSON strings → []string)
	if err := normalizeListKeys(logger, v,
		"cors_allowed_origins",
		"cors_allowed_methods",
		"cors_allowed_headers",
	); err != nil {
		return nil, err
	}

	// 7) Build struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.HTTP.ReadHeaderTimeout = durationKey(logger, v, "read_header_timeout", 10*time.Second)
	cfg.HTTP.ShutdownTimeout = durationKey(logger, v, "shutdown_timeout", 15*time.Second)
	cfg.RateLimit.Window = durationKey(logger, v, "rate_limit_window", time.Minute)
	cfg.Mail.SMTPTimeout = durationKey(logger, v, "smtp_timeout", 30*time.Second)

	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.Mail.Provider = strings.ToLower(strings.TrimSpace(cfg.Mail.Provider))
	cfg.RateLimit.Store = strings.ToLower(strings.TrimSpace(cfg.RateLimit.Store))
	cfg.Relay.DefaultTo = strings.TrimSpace(cfg.Relay.DefaultTo)

	// 8) Validate
	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defineFlags(fs *pflag.FlagSet) {
	fs.String("env", "dev", `Runtime environment "dev"|"prod"`)
	fs.String("log_level", "debug", "Log level")
	fs.String("log_file", "", "Optional rotating log file (stderr is always used)")
	fs.String("public_url", "", "Public base URL, logged at startup in prod")

	fs.Int("http_port", 3000, "HTTP port")
	fs.Int("https_port", 443, "HTTPS port")
	fs.Bool("use_https", false, "Serve HTTPS")
	fs.String("shutdown_timeout", "15s", "Graceful shutdown window")

	fs.Bool("use_lets_encrypt", false, "Use Let's Encrypt (http-01)")
	fs.String("lets_encrypt_email", "", "ACME account e-mail")
	fs.String("cert_file", "", "TLS cert file (manual TLS)")
	fs.String("key_file", "", "TLS key file  (manual TLS)")
	fs.String("domain", "", "Domain for TLS or ACME")

	fs.Bool("enable_cors", false, "Enable CORS")
	fs.String("cors_allowed_origins", "", `JSON array of origins, e.g. '["https://a.example"]'`)

	fs.String("relay_default_to", "contact@fleamarketyo.it", "Destination address for POST /")
	fs.Bool("relay_allow_path_destination", true, "Accept POST /{destinationEmail}")

	fs.Int("rate_limit_requests", 5, "Submissions allowed per client per window")
	fs.String("rate_limit_window", "1m", "Rate limit window")
	fs.String("rate_limit_store", StoreMemory, "Rate limit store: memory|redis")

	fs.String("mail_provider", ProviderLog, "Mail provider: smtp|postmark|resend|ses|log")
	fs.String("mail_from", "", "Sender address of relayed mail")
}

func mergeConfigFiles(logger *zap.Logger, v *viper.Viper) {
	for _, ext := range [...]string{"yaml", "yml", "json", "toml"} {
		file := "config." + ext
		if _, err := os.Stat(file); err != nil {
			continue
		}
		b, err := os.ReadFile(file)
		if err != nil {
			if logger != nil {
				logger.Warn("cannot read config file", zap.String("file", file), zap.Error(err))
			}
			continue
		}
		v.SetConfigType(ext)
		if err := v.MergeConfig(bytes.NewReader(b)); err != nil {
			if logger != nil {
				logger.Warn("cannot decode config file", zap.String("file", file), zap.Error(err))
			}
			continue
		}
		if logger != nil {
			logger.Info("Loaded config file", zap.String("file", file))
		}
	}
}

func allKeys() []string {
	return []string{
		"env", "log_level", "public_url",
		"log_file", "log_max_size_mb", "log_max_backups", "log_max_age_days",
		"http_port", "https_port", "use_https", "read_header_timeout", "shutdown_timeout",
		"use_lets_encrypt", "lets_encrypt_email", "lets_encrypt_cache_dir",
		"cert_file", "key_file", "domain",
		"enable_cors",
		"cors_allowed_origins", "cors_allowed_methods", "cors_allowed_headers",
		"cors_allow_credentials", "cors_max_age",
		"enable_security_headers", "content_security_policy",
		"max_request_body_bytes", "enable_compression",
		"relay_default_to", "relay_allow_path_destination", "relay_site_url", "relay_subject",
		"rate_limit_requests", "rate_limit_window", "rate_limit_store",
		"redis_addr", "redis_password", "redis_db",
		"mail_provider", "mail_from", "mail_from_name",
		"smtp_host", "smtp_port", "smtp_username", "smtp_password", "smtp_use_ssl", "smtp_timeout",
		"postmark_server_token", "postmark_account_token",
		"resend_api_key",
		"ses_region", "ses_access_key_id", "ses_secret_access_key", "ses_endpoint",
		"recaptcha_secret", "recaptcha_required",
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("log_level", "debug")
	v.SetDefault("public_url", "")

	v.SetDefault("log_file", "")
	v.SetDefault("log_max_size_mb", 50)
	v.SetDefault("log_max_backups", 5)
	v.SetDefault("log_max_age_days", 30)

	v.SetDefault("http_port", 3000)
	v.SetDefault("https_port", 443)
	v.SetDefault("use_https", false)
	v.SetDefault("read_header_timeout", "10s")
	v.SetDefault("shutdown_timeout", "15s")

	v.SetDefault("use_lets_encrypt", false)
	v.SetDefault("lets_encrypt_email", "")
	v.SetDefault("lets_encrypt_cache_dir", "letsencrypt-cache")
	v.SetDefault("cert_file", "")
	v.SetDefault("key_file", "")
	v.SetDefault("domain", "")

	v.SetDefault("enable_cors", false)
	v.SetDefault("cors_allowed_origins", []string{})
	v.SetDefault("cors_allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("cors_allowed_headers", []string{"Accept", "Content-Type"})
	v.SetDefault("cors_allow_credentials", false)
	v.SetDefault("cors_max_age", 300)

	v.SetDefault("enable_security_headers", true)
	v.SetDefault("content_security_policy", "")

	v.SetDefault("max_request_body_bytes", int64(64<<10))
	v.SetDefault("enable_compression", true)

	v.SetDefault("relay_default_to", "contact@fleamarketyo.it")
	v.SetDefault("relay_allow_path_destination", true)
	v.SetDefault("relay_site_url", "https://www.fleamarketyo.it/")
	v.SetDefault("relay_subject", "Nuovo contatto")

	v.SetDefault("rate_limit_requests", 5)
	v.SetDefault("rate_limit_window", "1m")
	v.SetDefault("rate_limit_store", StoreMemory)
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	v.SetDefault("mail_provider", ProviderLog)
	v.SetDefault("mail_from", "")
	v.SetDefault("mail_from_name", "")
	v.SetDefault("smtp_host", "")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("smtp_username", "")
	v.SetDefault("smtp_password", "")
	v.SetDefault("smtp_use_ssl", false)
	v.SetDefault("smtp_timeout", "30s")
	v.SetDefault("postmark_server_token", "")
	v.SetDefault("postmark_account_token", "")
	v.SetDefault("resend_api_key", "")
	v.SetDefault("ses_region", "")
	v.SetDefault("ses_access_key_id", "")
	v.SetDefault("ses_secret_access_key", "")
	v.SetDefault("ses_endpoint", "")

	v.SetDefault("recaptcha_secret", "")
	v.SetDefault("recaptcha_required", false)
}

// normalizeListKeys coerces JSON-string values into []string for the given keys.
func normalizeListKeys(logger *zap.Logger, v *viper.Viper, keys ...string) error {
	for _, key := range keys {
		val := v.Get(key)
		switch t := val.(type) {
		case string:
			s := strings.TrimSpace(t)
			if s == "" {
				continue
			}
			var arr []string
			if err := json.Unmarshal([]byte(s), &arr); err != nil {
				return fmt.Errorf("config key %q expects a JSON array string, got %q: %w", key, s, err)
			}
			v.Set(key, arr)
		case []interface{}:
			arr := make([]string, 0, len(t))
			for _, e := range t {
				arr = append(arr, fmt.Sprint(e))
			}
			v.Set(key, arr)
		case []string, nil:
		default:
			if logger != nil {
				logger.Warn("unexpected type for list key; expected JSON array/string",
					zap.String("key", key), zap.Any("value", t))
			}
		}
	}
	return nil
}

// Validate checks cross-field consistency. It is exported so tests and
// embedding programs can validate hand-built configs.
func Validate(cfg Config) error {
	var missing []string
	var invalid []string

	if cfg.Env != "dev" && cfg.Env != "prod" {
		invalid = append(invalid, `env must be "dev" or "prod"`)
	}
	if !logging.IsValidLogLevel(cfg.LogLevel) {
		invalid = append(invalid, "log_level must be one of "+strings.Join(logging.ValidLogLevels, ", "))
	}

	// TLS / ACME consistency
	if cfg.TLS.UseLetsEncrypt && !cfg.HTTP.UseHTTPS {
		invalid = append(invalid, "use_lets_encrypt=true requires use_https=true")
	}
	if cfg.TLS.UseLetsEncrypt {
		if strings.TrimSpace(cfg.TLS.Domain) == "" {
			missing = append(missing, "FORMRELAY_DOMAIN (or --domain) for Let's Encrypt")
		}
		if !validate.IsEmail(cfg.TLS.LetsEncryptEmail) {
			invalid = append(invalid, "lets_encrypt_email must look like an email address")
		}
	}
	if cfg.HTTP.UseHTTPS && !cfg.TLS.UseLetsEncrypt {
		if strings.TrimSpace(cfg.TLS.CertFile) == "" || strings.TrimSpace(cfg.TLS.KeyFile) == "" {
			missing = append(missing, "FORMRELAY_CERT_FILE and FORMRELAY_KEY_FILE for manual TLS")
		}
	}

	// Port sanity
	if cfg.HTTP.HTTPPort <= 0 || cfg.HTTP.HTTPPort > 65535 {
		invalid = append(invalid, "http_port must be in 1..65535")
	}
	if cfg.HTTP.UseHTTPS && (cfg.HTTP.HTTPSPort <= 0 || cfg.HTTP.HTTPSPort > 65535) {
		invalid = append(invalid, "https_port must be in 1..65535")
	}

	// CORS sanity
	if cfg.CORS.EnableCORS {
		if len(cfg.CORS.CORSAllowedOrigins) == 0 {
			missing = append(missing, "CORS: cors_allowed_origins (JSON array) required when enable_cors=true")
		}
		for _, o := range cfg.CORS.CORSAllowedOrigins {
			if o == "*" && cfg.CORS.CORSAllowCredentials {
				invalid = append(invalid, `CORS: cannot use "*" in cors_allowed_origins when cors_allow_credentials=true`)
				break
			}
		}
	}

	// Relay routing
	if cfg.Relay.DefaultTo == "" && !cfg.Relay.AllowPathDestination {
		invalid = append(invalid, "relay_default_to is empty and relay_allow_path_destination=false; no route can deliver")
	}
	if cfg.Relay.DefaultTo != "" && !validate.IsEmail(cfg.Relay.DefaultTo) {
		invalid = append(invalid, "relay_default_to must look like an email address")
	}

	// Rate limiting
	if cfg.RateLimit.Requests <= 0 {
		invalid = append(invalid, "rate_limit_requests must be > 0")
	}
	switch cfg.RateLimit.Store {
	case StoreMemory:
	case StoreRedis:
		if strings.TrimSpace(cfg.RateLimit.RedisAddr) == "" {
			missing = append(missing, "redis_addr for rate_limit_store=redis")
		}
	default:
		invalid = append(invalid, `rate_limit_store must be "memory" or "redis"`)
	}

	// Mail provider
	switch cfg.Mail.Provider {
	case ProviderLog:
	case ProviderSMTP:
		if strings.TrimSpace(cfg.Mail.SMTPHost) == "" {
			missing = append(missing, "smtp_host for mail_provider=smtp")
		}
	case ProviderPostmark:
		if cfg.Mail.PostmarkServerToken == "" {
			missing = append(missing, "postmark_server_token for mail_provider=postmark")
		}
	case ProviderResend:
		if cfg.Mail.ResendAPIKey == "" {
			missing = append(missing, "resend_api_key for mail_provider=resend")
		}
	case ProviderSES:
		if strings.TrimSpace(cfg.Mail.SESRegion) == "" {
			missing = append(missing, "ses_region for mail_provider=ses")
		}
		if (cfg.Mail.SESAccessKeyID == "") != (cfg.Mail.SESSecretAccessKey == "") {
			invalid = append(invalid, "ses_access_key_id and ses_secret_access_key must be set together")
		}
	default:
		invalid = append(invalid, `mail_provider must be one of "smtp", "postmark", "resend", "ses", "log"`)
	}
	if cfg.Mail.Provider != ProviderLog && !validate.IsEmail(cfg.Mail.From) {
		invalid = append(invalid, "mail_from must look like an email address")
	}

	if cfg.Captcha.Required && cfg.Captcha.Secret == "" {
		missing = append(missing, "recaptcha_secret when recaptcha_required=true")
	}

	if len(missing) == 0 && len(invalid) == 0 {
		return nil
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		parts = append(parts, "invalid: "+strings.Join(invalid, ", "))
	}
	return fmt.Errorf("configuration errors: %s", strings.Join(parts, " | "))
}
