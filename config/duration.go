// config/duration.go
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// parseDurationFlexible accepts "90s"/"2m", plain seconds (string or number)
// or a time.Duration. Empty and unknown types yield def; invalid input yields
// def plus an error.
func parseDurationFlexible(raw interface{}, def time.Duration) (time.Duration, error) {
	switch t := raw.(type) {
	case time.Duration:
		if t <= 0 {
			return def, fmt.Errorf("duration must be >0")
		}
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return def, nil
		}
		if d, err := time.ParseDuration(s); err == nil {
			if d <= 0 {
				return def, fmt.Errorf("duration must be >0")
			}
			return d, nil
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return secondsDuration(n, def)
		}
		return def, fmt.Errorf("cannot parse duration %q", s)
	case int:
		return secondsDuration(int64(t), def)
	case int32:
		return secondsDuration(int64(t), def)
	case int64:
		return secondsDuration(t, def)
	case float64:
		if t <= 0 {
			return def, fmt.Errorf("seconds must be >0")
		}
		return time.Duration(t * float64(time.Second)), nil
	default:
		return def, nil
	}
}

func secondsDuration(n int64, def time.Duration) (time.Duration, error) {
	if n <= 0 {
		return def, fmt.Errorf("seconds must be >0")
	}
	return time.Duration(n) * time.Second, nil
}

// durationKey reads key from v through parseDurationFlexible, logging and
// falling back to def when the value is unusable.
func durationKey(logger *zap.Logger, v *viper.Viper, key string, def time.Duration) time.Duration {
	d, err := parseDurationFlexible(v.Get(key), def)
	if err != nil && logger != nil {
		logger.Warn("invalid duration; using default",
			zap.String("key", key),
			zap.Any("value", v.Get(key)),
			zap.Duration("default", def),
			zap.Error(err))
	}
	return d
}
