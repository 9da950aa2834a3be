package validate

import (
	"testing"
)

type contact struct {
	Name    string `schema:"name" validate:"required,max=10"`
	Email   string `schema:"email" validate:"required,email"`
	Message string `schema:"message" validate:"required"`
	Ignored string `schema:"-"`
}

func TestStruct_Valid(t *testing.T) {
	errs := Struct(contact{Name: "Ann", Email: "ann@x.com", Message: "hi"})
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if errs != nil {
		t.Fatalf("valid struct should return nil, got %#v", errs)
	}
}

func TestStruct_OrderedFieldErrors(t *testing.T) {
	errs := Struct(contact{Name: "", Email: "not-an-email", Message: ""})

	want := []struct {
		field, rule string
	}{
		{"name", "required"},
		{"email", "email"},
		{"message", "required"},
	}
	if len(errs) != len(want) {
		t.Fatalf("got %d errors (%v), want %d", len(errs), errs, len(want))
	}
	for i, w := range want {
		if errs[i].Field != w.field || errs[i].Rule != w.rule {
			t.Errorf("errs[%d] = %s/%s, want %s/%s", i, errs[i].Field, errs[i].Rule, w.field, w.rule)
		}
	}
}

func TestStruct_MaxMessage(t *testing.T) {
	errs := Struct(contact{Name: "abcdefghijk", Email: "a@b.co", Message: "x"})
	if len(errs) != 1 {
		t.Fatalf("got %v, want one error", errs)
	}
	if got, want := errs[0].Message, "must be at most 10 characters"; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}

func TestErrors_Fields(t *testing.T) {
	errs := Errors{
		{Field: "email", Rule: "required"},
		{Field: "email", Rule: "email"},
		{Field: "name", Rule: "required"},
	}
	got := errs.Fields()
	if len(got) != 2 || got[0] != "email" || got[1] != "name" {
		t.Errorf("Fields() = %v, want [email name]", got)
	}
}

func TestIsEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"ann@x.com", true},
		{"  jane@biz.com  ", true},
		{"", false},
		{"   ", false},
		{"no-at-sign", false},
		{"@missing-local.com", false},
		{"trailing@", false},
	}
	for _, tt := range tests {
		if got := IsEmail(tt.in); got != tt.want {
			t.Errorf("IsEmail(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
