package errors

import (
	"strings"
	"testing"
)

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"app key", "com.example.mailMainAbilityentry", false},
		{"card id", "4711", false},
		{"uuid", "0b6f8d52-3c1e-4a57-9e0e-0d7f2b7c9a11", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 600), true},
		{"slash", "foo/bar", true},
		{"backslash", "foo\\bar", true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateKey(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateKey(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateBundleName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"reverse dns", "com.example.mail", false},
		{"single segment", "settings", false},

		{"empty", "", true},
		{"space", "com.example mail", true},
		{"leading dot", ".com.example", true},
		{"trailing dot", "com.example.", true},
		{"empty segment", "com..example", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBundleName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateBundleName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && GetCode(err) != ErrCodeInvalidInput {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidInput)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"absolute", "/var/lib/deskgrid/layout.db", false},
		{"relative", "layout.db", false},

		{"empty", "", true},
		{"null byte", "layout\x00.db", true},
		{"too long", strings.Repeat("x", 5000), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
