package sanitize_test

import (
	"testing"

	"github.com/fleetadmin/fleet-api/internal/sanitize"
)

func TestText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Civic  ", "Civic"},
		{"<script>alert(1)</script>", "&lt;script&gt;alert(1)&lt;/script&gt;"},
		{"Red & Black", "Red &amp; Black"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitize.Text(tt.in); got != tt.want {
			t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Admin@Example.COM ", "admin@example.com"},
		{"user@test.local", "user@test.local"},
	}
	for _, tt := range tests {
		if got := sanitize.Email(tt.in); got != tt.want {
			t.Errorf("Email(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
