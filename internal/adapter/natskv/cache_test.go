package natskv

import "testing"

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"epic:42:abc123", "epic.42.abc123"},
		{"plain-key_ok/1.0=x", "plain-key_ok/1.0=x"},
		{"spaces here", "spaces.here"},
	}
	for _, tt := range tests {
		if got := sanitizeKey(tt.in); got != tt.want {
			t.Errorf("sanitizeKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
