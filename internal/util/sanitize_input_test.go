package util

import "testing"

func TestSanitizeInput(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  hello  ", "hello"},
		{"<script>alert(1)</script>", "&lt;script&gt;alert(1)&lt;/script&gt;"},
		{"plain", "plain"},
	}
	for _, tc := range cases {
		if got := SanitizeInput(tc.in); got != tc.want {
			t.Errorf("SanitizeInput(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidPhone(t *testing.T) {
	valid := []string{"5551234", "0", "447911123456"}
	for _, s := range valid {
		if !ValidPhone(s) {
			t.Errorf("ValidPhone(%q) = false, want true", s)
		}
	}

	invalid := []string{"", "555-1234", "+15551234", "555 1234", "abc"}
	for _, s := range invalid {
		if ValidPhone(s) {
			t.Errorf("ValidPhone(%q) = true, want false", s)
		}
	}
}

func TestValidCountryCode(t *testing.T) {
	valid := []string{"+1", "1", "+44", "91"}
	for _, s := range valid {
		if !ValidCountryCode(s) {
			t.Errorf("ValidCountryCode(%q) = false, want true", s)
		}
	}

	invalid := []string{"", "+", "US", "+1a", "++1"}
	for _, s := range invalid {
		if ValidCountryCode(s) {
			t.Errorf("ValidCountryCode(%q) = true, want false", s)
		}
	}
}
