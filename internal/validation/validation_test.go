package validation

import "testing"

func TestRequired(t *testing.T) {
	v := make(Violations)
	Required("first_name", "  ", v)
	Required("last_name", "Dupont", v)
	if v["first_name"] != "required" {
		t.Errorf("blank value not flagged: %#v", v)
	}
	if _, ok := v["last_name"]; ok {
		t.Errorf("filled value flagged: %#v", v)
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		value string
		bad   bool
	}{
		{"a@b.fr", false},
		{"", false}, // emptiness is Required's job
		{"no-at-sign", true},
		{"@host.fr", true},
		{"user@", true},
		{"user@nodot", true},
	}
	for _, tt := range tests {
		v := make(Violations)
		Email("email", tt.value, v)
		if got := !v.Empty(); got != tt.bad {
			t.Errorf("Email(%q): flagged=%v want %v", tt.value, got, tt.bad)
		}
	}
}

func TestOneOf(t *testing.T) {
	v := make(Violations)
	OneOf("payment_method", "cash", []string{"cash", "card_in_shop", "online"}, v)
	OneOf("tier", "platine", []string{"custodia", "imperium"}, v)
	if !v.Empty() && v["payment_method"] != "" {
		t.Errorf("valid choice flagged: %#v", v)
	}
	if v["tier"] != "invalid_choice" {
		t.Errorf("invalid choice not flagged: %#v", v)
	}
}
