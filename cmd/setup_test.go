package cmd

import "testing"

func TestValidateCost(t *testing.T) {
	for _, s := range []string{"0", "1.50", " 2 "} {
		if err := validateCost(s); err != nil {
			t.Errorf("validateCost(%q) = %v, want nil", s, err)
		}
	}
	for _, s := range []string{"", "abc", "-1", "NaN", "nan", "Inf", "+Inf", "-Inf", "infinity"} {
		if err := validateCost(s); err == nil {
			t.Errorf("validateCost(%q) = nil, want an error", s)
		}
	}
}
