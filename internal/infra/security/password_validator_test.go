package security

import (
	"errors"
	"testing"
)

func TestMinLengthRule(t *testing.T) {
	rule := MinLengthRule(8)

	if err := rule.Validate("short"); err == nil {
		t.Fatal("expected violation for short password")
	}
	if err := rule.Validate("long enough"); err != nil {
		t.Fatalf("unexpected violation: %v", err)
	}
}

func TestRequireCharacterClassesRule(t *testing.T) {
	rule := RequireCharacterClassesRule(3)

	if err := rule.Validate("alllowercase"); err == nil {
		t.Fatal("expected violation for single character class")
	}
	if err := rule.Validate("Mixed123"); err != nil {
		t.Fatalf("unexpected violation: %v", err)
	}
	if err := rule.Validate("mixed123!"); err != nil {
		t.Fatalf("unexpected violation: %v", err)
	}
}

func TestMinStrengthRule(t *testing.T) {
	rule := MinStrengthRule(2)

	err := rule.Validate("Password1")
	var verr *PasswordValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected PasswordValidationError, got %v", err)
	}
	if verr.Code != "strength" {
		t.Fatalf("expected code %q, got %q", "strength", verr.Code)
	}

	if err := rule.Validate("k9#Vortex-lamp"); err != nil {
		t.Fatalf("unexpected violation: %v", err)
	}
}

func TestPasswordValidatorForPolicy(t *testing.T) {
	strict := PasswordValidatorForPolicy(8, 3, 2)
	if err := strict.Validate("Password1"); err == nil {
		t.Fatal("expected violation with strength rule enabled")
	}

	lenient := PasswordValidatorForPolicy(8, 3, 0)
	if err := lenient.Validate("Secret1!"); err != nil {
		t.Fatalf("unexpected violation: %v", err)
	}

	fallback := PasswordValidatorForPolicy(0, 0, 0)
	if err := fallback.Validate("short"); err == nil {
		t.Fatal("expected default policy to reject short password")
	}
}

func TestDefaultPasswordValidator(t *testing.T) {
	validator := DefaultPasswordValidator()

	cases := []struct {
		name     string
		password string
		wantCode string
	}{
		{name: "too short", password: "Ab1!", wantCode: "min_length"},
		{name: "single class", password: "aaaaaaaaaaaa", wantCode: "character_classes"},
		{name: "acceptable", password: "k9#Vortex-lamp"},
		{name: "word with digit and symbol", password: "Secret1!"},
		{name: "phrase with trailing symbol", password: "NewSecret2!"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validator.Validate(tc.password)
			if tc.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected violation: %v", err)
				}
				return
			}

			var verr *PasswordValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected PasswordValidationError, got %v", err)
			}
			if verr.Code != tc.wantCode {
				t.Fatalf("expected code %q, got %q", tc.wantCode, verr.Code)
			}
		})
	}
}
