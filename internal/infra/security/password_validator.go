package security

import (
	"fmt"
	"unicode"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

// PasswordValidationError represents a single password policy violation.
type PasswordValidationError struct {
	Code    string
	Message string
}

// Error implements error for PasswordValidationError.
func (e *PasswordValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// PasswordRule validates a password according to a specific policy rule.
type PasswordRule interface {
	Validate(password string) error
}

// PasswordRuleFunc adapts a function to be used as a PasswordRule.
type PasswordRuleFunc func(password string) error

// Validate executes the underlying rule function.
func (f PasswordRuleFunc) Validate(password string) error {
	return f(password)
}

// PasswordValidator applies a sequence of password rules.
type PasswordValidator struct {
	rules []PasswordRule
}

// NewPasswordValidator constructs a validator with the provided rules.
func NewPasswordValidator(rules ...PasswordRule) *PasswordValidator {
	copied := make([]PasswordRule, len(rules))
	copy(copied, rules)
	return &PasswordValidator{rules: copied}
}

// DefaultPasswordValidator returns the policy applied to new account
// passwords: minimum length and character-class mix. The zxcvbn strength
// rule is not part of the default chain; deployments opt in through the
// password.min_strength setting.
func DefaultPasswordValidator() *PasswordValidator {
	return NewPasswordValidator(
		MinLengthRule(8),
		RequireCharacterClassesRule(3),
	)
}

// PasswordValidatorForPolicy builds a validator from configured thresholds.
// A threshold of zero disables its rule; all zero falls back to the default
// policy.
func PasswordValidatorForPolicy(minLength, minClasses, minStrength int) *PasswordValidator {
	rules := make([]PasswordRule, 0, 3)
	if minLength > 0 {
		rules = append(rules, MinLengthRule(minLength))
	}
	if minClasses > 0 {
		rules = append(rules, RequireCharacterClassesRule(minClasses))
	}
	if minStrength > 0 {
		rules = append(rules, MinStrengthRule(minStrength))
	}
	if len(rules) == 0 {
		return DefaultPasswordValidator()
	}
	return NewPasswordValidator(rules...)
}

// Validate executes all rules and returns the first encountered violation.
func (v *PasswordValidator) Validate(password string) error {
	if v == nil {
		return fmt.Errorf("password validator not configured")
	}
	for _, rule := range v.rules {
		if err := rule.Validate(password); err != nil {
			return err
		}
	}
	return nil
}

// MinLengthRule ensures the password has at least min characters.
func MinLengthRule(min int) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if len([]rune(password)) < min {
			return &PasswordValidationError{
				Code:    "min_length",
				Message: fmt.Sprintf("password must be at least %d characters long", min),
			}
		}
		return nil
	})
}

// RequireCharacterClassesRule ensures the password contains characters from at least min distinct classes (upper, lower, digit, symbol).
func RequireCharacterClassesRule(min int) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if min <= 0 {
			return nil
		}

		var (
			hasUpper  bool
			hasLower  bool
			hasDigit  bool
			hasSymbol bool
		)

		for _, r := range password {
			switch {
			case unicode.IsUpper(r):
				hasUpper = true
			case unicode.IsLower(r):
				hasLower = true
			case unicode.IsDigit(r):
				hasDigit = true
			case unicode.IsSymbol(r) || unicode.IsPunct(r):
				hasSymbol = true
			}
		}

		classes := 0
		if hasUpper {
			classes++
		}
		if hasLower {
			classes++
		}
		if hasDigit {
			classes++
		}
		if hasSymbol {
			classes++
		}

		if classes >= min {
			return nil
		}

		return &PasswordValidationError{
			Code:    "character_classes",
			Message: fmt.Sprintf("password must include at least %d character types", min),
		}
	})
}

// MinStrengthRule rejects passwords scoring below min on the zxcvbn 0-4 scale.
func MinStrengthRule(min int) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if min <= 0 {
			return nil
		}

		result := zxcvbn.PasswordStrength(password, nil)
		if result.Score >= min {
			return nil
		}

		return &PasswordValidationError{
			Code:    "strength",
			Message: "password is too predictable",
		}
	})
}
