package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/aserras/webfront/internal/billing"
	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("plan", validatePlan); err != nil {
		panic(fmt.Sprintf("failed to register plan validator: %v", err))
	}
}

// validatePlan validates that a string names a purchasable plan.
func validatePlan(fl validator.FieldLevel) bool {
	switch billing.NormalizePlan(fl.Field().String()) {
	case billing.PlanPro, billing.PlanEnterprise:
		return true
	default:
		return false
	}
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidatePlan validates a plan string value.
func ValidatePlan(value string) error {
	switch billing.NormalizePlan(value) {
	case billing.PlanPro, billing.PlanEnterprise:
		return nil
	default:
		return fmt.Errorf("invalid plan: %s (must be 'pro' or 'enterprise')", value)
	}
}
