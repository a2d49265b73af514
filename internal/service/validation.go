package service

import (
	"unicode/utf8"

	"github.com/shopspring/decimal"

	apperrors "github.com/spec-kit/org-directory/pkg/util/errorutil"
)

// Column limits of migrations/001_init.sql. Both stores enforce them here so
// they accept the same inputs.
const (
	maxNameLength        = 100
	maxEmailLength       = 255
	maxDescriptionLength = 500
	salaryScale          = 2
)

// maxSalary is the exclusive upper bound of NUMERIC(12,2).
var maxSalary = decimal.New(1, 10)

func checkLength(field, value string, limit int) error {
	if n := utf8.RuneCountInString(value); n > limit {
		return apperrors.NewValidationError(field+" too long", map[string]any{
			"field":  field,
			"max":    limit,
			"length": n,
		})
	}
	return nil
}

func checkSalary(salary decimal.Decimal) error {
	switch {
	case salary.IsNegative():
		return apperrors.NewInvalidArgument("salary must not be negative", map[string]any{"salary": salary.String()})
	case !salary.Equal(salary.Round(salaryScale)):
		return apperrors.NewInvalidArgument("salary allows at most 2 decimal places", map[string]any{"salary": salary.String()})
	case salary.GreaterThanOrEqual(maxSalary):
		return apperrors.NewInvalidArgument("salary out of range", map[string]any{
			"salary": salary.String(),
			"max":    maxSalary.Sub(decimal.New(1, -salaryScale)).StringFixed(salaryScale),
		})
	}
	return nil
}

// firstErr returns the first non-nil error.
func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
