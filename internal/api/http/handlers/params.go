package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/org-directory/internal/domain"
	apperrors "github.com/spec-kit/org-directory/pkg/util/errorutil"
)

func parseIDParam(c *fiber.Ctx, key string) (int64, error) {
	raw := c.Params(key)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewInvalidArgument("invalid id", map[string]any{key: raw})
	}
	return id, nil
}

// parseDate reads a YYYY-MM-DD value. Blank input yields the zero time.
func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(domain.DateLayout, raw)
	if err != nil {
		return time.Time{}, apperrors.NewInvalidArgument("invalid date, expected YYYY-MM-DD", map[string]any{field: raw})
	}
	return t, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}

func parseDecimalQuery(c *fiber.Ctx, key string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return decimal.Zero, apperrors.NewInvalidArgument(key+" required", map[string]any{"field": key})
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperrors.NewInvalidArgument("invalid "+key, map[string]any{key: raw})
	}
	return d, nil
}

func invalidPayload() error {
	return apperrors.NewValidationError("invalid payload", nil)
}
