package console

import (
	"fmt"
	"strconv"
	"strings"

	"medstore/m/domain"
	"medstore/m/internal/render"
)

const selectorSeparator = " - "

// ParseSelector extracts the medicine id from a selector such as
// "3 - Paracetamol" or "3 - Paracetamol (₹2.0, Stock: 50)". A bare id is
// accepted too.
func ParseSelector(selector string) (int64, error) {
	raw := strings.TrimSpace(selector)
	if raw == "" {
		return 0, domain.NewValidationError("medicine", "is required")
	}
	if i := strings.Index(raw, selectorSeparator); i >= 0 {
		raw = strings.TrimSpace(raw[:i])
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("medicine", fmt.Sprintf("selector %q does not start with a medicine id", selector))
	}
	return id, nil
}

// Selector formats the plain "id - name" selector.
func Selector(m domain.Medicine) string {
	return fmt.Sprintf("%d%s%s", m.ID, selectorSeparator, m.Name)
}

// BillingSelector formats the selector offered when adding to a bill.
func BillingSelector(m domain.Medicine) string {
	return fmt.Sprintf("%s (₹%s, Stock: %d)", Selector(m), render.Number(m.SalePrice), m.Quantity)
}
