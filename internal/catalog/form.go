package catalog

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"medstore/m/domain"
)

// MedicineForm holds the raw field values typed by the operator.
type MedicineForm struct {
	Name          string
	Company       string
	Category      string
	PurchasePrice string
	SalePrice     string
	Quantity      string
	ExpiryDate    string
}

var validate = validator.New()

// ParseForm converts raw form values into a NewMedicine. Empty numeric fields
// are treated as zero.
func ParseForm(f MedicineForm) (domain.NewMedicine, error) {
	purchase, err := parseAmount("purchase_price", f.PurchasePrice, true)
	if err != nil {
		return domain.NewMedicine{}, err
	}
	sale, err := parseAmount("sale_price", f.SalePrice, true)
	if err != nil {
		return domain.NewMedicine{}, err
	}

	var quantity int64
	if raw := strings.TrimSpace(f.Quantity); raw != "" {
		quantity, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return domain.NewMedicine{}, domain.NewValidationError("quantity", "must be a whole number")
		}
	}

	m := domain.NewMedicine{
		Name:          strings.TrimSpace(f.Name),
		Company:       strings.TrimSpace(f.Company),
		Category:      strings.TrimSpace(f.Category),
		PurchasePrice: purchase,
		SalePrice:     sale,
		Quantity:      quantity,
		ExpiryDate:    strings.TrimSpace(f.ExpiryDate),
	}
	if err := validateMedicine(m); err != nil {
		return domain.NewMedicine{}, err
	}
	return m, nil
}

// ParsePrice parses a non-negative price typed by the operator.
func ParsePrice(raw string) (decimal.Decimal, error) {
	return parseAmount("price", raw, false)
}

func parseAmount(field, raw string, allowEmpty bool) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if allowEmpty {
			return decimal.Zero, nil
		}
		return decimal.Zero, domain.NewValidationError(field, "is required")
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, domain.NewValidationError(field, "must be a number")
	}
	if amount.IsNegative() {
		return decimal.Zero, domain.NewValidationError(field, "must not be negative")
	}
	return amount, nil
}

func validateMedicine(m domain.NewMedicine) error {
	if m.PurchasePrice.IsNegative() {
		return domain.NewValidationError("purchase_price", "must not be negative")
	}
	if m.SalePrice.IsNegative() {
		return domain.NewValidationError("sale_price", "must not be negative")
	}

	err := validate.Struct(m)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return domain.NewValidationError("", err.Error())
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return domain.NewValidationError(fieldName(fe.Field()), "is required")
	case "gte":
		return domain.NewValidationError(fieldName(fe.Field()), "must not be negative")
	case "datetime":
		return domain.NewValidationError(fieldName(fe.Field()), "must be a date in YYYY-MM-DD format")
	default:
		return domain.NewValidationError(fieldName(fe.Field()), "is invalid")
	}
}

func fieldName(structField string) string {
	switch structField {
	case "Name":
		return "name"
	case "Quantity":
		return "quantity"
	case "ExpiryDate":
		return "expiry_date"
	default:
		return strings.ToLower(structField)
	}
}
