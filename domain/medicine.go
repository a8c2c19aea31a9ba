package domain

import "github.com/shopspring/decimal"

type Medicine struct {
	ID            int64           `db:"med_id" json:"id"`
	Name          string          `db:"name" json:"name"`
	Company       string          `db:"company" json:"company"`
	Category      string          `db:"category" json:"category"`
	PurchasePrice decimal.Decimal `db:"purchase_price" json:"purchase_price"`
	SalePrice     decimal.Decimal `db:"sale_price" json:"sale_price"`
	Quantity      int64           `db:"quantity" json:"quantity"`
	ExpiryDate    string          `db:"expiry_date" json:"expiry_date"`
}

// NewMedicine carries the validated fields of a medicine that has not been stored yet.
type NewMedicine struct {
	Name          string          `validate:"required"`
	Company       string
	Category      string
	PurchasePrice decimal.Decimal
	SalePrice     decimal.Decimal
	Quantity      int64  `validate:"gte=0"`
	ExpiryDate    string `validate:"omitempty,datetime=2006-01-02"`
}
