package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            int64           `db:"id" json:"id"`
	Name          string          `db:"name" json:"name"`
	Description   string          `db:"description" json:"description"`
	Category      string          `db:"category" json:"category"`
	Price         decimal.Decimal `db:"price" json:"price"`
	StockQuantity int32           `db:"stock_quantity" json:"stockQuantity"`
	Active        bool            `db:"active" json:"active"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}

// ProductPatch carries a partial update. A nil field is absent and leaves
// the stored value untouched.
type ProductPatch struct {
	Name          *string
	Description   *string
	Category      *string
	Price         *decimal.Decimal
	StockQuantity *int32
	Active        *bool
}

type ProductFilter struct {
	Category    *string
	Description *string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	Active      *bool
}
