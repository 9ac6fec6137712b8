package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

type OrderType string

const (
	OrderTypeMarket    OrderType = "market"
	OrderTypeLimit     OrderType = "limit"
	OrderTypeProtected OrderType = "protected"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusFilled    OrderStatus = "filled"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRejected  OrderStatus = "rejected"
	OrderStatusExpired   OrderStatus = "expired"
)

// IsTerminal reports whether no further transitions are allowed from the status.
// Only pending orders may still move.
func (s OrderStatus) IsTerminal() bool {
	return s != OrderStatusPending
}

// Order is a buy or sell request for tokenized gold, tracked through its lifecycle.
// Monetary and quantity fields are exact decimals; the nullable ones are set only
// once the lifecycle reaches the state that defines them.
type Order struct {
	ID               string           `db:"id"                 json:"id"`
	InvestorID       string           `db:"investor_id"        json:"investorId"`
	Side             OrderSide        `db:"side"               json:"side"`
	OrderType        OrderType        `db:"order_type"         json:"orderType"`
	Status           OrderStatus      `db:"status"             json:"status"`
	TokenAmount      decimal.Decimal  `db:"token_amount"       json:"tokenAmount"`
	GoldGrams        decimal.Decimal  `db:"gold_grams"         json:"goldGrams"`
	LimitPriceEur    *decimal.Decimal `db:"limit_price_eur"    json:"limitPriceEur"`
	ProtectedExitEur *decimal.Decimal `db:"protected_exit_eur" json:"protectedExitEur"`
	ExecutedPriceEur *decimal.Decimal `db:"executed_price_eur" json:"executedPriceEur"`
	TotalEur         *decimal.Decimal `db:"total_eur"          json:"totalEur"`
	InvestorNote     *string          `db:"investor_note"      json:"investorNote"`
	CreatedAt        time.Time        `db:"created_at"         json:"createdAt"`
	UpdatedAt        time.Time        `db:"updated_at"         json:"updatedAt"`
	FilledAt         *time.Time       `db:"filled_at"          json:"filledAt"`
	ExpiresAt        *time.Time       `db:"expires_at"         json:"expiresAt"`
}

// IsOwnedBy reports whether the order belongs to the given investor.
func (o *Order) IsOwnedBy(investorID string) bool {
	return o.InvestorID == investorID
}

// CreateOrderInput is the client-supplied part of a new order. The investor id
// is never part of it; it always comes from the authenticated credential.
type CreateOrderInput struct {
	Side             OrderSide        `json:"side"`
	OrderType        OrderType        `json:"orderType"`
	TokenAmount      decimal.Decimal  `json:"tokenAmount"`
	LimitPriceEur    *decimal.Decimal `json:"limitPriceEur"`
	ProtectedExitEur *decimal.Decimal `json:"protectedExitEur"`
	InvestorNote     *string          `json:"investorNote"`
}
