package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holdings is the read-only ledger view of an investor's tradable position,
// joined with the current day's gold price.
type Holdings struct {
	InvestorID      string          `db:"investor_id"        json:"investorId"`
	WalletAddress   string          `db:"wallet_address"     json:"walletAddress"`
	TokenBalance    decimal.Decimal `db:"token_balance"      json:"tokenBalance"`
	GoldGrams       decimal.Decimal `db:"gold_grams"         json:"goldGrams"`
	PricePerGramEur decimal.Decimal `db:"price_per_gram_eur" json:"pricePerGramEur"`
	CurrentValueEur decimal.Decimal `db:"current_value_eur"  json:"currentValueEur"`
	LastUpdated     time.Time       `db:"last_updated"       json:"lastUpdated"`
}
