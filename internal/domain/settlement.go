package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BuySettlement describes the three legs of an investment purchase:
// debit the funding account by the total cost, credit the tracking
// account by the same amount, and create the position. All legs commit
// or none do.
type BuySettlement struct {
	UserID            uuid.UUID
	FundingAccountID  uuid.UUID
	TrackingAccountID uuid.UUID
	TotalCost         decimal.Decimal
	Position          *Investment
}

// SellSettlement describes the legs of an investment sale: credit the
// deposit account by the payout (live price x quantity), debit the
// tracking account by the ORIGINAL cost basis of the shares sold (the
// tracking account reflects capital still deployed, not realized
// gains), then close or reduce the position.
type SellSettlement struct {
	UserID            uuid.UUID
	PositionID        uuid.UUID
	DepositAccountID  uuid.UUID
	TrackingAccountID uuid.UUID
	QuantitySold      decimal.Decimal
	Payout            decimal.Decimal
	CostBasisReleased decimal.Decimal
	ClosePosition     bool
}
