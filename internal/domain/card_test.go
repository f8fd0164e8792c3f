package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validCard() *Card {
	return &Card{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		AccountID:    uuid.New(),
		Kind:         CardKindVirtual,
		Brand:        "VISA",
		Number:       "**** **** **** 4242",
		Expiry:       "12/28",
		MonthlyLimit: decimal.NewFromInt(500),
		Status:       CardStatusActive,
	}
}

func TestCardValidate_Valid(t *testing.T) {
	assert.NoError(t, validCard().Validate())
}

func TestCardValidate_RequiresLinkedAccount(t *testing.T) {
	card := validCard()
	card.AccountID = uuid.Nil
	assert.Error(t, card.Validate())
}

func TestCardValidate_RequiresPositiveLimit(t *testing.T) {
	card := validCard()
	card.MonthlyLimit = decimal.Zero
	assert.Error(t, card.Validate())
}

func TestCardStatusToggled(t *testing.T) {
	assert.Equal(t, CardStatusFrozen, CardStatusActive.Toggled())
	assert.Equal(t, CardStatusActive, CardStatusFrozen.Toggled())
}

func TestIsIndianListing(t *testing.T) {
	assert.True(t, IsIndianListing("TCS.NS"))
	assert.True(t, IsIndianListing("RELIANCE.BO"))
	assert.False(t, IsIndianListing("MSFT"))
	assert.False(t, IsIndianListing("BTC"))
}
