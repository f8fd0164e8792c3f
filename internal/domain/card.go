package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CardStatus represents the lifecycle state of a card
type CardStatus string

const (
	CardStatusActive CardStatus = "Active"
	CardStatusFrozen CardStatus = "Frozen"
)

// CardKind distinguishes virtual from physical cards
type CardKind string

const (
	CardKindVirtual  CardKind = "virtual"
	CardKindPhysical CardKind = "physical"
)

// Card represents a payment card linked to a funding account.
// A card carries no balance of its own: postings against a card settle
// on the linked account, and the card only constrains them via its
// monthly spending limit and frozen state.
type Card struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	AccountID    uuid.UUID // linked funding account
	Kind         CardKind
	Brand        string // VISA, MASTERCARD
	Number       string // masked, e.g. "**** **** **** 4242"
	Expiry       string
	MonthlyLimit decimal.Decimal
	Status       CardStatus
	CreatedAt    time.Time
}

// Validate ensures the card adheres to domain rules
func (c *Card) Validate() error {
	if c.UserID == uuid.Nil {
		return errors.New("card must belong to a user")
	}
	if c.AccountID == uuid.Nil {
		return errors.New("card must be linked to an account")
	}
	if c.Brand == "" {
		return errors.New("card brand cannot be empty")
	}
	if c.MonthlyLimit.LessThanOrEqual(decimal.Zero) {
		return errors.New("card monthly limit must be positive")
	}
	if c.Status != CardStatusActive && c.Status != CardStatusFrozen {
		return errors.New("card status must be Active or Frozen")
	}
	return nil
}

// Toggled returns the opposite status, used by the freeze/unfreeze operation
func (s CardStatus) Toggled() CardStatus {
	if s == CardStatusActive {
		return CardStatusFrozen
	}
	return CardStatusActive
}
