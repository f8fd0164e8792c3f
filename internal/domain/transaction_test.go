package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validTransaction() *Transaction {
	return &Transaction{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		AccountID: uuid.New(),
		Name:      "Groceries",
		Amount:    decimal.NewFromInt(42),
		Type:      TransactionTypeExpense,
		Category:  "Food & Dining",
		Status:    TransactionStatusCompleted,
	}
}

func TestTransactionValidate_Valid(t *testing.T) {
	tx := validTransaction()
	assert.NoError(t, tx.Validate())
}

func TestTransactionValidate_RejectsNonPositiveAmount(t *testing.T) {
	tx := validTransaction()
	tx.Amount = decimal.Zero
	assert.Error(t, tx.Validate())

	tx.Amount = decimal.NewFromInt(-10)
	assert.Error(t, tx.Validate())
}

func TestTransactionValidate_RejectsUnknownType(t *testing.T) {
	tx := validTransaction()
	tx.Type = "refund"
	assert.Error(t, tx.Validate())
}

func TestTransactionValidate_RejectsMissingAccount(t *testing.T) {
	tx := validTransaction()
	tx.AccountID = uuid.Nil
	assert.Error(t, tx.Validate())
}

func TestTransactionBalanceDelta(t *testing.T) {
	tx := validTransaction()

	tx.Type = TransactionTypeIncome
	assert.True(t, tx.BalanceDelta().Equal(decimal.NewFromInt(42)))

	tx.Type = TransactionTypeExpense
	assert.True(t, tx.BalanceDelta().Equal(decimal.NewFromInt(-42)))
}
