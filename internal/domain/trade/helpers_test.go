package trade

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func headerInput(paymentType PaymentType) NewOrderHeaderInput {
	return NewOrderHeaderInput{
		BranchID:    uuid.New(),
		OrderNumber: "PO/PRD/BR001/202505/0001",
		Name:        "Monthly restock",
		RequesterID: uuid.New(),
		OrderDate:   time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC),
		PaymentType: paymentType,
	}
}

func mustApply(t *testing.T, o Order, tr Transition) []Effect {
	t.Helper()
	effects, err := o.Apply(tr, time.Now())
	require.NoError(t, err)
	return effects
}
