package partner

import (
	"github.com/erp/procurement/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CounterpartBalance is the running balance a supplier or technician carries.
// TotalPO is the cumulative processed order value; Piutang is what is still outstanding.
type CounterpartBalance struct {
	TotalPO decimal.Decimal
	Piutang decimal.Decimal
}

func validateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount cannot be negative")
	}
	return nil
}

// RecordOrder adds an order to TotalPO, and to Piutang when it is on credit
func (b *CounterpartBalance) RecordOrder(amount decimal.Decimal, credit bool) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	b.TotalPO = b.TotalPO.Add(amount)
	if credit {
		b.Piutang = b.Piutang.Add(amount)
	}
	return nil
}

// ReverseOrder undoes RecordOrder. Neither figure drops below zero.
func (b *CounterpartBalance) ReverseOrder(amount decimal.Decimal, credit bool) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	b.TotalPO = clampSub(b.TotalPO, amount)
	if credit {
		b.Piutang = clampSub(b.Piutang, amount)
	}
	return nil
}

// SettlePayable lowers Piutang by a paid amount, clamped at zero
func (b *CounterpartBalance) SettlePayable(amount decimal.Decimal) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	b.Piutang = clampSub(b.Piutang, amount)
	return nil
}

// Reset replaces both figures, used by reconciliation
func (b *CounterpartBalance) Reset(totalPO, piutang decimal.Decimal) {
	b.TotalPO = totalPO
	b.Piutang = decimal.Max(piutang, decimal.Zero)
}

func clampSub(v, amount decimal.Decimal) decimal.Decimal {
	out := v.Sub(amount)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}
