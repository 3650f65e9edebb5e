package trade

import (
	"fmt"

	"github.com/erp/procurement/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLevels maps product IDs to current on-hand stock. Missing products have zero stock.
type StockLevels map[uuid.UUID]decimal.Decimal

// Available returns the stock for a product
func (s StockLevels) Available(productID uuid.UUID) decimal.Decimal {
	if s == nil {
		return decimal.Zero
	}
	if qty, ok := s[productID]; ok {
		return qty
	}
	return decimal.Zero
}

// StockShortage details one line that cannot be covered by stock
type StockShortage struct {
	LineID      uuid.UUID       `json:"line_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Required    decimal.Decimal `json:"required"`
	Available   decimal.Decimal `json:"available"`
	Shortage    decimal.Decimal `json:"shortage"`
}

// Message renders the shortage for users
func (s StockShortage) Message() string {
	return fmt.Sprintf("Insufficient stock for %s (%s): need %s, have %s, short %s",
		s.ProductName, s.ProductCode, s.Required, s.Available, s.Shortage)
}

// checkStock sums live line quantities per product and adds one violation
// per product whose total exceeds stock. The violation points at the
// product's first line.
func checkStock(r *shared.ValidationResult, lines []ProductLine, stock StockLevels) {
	for _, demand := range demandByProduct(lines) {
		available := stock.Available(demand.ProductID)
		if demand.Quantity.LessThanOrEqual(available) {
			continue
		}
		shortage := StockShortage{
			LineID:      demand.LineID,
			ProductID:   demand.ProductID,
			ProductCode: demand.ProductCode,
			ProductName: demand.ProductName,
			Required:    demand.Quantity,
			Available:   available,
			Shortage:    demand.Quantity.Sub(available),
		}
		r.AddWithData(CodeInsufficientStock, fmt.Sprintf("lines[%d].quantity", demand.index), shortage.Message(), shortage)
	}
}

type productDemand struct {
	index       int
	LineID      uuid.UUID
	ProductID   uuid.UUID
	ProductCode string
	ProductName string
	Quantity    decimal.Decimal
}

// demandByProduct totals quantities per product in first-seen order
func demandByProduct(lines []ProductLine) []productDemand {
	pos := make(map[uuid.UUID]int)
	out := make([]productDemand, 0, len(lines))
	for i, l := range lines {
		if at, ok := pos[l.ProductID]; ok {
			out[at].Quantity = out[at].Quantity.Add(l.Quantity)
			continue
		}
		pos[l.ProductID] = len(out)
		out = append(out, productDemand{
			index:       i,
			LineID:      l.ID,
			ProductID:   l.ProductID,
			ProductCode: l.ProductCode,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
		})
	}
	return out
}
