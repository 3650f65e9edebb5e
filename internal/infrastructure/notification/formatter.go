package notification

import (
	"fmt"
	"strings"

	"github.com/erp/procurement/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Message is what gets delivered to a recipient
type Message struct {
	RecipientID uuid.UUID
	BranchID    uuid.UUID
	Title       string
	Body        string
}

var kindLabels = map[trade.Kind]string{
	trade.KindProduct:  "Product purchase",
	trade.KindService:  "Service purchase",
	trade.KindSupplier: "Supplier purchase",
}

// Formatter renders status changes for one locale
type Formatter struct {
	printer *message.Printer
	title   cases.Caser
}

// NewFormatter parses a BCP 47 tag such as id-ID; an invalid tag falls back to Indonesian
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Indonesian
	}
	return &Formatter{
		printer: message.NewPrinter(tag),
		title:   cases.Title(tag),
	}
}

// Amount formats a money value with locale grouping and at most two decimals
func (f *Formatter) Amount(v decimal.Decimal) string {
	return f.printer.Sprint(number.Decimal(v.Round(2).InexactFloat64(), number.MaxFractionDigits(2)))
}

// StatusChanged builds the message sent to the requester of the order
func (f *Formatter) StatusChanged(ev *trade.OrderStatusChangedEvent) Message {
	label := kindLabels[ev.Kind]
	if label == "" {
		label = "Purchase order"
	}
	return Message{
		RecipientID: ev.RequesterID,
		BranchID:    ev.BranchID,
		Title:       fmt.Sprintf("%s %s is now %s", label, ev.OrderNumber, f.status(ev.ToStatus)),
		Body: fmt.Sprintf("%q moved from %s to %s. Total: %s",
			ev.OrderName, f.status(ev.FromStatus), f.status(ev.ToStatus), f.Amount(ev.TotalAmount)),
	}
}

func (f *Formatter) status(s trade.Status) string {
	return f.title.String(strings.ReplaceAll(s.String(), "_", " "))
}
