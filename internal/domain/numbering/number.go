package numbering

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/erp/procurement/internal/domain/shared"
)

// Known prefixes
const (
	PrefixProductPurchase  = "PO/PRD"
	PrefixServicePurchase  = "PO/SRV"
	PrefixSupplierPurchase = "PO/SUP"
	PrefixBatch            = "BATCH"
)

// PeriodLayout formats the year-month segment
const PeriodLayout = "200601"

// Number is a human-readable identifier: <prefix>/<scope>/<YYYYMM>/<seq>
type Number struct {
	Prefix string
	Scope  string
	Period string
	Seq    int
}

// String renders the number with a zero-padded four digit sequence
func (n Number) String() string {
	return fmt.Sprintf("%s%04d", n.Stem(), n.Seq)
}

// Stem is everything before the sequence, including the trailing slash
func (n Number) Stem() string {
	return Stem(n.Prefix, n.Scope, n.Period)
}

// Stem builds the shared part of every number in one prefix, scope and month
func Stem(prefix, scope, period string) string {
	return prefix + "/" + scope + "/" + period + "/"
}

// Period returns the YYYYMM segment for t
func Period(t time.Time) string {
	return t.Format(PeriodLayout)
}

// SequenceOf extracts the trailing sequence of a number under stem.
// ok is false for numbers outside stem or with a non-numeric tail.
func SequenceOf(number, stem string) (int, bool) {
	if !strings.HasPrefix(number, stem) {
		return 0, false
	}
	seq, err := strconv.Atoi(number[len(stem):])
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}

// Parse splits a number whose prefix is known
func Parse(number, prefix string) (Number, error) {
	if !strings.HasPrefix(number, prefix+"/") {
		return Number{}, shared.NewDomainError("INVALID_NUMBER", fmt.Sprintf("%q does not start with %s", number, prefix))
	}
	rest := number[len(prefix)+1:]
	seqAt := strings.LastIndex(rest, "/")
	if seqAt < 0 {
		return Number{}, shared.NewDomainError("INVALID_NUMBER", fmt.Sprintf("%q has no sequence", number))
	}
	periodAt := strings.LastIndex(rest[:seqAt], "/")
	if periodAt <= 0 {
		return Number{}, shared.NewDomainError("INVALID_NUMBER", fmt.Sprintf("%q has no scope", number))
	}
	period := rest[periodAt+1 : seqAt]
	if _, err := time.Parse(PeriodLayout, period); err != nil {
		return Number{}, shared.NewDomainError("INVALID_NUMBER", fmt.Sprintf("%q has an invalid period", number))
	}
	seq, err := strconv.Atoi(rest[seqAt+1:])
	if err != nil {
		return Number{}, shared.NewDomainError("INVALID_NUMBER", fmt.Sprintf("%q has an invalid sequence", number))
	}
	return Number{Prefix: prefix, Scope: rest[:periodAt], Period: period, Seq: seq}, nil
}

// BatchScope is the scope used for batch numbers
func BatchScope(productCode, supplierCode string) string {
	return productCode + "/" + supplierCode
}
