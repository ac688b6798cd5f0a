// Package validation resolves the donor-disclosure tier for a donation and
// validates a DonationIntent against it.
package validation

import (
	"math"
	"sort"
)

type Field string

const (
	FieldAmount  Field = "amount"
	FieldName    Field = "name"
	FieldMobile  Field = "mobile"
	FieldEmail   Field = "email"
	FieldAddress Field = "address"
	FieldPAN     Field = "pan"
)

var donorFields = []Field{FieldName, FieldMobile, FieldEmail, FieldAddress, FieldPAN}

type FieldSet map[Field]struct{}

func newFieldSet(fields ...Field) FieldSet {
	set := make(FieldSet, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func (s FieldSet) Has(f Field) bool {
	_, ok := s[f]
	return ok
}

// Sorted returns the fields in a stable order for display.
func (s FieldSet) Sorted() []Field {
	out := make([]Field, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Tier is derived on every change of amount or anonymity and never stored.
type Tier struct {
	Threshold       float64
	RequiresDetails bool
	AllowAnonymous  bool
	Required        FieldSet
	Optional        FieldSet

	// Blocked is set when the amount itself is unusable.
	Blocked bool
	// Conflict is set when an anonymous donation crosses into the enhanced tier.
	Conflict bool
}

// ResolveTier maps an amount and the anonymity flag to the fields the donor
// must, may, or cannot supply. Amounts strictly above threshold fall in the
// enhanced-disclosure tier.
func ResolveTier(amount float64, isAnonymous bool, threshold float64) Tier {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return Tier{
			Threshold: threshold,
			Blocked:   true,
			Required:  newFieldSet(FieldAmount),
			Optional:  newFieldSet(),
		}
	}

	if amount > threshold {
		return Tier{
			Threshold:       threshold,
			RequiresDetails: true,
			AllowAnonymous:  false,
			Required:        newFieldSet(FieldName, FieldMobile, FieldPAN),
			Optional:        newFieldSet(FieldEmail, FieldAddress),
			Conflict:        isAnonymous,
		}
	}

	if isAnonymous {
		return Tier{
			Threshold:      threshold,
			AllowAnonymous: true,
			Required:       newFieldSet(),
			Optional:       newFieldSet(donorFields...),
		}
	}

	return Tier{
		Threshold:      threshold,
		AllowAnonymous: true,
		Required:       newFieldSet(FieldName, FieldMobile),
		Optional:       newFieldSet(FieldEmail, FieldAddress, FieldPAN),
	}
}

// Blocking reports whether submission must be refused before any network call.
func (t Tier) Blocking() bool {
	return t.Blocked || t.Conflict
}
