package operation

import (
	"fmt"
	"math"
)

// FeeType is the kind of fee binding of an operation.
type FeeType int

const (
	// FeeNone means that the operation is not charged. It is the binding of
	// the synthetic operations.
	FeeNone FeeType = iota

	// FeeFlat means that the operation is charged a flat amount.
	FeeFlat
)

// Fee is the fee binding of an operation. It is informational to the
// operation itself and is charged by the transaction layer.
type Fee struct {
	Type   FeeType
	Amount int64
}

// NoFee returns the binding of an operation that is not charged.
func NoFee() Fee {
	return Fee{Type: FeeNone}
}

// FlatFee returns the binding of an operation charged the amount.
func FlatFee(amount int64) Fee {
	return Fee{Type: FeeFlat, Amount: amount}
}

// IsNone returns true if the operation is not charged.
func (f Fee) IsNone() bool {
	return f.Type == FeeNone
}

// Total returns the amount charged for the given number of operations. It
// returns false when the amount is negative or the total overflows.
func (f Fee) Total(n int) (int64, bool) {
	if f.IsNone() || n <= 0 {
		return 0, true
	}

	if f.Amount < 0 || f.Amount > math.MaxInt64/int64(n) {
		return 0, false
	}

	return f.Amount * int64(n), true
}

// String implements fmt.Stringer.
func (f Fee) String() string {
	if f.IsNone() {
		return "none"
	}

	return fmt.Sprintf("flat(%d)", f.Amount)
}
