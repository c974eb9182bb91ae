package enums

import "fmt"

// CashbackTransactionType classifies wallet ledger entries.
type CashbackTransactionType string

const (
	CashbackTransactionEarned CashbackTransactionType = "EARNED"
	CashbackTransactionUsed   CashbackTransactionType = "USED"
)

var validCashbackTransactionTypes = []CashbackTransactionType{
	CashbackTransactionEarned,
	CashbackTransactionUsed,
}

// String implements fmt.Stringer.
func (c CashbackTransactionType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CashbackTransactionType.
func (c CashbackTransactionType) IsValid() bool {
	for _, candidate := range validCashbackTransactionTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCashbackTransactionType converts raw input into a CashbackTransactionType.
func ParseCashbackTransactionType(value string) (CashbackTransactionType, error) {
	for _, candidate := range validCashbackTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cashback transaction type %q", value)
}
