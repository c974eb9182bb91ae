package enums

import "fmt"

// BrazilianState is a two-letter federative unit code (UF).
type BrazilianState string

const (
	StateAC BrazilianState = "AC"
	StateAL BrazilianState = "AL"
	StateAP BrazilianState = "AP"
	StateAM BrazilianState = "AM"
	StateBA BrazilianState = "BA"
	StateCE BrazilianState = "CE"
	StateDF BrazilianState = "DF"
	StateES BrazilianState = "ES"
	StateGO BrazilianState = "GO"
	StateMA BrazilianState = "MA"
	StateMT BrazilianState = "MT"
	StateMS BrazilianState = "MS"
	StateMG BrazilianState = "MG"
	StatePA BrazilianState = "PA"
	StatePB BrazilianState = "PB"
	StatePR BrazilianState = "PR"
	StatePE BrazilianState = "PE"
	StatePI BrazilianState = "PI"
	StateRJ BrazilianState = "RJ"
	StateRN BrazilianState = "RN"
	StateRS BrazilianState = "RS"
	StateRO BrazilianState = "RO"
	StateRR BrazilianState = "RR"
	StateSC BrazilianState = "SC"
	StateSP BrazilianState = "SP"
	StateSE BrazilianState = "SE"
	StateTO BrazilianState = "TO"
)

var validBrazilianStates = []BrazilianState{
	StateAC,
	StateAL,
	StateAP,
	StateAM,
	StateBA,
	StateCE,
	StateDF,
	StateES,
	StateGO,
	StateMA,
	StateMT,
	StateMS,
	StateMG,
	StatePA,
	StatePB,
	StatePR,
	StatePE,
	StatePI,
	StateRJ,
	StateRN,
	StateRS,
	StateRO,
	StateRR,
	StateSC,
	StateSP,
	StateSE,
	StateTO,
}

// String implements fmt.Stringer.
func (b BrazilianState) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BrazilianState.
func (b BrazilianState) IsValid() bool {
	for _, candidate := range validBrazilianStates {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBrazilianState converts raw input into a BrazilianState.
func ParseBrazilianState(value string) (BrazilianState, error) {
	for _, candidate := range validBrazilianStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid brazilian state %q", value)
}
