package enums

import (
	"fmt"
	"strings"
)

// PaymentMethod is how a buyer settles an order. Suppliers attach one
// payment condition per method.
type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentMethodBoleto     PaymentMethod = "BOLETO"
	PaymentMethodPix        PaymentMethod = "PIX"
)

// PaymentMethods lists every accepted method in display order.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{PaymentMethodPix, PaymentMethodBoleto, PaymentMethodCreditCard}
}

func (p PaymentMethod) String() string {
	return string(p)
}

func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentMethodCreditCard, PaymentMethodBoleto, PaymentMethodPix:
		return true
	}
	return false
}

// ParsePaymentMethod accepts any casing and surrounding spaces, so "pix" and
// " Pix " both resolve to PIX.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	method := PaymentMethod(strings.ToUpper(strings.TrimSpace(value)))
	if !method.IsValid() {
		return "", fmt.Errorf("invalid payment method %q", value)
	}
	return method, nil
}
