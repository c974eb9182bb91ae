package orders

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/google/uuid"
)

type placementShape struct {
	SupplierOrgID      uuid.UUID   `json:"supplier_org_id"`
	ShippingAddressID  uuid.UUID   `json:"shipping_address_id"`
	BuyerState         string      `json:"buyer_state"`
	PaymentConditionID *uuid.UUID  `json:"payment_condition_id,omitempty"`
	PaymentMethod      string      `json:"payment_method,omitempty"`
	ShippingCost       string      `json:"shipping_cost"`
	CashbackToUse      string      `json:"cashback_to_use"`
	Items              []LineInput `json:"items"`
}

// requestHash fingerprints what a placement asked for. Decimals use their
// shortest form so "15" and "15.00" hash alike; item order is kept because it
// fixes line positions.
func requestHash(input CalculateInput) (string, error) {
	shape := placementShape{
		SupplierOrgID:      input.SupplierOrgID,
		ShippingAddressID:  input.ShippingAddressID,
		BuyerState:         input.BuyerState.String(),
		PaymentConditionID: input.PaymentConditionID,
		ShippingCost:       input.ShippingCost.String(),
		CashbackToUse:      input.CashbackToUse.String(),
		Items:              input.Items,
	}
	if input.PaymentMethod != nil {
		shape.PaymentMethod = input.PaymentMethod.String()
	}
	raw, err := json.Marshal(shape)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
