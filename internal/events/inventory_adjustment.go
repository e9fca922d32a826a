package events

import (
	"encoding/json"
	"fmt"
)

// InventoryAdjustment asks the inventory consumer to move a product's
// available stock by QuantityChange (usually negative). Applying it must never
// drive stock below zero; the consumer drops adjustments that would.
type InventoryAdjustment struct {
	ProductID      string `json:"productId"`
	QuantityChange int    `json:"quantityChange"`
}

// DecodeInventoryAdjustment parses an adjustment message. quantityChange must
// be present and a well-formed integer; anything else is a malformed payload
// the consumer rejects for redelivery.
func DecodeInventoryAdjustment(body []byte) (InventoryAdjustment, error) {
	var raw struct {
		ProductID      string       `json:"productId"`
		QuantityChange *json.Number `json:"quantityChange"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return InventoryAdjustment{}, fmt.Errorf("unmarshal adjustment: %w", err)
	}
	if raw.ProductID == "" {
		return InventoryAdjustment{}, fmt.Errorf("missing productId")
	}
	if raw.QuantityChange == nil {
		return InventoryAdjustment{}, fmt.Errorf("missing quantityChange")
	}
	change, err := raw.QuantityChange.Int64()
	if err != nil {
		return InventoryAdjustment{}, fmt.Errorf("quantityChange %q is not an integer", raw.QuantityChange.String())
	}
	return InventoryAdjustment{ProductID: raw.ProductID, QuantityChange: int(change)}, nil
}
