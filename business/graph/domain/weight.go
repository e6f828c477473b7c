package domain

import (
	"fmt"
	"math"
)

// WeightFromPrice maps a conversion rate onto an additive edge weight,
// -log2(price). A cycle whose weights sum below zero multiplies to more than one.
func WeightFromPrice(price float64) (float64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, fmt.Errorf("graph: price %v is not a positive finite number", price)
	}
	return -math.Log2(price), nil
}

// PriceFromWeight inverts WeightFromPrice: price = 2^(-weight).
func PriceFromWeight(weight float64) float64 {
	return math.Exp2(-weight)
}
