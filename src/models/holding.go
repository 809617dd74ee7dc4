package models

import "time"

type Holding struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"userId" db:"user_id"`
	Asset       AssetKey  `json:"asset"`
	Name        string    `json:"name" db:"name"`
	Quantity    float64   `json:"quantity" db:"quantity"`
	AvgBuyPrice float64   `json:"avgBuyPrice" db:"avg_buy_price"`
	TotalCost   float64   `json:"totalCost" db:"total_cost"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// NewHolding opens a position from a first buy.
func NewHolding(userID string, asset AssetKey, name string, quantity, price float64, now time.Time) *Holding {
	return &Holding{
		UserID:      userID,
		Asset:       asset,
		Name:        name,
		Quantity:    quantity,
		AvgBuyPrice: price,
		TotalCost:   MulMoney(quantity, price),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ApplyBuy adds quantity at price and recomputes the volume-weighted average cost
// from the accumulated total cost.
func (h *Holding) ApplyBuy(quantity, price float64, now time.Time) {
	h.Quantity = AddMoney(h.Quantity, quantity)
	h.TotalCost = AddMoney(h.TotalCost, MulMoney(quantity, price))
	h.AvgBuyPrice = DivMoney(h.TotalCost, h.Quantity)
	h.UpdatedAt = now
}

// ApplySell removes quantity from the position. The per-unit cost is unchanged; only
// the total cost is scaled down. It reports closed when the position is exhausted and
// must be deleted. A remainder below QuantityEpsilon of the held amount counts as
// exhausted.
func (h *Holding) ApplySell(quantity float64, now time.Time) (closed bool, err error) {
	if quantity > h.Quantity {
		return false, ErrInsufficientQuantity
	}
	remaining := SubMoney(h.Quantity, quantity)
	if remaining <= h.Quantity*QuantityEpsilon {
		return true, nil
	}
	unitCost := DivMoney(h.TotalCost, h.Quantity)
	h.TotalCost = MulMoney(unitCost, remaining)
	h.Quantity = remaining
	h.UpdatedAt = now
	return false, nil
}
