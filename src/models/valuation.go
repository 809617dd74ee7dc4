package models

// Position is a holding marked to market. Stale positions could not be quoted and
// are valued at cost.
type Position struct {
	Holding
	CurrentPrice    float64 `json:"currentPrice"`
	MarketValue     float64 `json:"marketValue"`
	GainLoss        float64 `json:"gainLoss"`
	GainLossPercent float64 `json:"gainLossPercent"`
	Stale           bool    `json:"stale"`
}

type Valuation struct {
	UserID                    string     `json:"userId"`
	Cash                      float64    `json:"cash"`
	HoldingsValue             float64    `json:"holdingsValue"`
	TotalValue                float64    `json:"totalValue"`
	TotalCost                 float64    `json:"totalCost"`
	UnrealizedGainLoss        float64    `json:"unrealizedGainLoss"`
	UnrealizedGainLossPercent float64    `json:"unrealizedGainLossPercent"`
	Positions                 []Position `json:"positions"`
}
