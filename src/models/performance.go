package models

import "time"

// ClosedTrade is one sell matched against earlier buys of the same asset.
type ClosedTrade struct {
	Asset         AssetKey  `json:"asset"`
	Name          string    `json:"name"`
	Quantity      float64   `json:"quantity"`
	BuyPrice      float64   `json:"buyPrice"`
	SellPrice     float64   `json:"sellPrice"`
	Profit        float64   `json:"profit"`
	ProfitPercent float64   `json:"profitPercent"`
	Timestamp     time.Time `json:"timestamp"`
}

// Performance is the realized trading record of an account. TotalTrades counts only
// winning and losing trades; break-even and unmatched sells are not trades here.
type Performance struct {
	TotalReturn        float64      `json:"totalReturn"`
	TotalReturnPercent float64      `json:"totalReturnPercent"`
	TotalProfitLoss    float64      `json:"totalProfitLoss"`
	WinRate            float64      `json:"winRate"`
	TotalTrades        int          `json:"totalTrades"`
	WinningTrades      int          `json:"winningTrades"`
	LosingTrades       int          `json:"losingTrades"`
	AverageWin         float64      `json:"averageWin"`
	AverageLoss        float64      `json:"averageLoss"`
	BestTrade          *ClosedTrade `json:"bestTrade,omitempty"`
	WorstTrade         *ClosedTrade `json:"worstTrade,omitempty"`
}
