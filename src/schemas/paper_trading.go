package schemas

import "papertrading/src/models"

type StockTradeRequest struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Shares float64 `json:"shares"`
}

type CryptoTradeRequest struct {
	CoinID string  `json:"coinId"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// TradeRequest is the asset-agnostic form both request shapes reduce to.
type TradeRequest struct {
	Asset    models.AssetKey
	Name     string
	Quantity float64
}

func (r StockTradeRequest) ToTradeRequest() TradeRequest {
	return TradeRequest{Asset: models.Stock(r.Symbol), Name: r.Name, Quantity: r.Shares}
}

func (r CryptoTradeRequest) ToTradeRequest() TradeRequest {
	return TradeRequest{Asset: models.Crypto(r.CoinID), Name: r.Name, Quantity: r.Amount}
}

type TradeResponse struct {
	Message     string              `json:"message"`
	Holding     *models.Holding     `json:"holding"`
	Transaction *models.Transaction `json:"transaction"`
	Account     *models.Account     `json:"account"`
}

type TransactionsResponse struct {
	Transactions []models.Transaction `json:"transactions"`
	Count        int                  `json:"count"`
}

type HoldingsResponse struct {
	Holdings []models.Holding `json:"holdings"`
	Count    int              `json:"count"`
}
