package finnhub

// QuoteResponse is the /quote payload. C is the current price; Finnhub answers
// unknown symbols with zeros rather than an error status.
type QuoteResponse struct {
	C  float64 `json:"c"`
	D  float64 `json:"d"`
	DP float64 `json:"dp"`
	H  float64 `json:"h"`
	L  float64 `json:"l"`
	O  float64 `json:"o"`
	PC float64 `json:"pc"`
	T  int64   `json:"t"`
}
