package coingecko

// SimplePriceResponse maps coin id to currency to price, e.g. {"bitcoin":{"usd":64000}}.
type SimplePriceResponse map[string]map[string]float64
