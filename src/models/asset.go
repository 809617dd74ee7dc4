package models

import (
	"fmt"
	"strings"
)

type AssetKind string

const (
	AssetKindStock  AssetKind = "stock"
	AssetKindCrypto AssetKind = "crypto"
)

func ParseAssetKind(s string) (AssetKind, error) {
	switch AssetKind(strings.ToLower(strings.TrimSpace(s))) {
	case AssetKindStock:
		return AssetKindStock, nil
	case AssetKindCrypto:
		return AssetKindCrypto, nil
	}
	return "", fmt.Errorf("unknown asset type %q", s)
}

// AssetKey identifies a tradable asset: a ticker symbol for stocks or a coin id for crypto.
type AssetKey struct {
	Kind AssetKind `json:"assetType" db:"asset_type"`
	ID   string    `json:"assetId" db:"asset_id"`
}

func Stock(symbol string) AssetKey {
	return AssetKey{Kind: AssetKindStock, ID: strings.ToUpper(strings.TrimSpace(symbol))}
}

func Crypto(coinID string) AssetKey {
	return AssetKey{Kind: AssetKindCrypto, ID: strings.ToLower(strings.TrimSpace(coinID))}
}

func NewAssetKey(kind AssetKind, id string) (AssetKey, error) {
	var key AssetKey
	switch kind {
	case AssetKindStock:
		key = Stock(id)
	case AssetKindCrypto:
		key = Crypto(id)
	default:
		return AssetKey{}, fmt.Errorf("unknown asset type %q", kind)
	}
	if key.ID == "" {
		return AssetKey{}, fmt.Errorf("empty %s identifier", kind)
	}
	return key, nil
}

// String renders the key the way lots are grouped during performance matching,
// e.g. "stock_AAPL" or "crypto_bitcoin".
func (k AssetKey) String() string {
	return fmt.Sprintf("%s_%s", k.Kind, k.ID)
}
