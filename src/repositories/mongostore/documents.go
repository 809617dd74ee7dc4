package mongostore

import (
	"time"

	"papertrading/src/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// holdingDoc keeps the two persisted holding shapes: stock rows carry symbol and
// shares, crypto rows carry coinId and amount.
type holdingDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"userId"`
	Symbol      string             `bson:"symbol,omitempty"`
	CoinID      string             `bson:"coinId,omitempty"`
	Name        string             `bson:"name"`
	Shares      float64            `bson:"shares,omitempty"`
	Amount      float64            `bson:"amount,omitempty"`
	AvgBuyPrice float64            `bson:"avgBuyPrice"`
	TotalCost   float64            `bson:"totalCost"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// newHoldingDoc keeps h.ID only when it is an ObjectID; other ids are left for the
// server to assign or, on replace, for the stored document to keep.
func newHoldingDoc(h *models.Holding) holdingDoc {
	doc := holdingDoc{
		UserID:      h.UserID,
		Name:        h.Name,
		AvgBuyPrice: h.AvgBuyPrice,
		TotalCost:   h.TotalCost,
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
	if oid, err := primitive.ObjectIDFromHex(h.ID); err == nil {
		doc.ID = oid
	}
	if h.Asset.Kind == models.AssetKindCrypto {
		doc.CoinID = h.Asset.ID
		doc.Amount = h.Quantity
	} else {
		doc.Symbol = h.Asset.ID
		doc.Shares = h.Quantity
	}
	return doc
}

func (d holdingDoc) toModel() models.Holding {
	h := models.Holding{
		ID:          d.ID.Hex(),
		UserID:      d.UserID,
		Name:        d.Name,
		AvgBuyPrice: d.AvgBuyPrice,
		TotalCost:   d.TotalCost,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if d.CoinID != "" {
		h.Asset = models.AssetKey{Kind: models.AssetKindCrypto, ID: d.CoinID}
		h.Quantity = d.Amount
	} else {
		h.Asset = models.AssetKey{Kind: models.AssetKindStock, ID: d.Symbol}
		h.Quantity = d.Shares
	}
	return h
}

type transactionDoc struct {
	ID            string    `bson:"_id"`
	UserID        string    `bson:"userId"`
	Type          string    `bson:"type"`
	AssetType     string    `bson:"assetType"`
	Symbol        string    `bson:"symbol,omitempty"`
	CoinID        string    `bson:"coinId,omitempty"`
	Name          string    `bson:"name"`
	Quantity      float64   `bson:"quantity"`
	Price         float64   `bson:"price"`
	TotalAmount   float64   `bson:"totalAmount"`
	BalanceBefore float64   `bson:"balanceBefore"`
	BalanceAfter  float64   `bson:"balanceAfter"`
	Timestamp     time.Time `bson:"timestamp"`
}

func newTransactionDoc(t *models.Transaction) transactionDoc {
	doc := transactionDoc{
		ID:            t.ID,
		UserID:        t.UserID,
		Type:          string(t.Type),
		AssetType:     string(t.Asset.Kind),
		Name:          t.Name,
		Quantity:      t.Quantity,
		Price:         t.Price,
		TotalAmount:   t.TotalAmount,
		BalanceBefore: t.BalanceBefore,
		BalanceAfter:  t.BalanceAfter,
		Timestamp:     t.Timestamp,
	}
	if t.Asset.Kind == models.AssetKindCrypto {
		doc.CoinID = t.Asset.ID
	} else {
		doc.Symbol = t.Asset.ID
	}
	return doc
}

func (d transactionDoc) toModel() models.Transaction {
	t := models.Transaction{
		ID:            d.ID,
		UserID:        d.UserID,
		Type:          models.TransactionType(d.Type),
		Asset:         models.AssetKey{Kind: models.AssetKind(d.AssetType), ID: d.Symbol},
		Name:          d.Name,
		Quantity:      d.Quantity,
		Price:         d.Price,
		TotalAmount:   d.TotalAmount,
		BalanceBefore: d.BalanceBefore,
		BalanceAfter:  d.BalanceAfter,
		Timestamp:     d.Timestamp,
	}
	if t.Asset.Kind == models.AssetKindCrypto {
		t.Asset.ID = d.CoinID
	}
	return t
}
