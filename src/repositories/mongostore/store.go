// Package mongostore persists the ledger in MongoDB: one collection for accounts, one
// each for stock and crypto holdings and one for transactions.
package mongostore

import (
	"context"
	"errors"
	"time"

	"papertrading/src/models"
	"papertrading/src/repositories"
	"papertrading/src/utils/ids"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CollectionNames struct {
	Accounts       string
	StockHoldings  string
	CryptoHoldings string
	Transactions   string
}

type Store struct {
	client         *mongo.Client
	accounts       *mongo.Collection
	stockHoldings  *mongo.Collection
	cryptoHoldings *mongo.Collection
	transactions   *mongo.Collection
}

func NewStore(client *mongo.Client, database string, names CollectionNames) *Store {
	db := client.Database(database)
	return &Store{
		client:         client,
		accounts:       db.Collection(names.Accounts),
		stockHoldings:  db.Collection(names.StockHoldings),
		cryptoHoldings: db.Collection(names.CryptoHoldings),
		transactions:   db.Collection(names.Transactions),
	}
}

// EnsureIndexes creates the unique keys the repositories rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	if _, err := s.accounts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}}, Options: unique,
	}); err != nil {
		return err
	}
	if _, err := s.stockHoldings.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "symbol", Value: 1}}, Options: unique,
	}); err != nil {
		return err
	}
	if _, err := s.cryptoHoldings.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "coinId", Value: 1}}, Options: unique,
	}); err != nil {
		return err
	}
	_, err := s.transactions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	return err
}

func (s *Store) Accounts() repositories.AccountRepository         { return accountRepo{s} }
func (s *Store) Holdings() repositories.HoldingRepository         { return holdingRepo{s} }
func (s *Store) Transactions() repositories.TransactionRepository { return transactionRepo{s} }

// WithinTx runs fn in a multi-document transaction. The session context handed to fn
// binds every collection call to the transaction. Requires a replica set.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}
	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repositories.ErrNotFound
	}
	return err
}

type accountRepo struct{ s *Store }

func (r accountRepo) Create(ctx context.Context, a *models.Account) error {
	_, err := r.s.accounts.InsertOne(ctx, a)
	if mongo.IsDuplicateKeyError(err) {
		return repositories.ErrAlreadyExists
	}
	return err
}

func (r accountRepo) GetByUserID(ctx context.Context, userID string) (*models.Account, error) {
	var a models.Account
	if err := r.s.accounts.FindOne(ctx, bson.M{"userId": userID}).Decode(&a); err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// GetByUserIDForUpdate touches the account so that a concurrent transaction on the
// same document hits a write conflict and is retried by WithTransaction.
func (r accountRepo) GetByUserIDForUpdate(ctx context.Context, userID string) (*models.Account, error) {
	var a models.Account
	err := r.s.accounts.FindOneAndUpdate(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&a)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r accountRepo) AdjustBalance(ctx context.Context, userID string, delta float64) (*models.Account, error) {
	var a models.Account
	err := r.s.accounts.FindOneAndUpdate(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$inc": bson.M{"currentBalance": delta},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&a)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (r accountRepo) SetTotalValue(ctx context.Context, userID string, totalValue float64) error {
	res, err := r.s.accounts.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"totalValue": totalValue, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r accountRepo) ListUserIDs(ctx context.Context) ([]string, error) {
	values, err := r.s.accounts.Distinct(ctx, "userId", bson.M{})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok {
			out = append(out, id)
		}
	}
	return out, nil
}

type holdingRepo struct{ s *Store }

func (r holdingRepo) collection(kind models.AssetKind) (*mongo.Collection, string) {
	if kind == models.AssetKindCrypto {
		return r.s.cryptoHoldings, "coinId"
	}
	return r.s.stockHoldings, "symbol"
}

func (r holdingRepo) ListByUserID(ctx context.Context, userID string, kind models.AssetKind) ([]models.Holding, error) {
	kinds := []models.AssetKind{models.AssetKindStock, models.AssetKindCrypto}
	if kind != "" {
		kinds = []models.AssetKind{kind}
	}
	out := []models.Holding{}
	for _, k := range kinds {
		coll, _ := r.collection(k)
		cur, err := coll.Find(ctx, bson.M{"userId": userID},
			options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
		if err != nil {
			return nil, err
		}
		var docs []holdingDoc
		if err := cur.All(ctx, &docs); err != nil {
			return nil, err
		}
		for _, d := range docs {
			out = append(out, d.toModel())
		}
	}
	if len(kinds) > 1 {
		sortNewestFirst(out)
	}
	return out, nil
}

func (r holdingRepo) Get(ctx context.Context, userID string, asset models.AssetKey) (*models.Holding, error) {
	coll, field := r.collection(asset.Kind)
	var doc holdingDoc
	if err := coll.FindOne(ctx, bson.M{"userId": userID, field: asset.ID}).Decode(&doc); err != nil {
		return nil, notFound(err)
	}
	h := doc.toModel()
	return &h, nil
}

func (r holdingRepo) Upsert(ctx context.Context, h *models.Holding) error {
	doc := newHoldingDoc(h)
	coll, field := r.collection(h.Asset.Kind)
	filter := bson.M{"userId": h.UserID, field: h.Asset.ID}
	res, err := coll.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return err
	}
	if oid, ok := res.UpsertedID.(primitive.ObjectID); ok {
		h.ID = oid.Hex()
	}
	return nil
}

func (r holdingRepo) Delete(ctx context.Context, userID string, asset models.AssetKey) error {
	coll, field := r.collection(asset.Kind)
	res, err := coll.DeleteOne(ctx, bson.M{"userId": userID, field: asset.ID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

type transactionRepo struct{ s *Store }

func (r transactionRepo) Create(ctx context.Context, t *models.Transaction) error {
	if t.ID == "" {
		t.ID = ids.NewTransactionID(t.Timestamp)
	}
	_, err := r.s.transactions.InsertOne(ctx, newTransactionDoc(t))
	return err
}

func (r transactionRepo) List(ctx context.Context, userID string, filter models.TransactionFilter) ([]models.Transaction, error) {
	query := bson.M{"userId": userID}
	if filter.Type != "" {
		query["type"] = string(filter.Type)
	}
	if filter.AssetKind != "" {
		query["assetType"] = string(filter.AssetKind)
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	return r.find(ctx, query, opts)
}

func (r transactionRepo) History(ctx context.Context, userID string) ([]models.Transaction, error) {
	return r.find(ctx, bson.M{"userId": userID},
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}}))
}

func (r transactionRepo) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]models.Transaction, error) {
	cur, err := r.s.transactions.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var docs []transactionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Transaction, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, nil
}
