package controllers

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"papertrading/src/models"
	"papertrading/src/schemas"
	"papertrading/src/services"

	"github.com/xuri/excelize/v2"
)

type PaperTradingControllerI interface {
	GetAccount(ctx context.Context, userID string) (*models.Account, error)
	CreateAccount(ctx context.Context, userID string) (*models.Account, error)
	GetHoldings(ctx context.Context, userID string, kind models.AssetKind) (*schemas.HoldingsResponse, error)
	Buy(ctx context.Context, userID string, req schemas.TradeRequest) (*schemas.TradeResponse, error)
	Sell(ctx context.Context, userID string, req schemas.TradeRequest) (*schemas.TradeResponse, error)
	GetTransactions(ctx context.Context, userID string, filter models.TransactionFilter) (*schemas.TransactionsResponse, error)
	ExportTransactions(ctx context.Context, userID string) (*excelize.File, error)
	ExportTransactionsCSV(ctx context.Context, userID string) (*bytes.Buffer, error)
	GetStatementPDF(ctx context.Context, userID string) (*bytes.Buffer, error)
	GetAllocationChart(ctx context.Context, userID string) (*bytes.Buffer, error)
	GetPerformance(ctx context.Context, userID string) (*models.Performance, error)
	GetPortfolio(ctx context.Context, userID string) (*models.Valuation, error)
	RefreshPortfolio(ctx context.Context, userID string) (*models.Valuation, error)
}

type PaperTradingController struct {
	Accounts     services.AccountServiceI
	Holdings     services.HoldingServiceI
	Transactions services.TransactionServiceI
	Trades       services.TradeServiceI
	Performance  services.PerformanceServiceI
	Valuations   services.ValuationServiceI
	Exports      services.ExportServiceI
	Quoter       services.Quoter
}

func (c *PaperTradingController) GetAccount(ctx context.Context, userID string) (*models.Account, error) {
	return c.Accounts.GetOrInitialize(ctx, userID)
}

func (c *PaperTradingController) CreateAccount(ctx context.Context, userID string) (*models.Account, error) {
	return c.Accounts.Initialize(ctx, userID)
}

func (c *PaperTradingController) GetHoldings(ctx context.Context, userID string, kind models.AssetKind) (*schemas.HoldingsResponse, error) {
	if _, err := c.Accounts.GetOrInitialize(ctx, userID); err != nil {
		return nil, err
	}
	holdings, err := c.Holdings.List(ctx, userID, kind)
	if err != nil {
		return nil, err
	}
	return &schemas.HoldingsResponse{Holdings: holdings, Count: len(holdings)}, nil
}

// Buy prices the order at the current quote and executes it, opening the account on
// first use.
func (c *PaperTradingController) Buy(ctx context.Context, userID string, req schemas.TradeRequest) (*schemas.TradeResponse, error) {
	if req.Quantity <= 0 {
		return nil, models.ErrInvalidQuantity
	}
	if _, err := c.Accounts.GetOrInitialize(ctx, userID); err != nil {
		return nil, err
	}
	price, err := c.Quoter.GetQuote(ctx, req.Asset)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = req.Asset.ID
	}
	result, err := c.Trades.Buy(ctx, services.TradeRequest{
		UserID:   userID,
		Asset:    req.Asset,
		Name:     name,
		Quantity: req.Quantity,
		Price:    price,
	})
	if err != nil {
		return nil, err
	}
	return tradeResponse("bought", result), nil
}

func (c *PaperTradingController) Sell(ctx context.Context, userID string, req schemas.TradeRequest) (*schemas.TradeResponse, error) {
	if req.Quantity <= 0 {
		return nil, models.ErrInvalidQuantity
	}
	// Unknown positions are rejected before a quote is requested.
	holding, err := c.Holdings.Get(ctx, userID, req.Asset)
	if err != nil {
		return nil, err
	}
	price, err := c.Quoter.GetQuote(ctx, req.Asset)
	if err != nil {
		return nil, err
	}
	result, err := c.Trades.Sell(ctx, services.TradeRequest{
		UserID:   userID,
		Asset:    req.Asset,
		Name:     holding.Name,
		Quantity: req.Quantity,
		Price:    price,
	})
	if err != nil {
		return nil, err
	}
	return tradeResponse("sold", result), nil
}

func tradeResponse(verb string, result *services.TradeResult) *schemas.TradeResponse {
	tx := result.Transaction
	unit := "shares"
	if tx.Asset.Kind == models.AssetKindCrypto {
		unit = "units"
	}
	return &schemas.TradeResponse{
		Message: fmt.Sprintf("Successfully %s %g %s of %s at $%.2f",
			verb, tx.Quantity, unit, tx.Asset.ID, tx.Price),
		Holding:     result.Holding,
		Transaction: tx,
		Account:     result.Account,
	}
}

func (c *PaperTradingController) GetTransactions(ctx context.Context, userID string, filter models.TransactionFilter) (*schemas.TransactionsResponse, error) {
	transactions, err := c.Transactions.Query(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return &schemas.TransactionsResponse{Transactions: transactions, Count: len(transactions)}, nil
}

func (c *PaperTradingController) ExportTransactions(ctx context.Context, userID string) (*excelize.File, error) {
	return c.Exports.GenerateTransactionsXLSX(ctx, userID)
}

// ExportTransactionsCSV, GetStatementPDF and GetAllocationChart render into memory so
// a failure can still be reported with a proper status.
func (c *PaperTradingController) ExportTransactionsCSV(ctx context.Context, userID string) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := c.Exports.WriteTransactionsCSV(ctx, userID, &buf); err != nil {
		return nil, err
	}
	return &buf, nil
}

func (c *PaperTradingController) GetStatementPDF(ctx context.Context, userID string) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := c.Exports.WriteStatementPDF(ctx, userID, &buf); err != nil {
		return nil, err
	}
	return &buf, nil
}

func (c *PaperTradingController) GetAllocationChart(ctx context.Context, userID string) (*bytes.Buffer, error) {
	if _, err := c.Accounts.GetOrInitialize(ctx, userID); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := c.Exports.WriteAllocationChart(ctx, userID, &buf); err != nil {
		return nil, err
	}
	return &buf, nil
}

func (c *PaperTradingController) GetPerformance(ctx context.Context, userID string) (*models.Performance, error) {
	return c.Performance.Calculate(ctx, userID)
}

func (c *PaperTradingController) GetPortfolio(ctx context.Context, userID string) (*models.Valuation, error) {
	if _, err := c.Accounts.GetOrInitialize(ctx, userID); err != nil {
		return nil, err
	}
	return c.Valuations.Valuate(ctx, userID)
}

func (c *PaperTradingController) RefreshPortfolio(ctx context.Context, userID string) (*models.Valuation, error) {
	return c.Valuations.Refresh(ctx, userID)
}
