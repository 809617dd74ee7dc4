package controllers

import (
	"papertrading/src/config"
	"papertrading/src/repositories"
	"papertrading/src/services"
)

// NewPaperTradingController wires the ledger services over one store.
func NewPaperTradingController(cfg *config.Config, store repositories.Store, quoter services.Quoter) *PaperTradingController {
	accounts := services.NewAccountService(store, cfg.Trading.StartingBalance)
	holdings := services.NewHoldingService(store)
	transactions := services.NewTransactionService(store, cfg.Trading.DefaultTransactionLimit, cfg.Trading.MaxTransactionLimit)
	valuations := services.NewValuationService(accounts, holdings, quoter, cfg.Worker.Concurrency)

	return &PaperTradingController{
		Accounts:     accounts,
		Holdings:     holdings,
		Transactions: transactions,
		Trades:       services.NewTradeService(store, accounts, holdings, transactions),
		Performance:  services.NewPerformanceService(accounts, transactions),
		Valuations:   valuations,
		Exports:      services.NewExportService(accounts, transactions, valuations),
		Quoter:       quoter,
	}
}
