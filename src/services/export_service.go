package services

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"papertrading/src/models"
	"papertrading/src/utils"
	"papertrading/src/utils/render"

	"github.com/xuri/excelize/v2"
)

const (
	transactionsSheet = "Transactions"
	performanceSheet  = "Performance"
)

var transactionHeaders = []string{
	"Date", "Type", "Asset Type", "Asset", "Name", "Quantity", "Price", "Total", "Balance Before", "Balance After",
}

type ExportServiceI interface {
	GenerateTransactionsXLSX(ctx context.Context, userID string) (*excelize.File, error)
	WriteTransactionsCSV(ctx context.Context, userID string, w io.Writer) error
	WriteStatementPDF(ctx context.Context, userID string, w io.Writer) error
	WriteAllocationChart(ctx context.Context, userID string, w io.Writer) error
}

type ExportService struct {
	accounts     AccountServiceI
	transactions TransactionServiceI
	valuations   ValuationServiceI
}

func NewExportService(accounts AccountServiceI, transactions TransactionServiceI, valuations ValuationServiceI) *ExportService {
	return &ExportService{accounts: accounts, transactions: transactions, valuations: valuations}
}

// GenerateTransactionsXLSX writes the full trade history and its performance summary
// into a workbook with one sheet each.
func (es *ExportService) GenerateTransactionsXLSX(ctx context.Context, userID string) (*excelize.File, error) {
	account, err := es.accounts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	history, err := es.transactions.History(ctx, userID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", transactionsSheet); err != nil {
		return nil, err
	}
	if err := es.writeTransactions(f, history); err != nil {
		return nil, err
	}

	perf := CalculatePerformance(account, history)
	if err := es.writePerformance(f, account, perf); err != nil {
		return nil, err
	}
	return f, nil
}

func (es *ExportService) writeTransactions(f *excelize.File, history []models.Transaction) error {
	if err := f.SetSheetRow(transactionsSheet, "A1", &transactionHeaders); err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(transactionHeaders))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(transactionsSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}

	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return err
	}
	for i, tx := range history {
		row := i + 2
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		values := []interface{}{
			tx.Timestamp.UTC().Format(utils.DateTimeLayout),
			string(tx.Type),
			string(tx.Asset.Kind),
			tx.Asset.ID,
			tx.Name,
			tx.Quantity,
			tx.Price,
			tx.TotalAmount,
			tx.BalanceBefore,
			tx.BalanceAfter,
		}
		if err := f.SetSheetRow(transactionsSheet, cell, &values); err != nil {
			return err
		}
		if err := f.SetCellStyle(transactionsSheet, fmt.Sprintf("G%d", row), fmt.Sprintf("J%d", row), moneyStyle); err != nil {
			return err
		}
	}
	return f.SetColWidth(transactionsSheet, "A", lastCol, 16)
}

func (es *ExportService) writePerformance(f *excelize.File, account *models.Account, perf models.Performance) error {
	if _, err := f.NewSheet(performanceSheet); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"Initial Balance", account.InitialBalance},
		{"Current Balance", account.CurrentBalance},
		{"Total Value", account.TotalValue},
		{"Total Return", perf.TotalReturn},
		{"Total Return %", perf.TotalReturnPercent},
		{"Realized Profit/Loss", perf.TotalProfitLoss},
		{"Win Rate %", perf.WinRate},
		{"Total Trades", perf.TotalTrades},
		{"Winning Trades", perf.WinningTrades},
		{"Losing Trades", perf.LosingTrades},
		{"Average Win", perf.AverageWin},
		{"Average Loss", perf.AverageLoss},
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(performanceSheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return f.SetColWidth(performanceSheet, "A", "A", 22)
}

// WriteTransactionsCSV writes the full history, oldest first, with the same columns as
// the workbook.
func (es *ExportService) WriteTransactionsCSV(ctx context.Context, userID string, w io.Writer) error {
	if _, err := es.accounts.Get(ctx, userID); err != nil {
		return err
	}
	history, err := es.transactions.History(ctx, userID)
	if err != nil {
		return err
	}

	n := len(history)
	dates, types, kinds, assets, names := make([]string, n), make([]string, n), make([]string, n), make([]string, n), make([]string, n)
	quantities, prices, totals, before, after := make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)
	for i, tx := range history {
		dates[i] = tx.Timestamp.UTC().Format(utils.DateTimeLayout)
		types[i] = string(tx.Type)
		kinds[i] = string(tx.Asset.Kind)
		assets[i] = tx.Asset.ID
		names[i] = tx.Name
		quantities[i] = tx.Quantity
		prices[i] = tx.Price
		totals[i] = tx.TotalAmount
		before[i] = tx.BalanceBefore
		after[i] = tx.BalanceAfter
	}

	df, err := utils.NewDataFrame(
		utils.StringColumn(transactionHeaders[0], dates),
		utils.StringColumn(transactionHeaders[1], types),
		utils.StringColumn(transactionHeaders[2], kinds),
		utils.StringColumn(transactionHeaders[3], assets),
		utils.StringColumn(transactionHeaders[4], names),
		utils.FloatColumn(transactionHeaders[5], quantities),
		utils.FloatColumn(transactionHeaders[6], prices),
		utils.FloatColumn(transactionHeaders[7], totals),
		utils.FloatColumn(transactionHeaders[8], before),
		utils.FloatColumn(transactionHeaders[9], after),
	)
	if err != nil {
		return err
	}
	return utils.WriteDataFrameCSV(w, df)
}

func money(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}

// WriteStatementPDF writes an account statement: balances, realized performance and
// the trade history.
func (es *ExportService) WriteStatementPDF(ctx context.Context, userID string, w io.Writer) error {
	account, err := es.accounts.Get(ctx, userID)
	if err != nil {
		return err
	}
	history, err := es.transactions.History(ctx, userID)
	if err != nil {
		return err
	}
	perf := CalculatePerformance(account, history)

	rows := make([][]string, len(history))
	for i, tx := range history {
		rows[i] = []string{
			tx.Timestamp.UTC().Format(utils.DateTimeLayout),
			string(tx.Type),
			tx.Asset.ID,
			strconv.FormatFloat(tx.Quantity, 'f', -1, 64),
			money(tx.Price),
			money(tx.TotalAmount),
			money(tx.BalanceAfter),
		}
	}

	return render.GeneratePDF(w, render.Document{
		Title: "Paper Trading Statement",
		Summary: [][2]string{
			{"Account", account.UserID},
			{"Initial Balance", money(account.InitialBalance)},
			{"Cash Balance", money(account.CurrentBalance)},
			{"Total Value", money(account.TotalValue)},
			{"Total Return", fmt.Sprintf("%s (%.2f%%)", money(perf.TotalReturn), perf.TotalReturnPercent)},
			{"Realized Profit/Loss", money(perf.TotalProfitLoss)},
			{"Win Rate", fmt.Sprintf("%.2f%% of %d closed trades", perf.WinRate, perf.TotalTrades)},
		},
		Tables: []render.Table{{
			Title:   "Transactions",
			Headers: []string{"Date", "Type", "Asset", "Quantity", "Price", "Total", "Balance After"},
			Widths:  []float64{34, 14, 26, 26, 28, 30, 32},
			Rows:    rows,
		}},
	})
}

// WriteAllocationChart renders an HTML pie chart of cash and every open position at
// market value.
func (es *ExportService) WriteAllocationChart(ctx context.Context, userID string, w io.Writer) error {
	valuation, err := es.valuations.Valuate(ctx, userID)
	if err != nil {
		return err
	}
	slices := []render.Slice{{Name: "Cash", Value: valuation.Cash}}
	for _, pos := range valuation.Positions {
		slices = append(slices, render.Slice{Name: pos.Asset.ID, Value: pos.MarketValue})
	}
	return render.RenderPieGraph(w, "Portfolio Allocation", "Total value "+money(valuation.TotalValue), slices)
}
