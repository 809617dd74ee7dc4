package services_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"papertrading/src/models"
	"papertrading/src/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportService(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t)
	valuations := services.NewValuationService(l.accounts, l.holdings, fakeQuoter{models.Stock("AAPL"): 150}, 1)
	svc := services.NewExportService(l.accounts, l.transactions, valuations)

	t.Run("unknown account", func(t *testing.T) {
		_, err := svc.GenerateTransactionsXLSX(ctx, "nobody")
		assert.ErrorIs(t, err, models.ErrAccountNotFound)
	})

	_, err := l.accounts.Initialize(ctx, "user-1")
	require.NoError(t, err)
	l.buy(t, "user-1", models.Stock("AAPL"), 10, 100)
	l.sell(t, "user-1", models.Stock("AAPL"), 4, 125)

	f, err := svc.GenerateTransactionsXLSX(ctx, "user-1")
	require.NoError(t, err)
	defer f.Close()

	t.Run("sheets", func(t *testing.T) {
		assert.Equal(t, []string{"Transactions", "Performance"}, f.GetSheetList())
	})

	t.Run("transactions sheet holds the history oldest first", func(t *testing.T) {
		rows, err := f.GetRows("Transactions")
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "Date", rows[0][0])
		assert.Equal(t, "Balance After", rows[0][9])
		assert.Equal(t, []string{"buy", "stock", "AAPL", "AAPL"}, rows[1][1:5])
		assert.Equal(t, "sell", rows[2][1])
		assert.Equal(t, "4", rows[2][5])
	})

	t.Run("performance sheet", func(t *testing.T) {
		rows, err := f.GetRows("Performance")
		require.NoError(t, err)
		values := map[string]string{}
		for _, row := range rows {
			require.Len(t, row, 2)
			values[row[0]] = row[1]
		}
		assert.Equal(t, "100000", values["Initial Balance"])
		assert.Equal(t, "100", values["Realized Profit/Loss"])
		assert.Equal(t, "1", values["Total Trades"])
		assert.Equal(t, "100", values["Win Rate %"])
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, svc.WriteTransactionsCSV(ctx, "user-1", &buf))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "Date", records[0][0])
		assert.Equal(t, "Balance After", records[0][9])
		assert.Equal(t, []string{"buy", "stock", "AAPL"}, records[1][1:4])
		assert.Equal(t, "sell", records[2][1])

		assert.ErrorIs(t, svc.WriteTransactionsCSV(ctx, "nobody", &buf), models.ErrAccountNotFound)
	})

	t.Run("statement pdf", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, svc.WriteStatementPDF(ctx, "user-1", &buf))
		assert.True(t, strings.HasPrefix(buf.String(), "%PDF-"))
	})

	t.Run("allocation chart", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, svc.WriteAllocationChart(ctx, "user-1", &buf))
		html := buf.String()
		assert.Contains(t, html, "Portfolio Allocation")
		assert.Contains(t, html, "AAPL")
		assert.Contains(t, html, "Cash")
	})
}
