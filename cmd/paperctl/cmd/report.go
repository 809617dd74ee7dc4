package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"papertrading/src/models"

	"github.com/spf13/cobra"
)

var (
	txLimit     int
	txType      string
	txAssetType string
)

var transactionsCmd = &cobra.Command{
	Use:   "transactions <user>",
	Short: "List the transaction log, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: withLedger(func(ctx context.Context, l *ledger, cmd *cobra.Command, args []string) error {
		filter := models.TransactionFilter{Limit: txLimit}
		var err error
		if txType != "" {
			if filter.Type, err = models.ParseTransactionType(txType); err != nil {
				return err
			}
		}
		if txAssetType != "" {
			if filter.AssetKind, err = models.ParseAssetKind(txAssetType); err != nil {
				return err
			}
		}
		res, err := l.controller.GetTransactions(ctx, args[0], filter)
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	}),
}

var performanceCmd = &cobra.Command{
	Use:   "performance <user>",
	Short: "Compute realized performance from the transaction log",
	Args:  cobra.ExactArgs(1),
	RunE: withLedger(func(ctx context.Context, l *ledger, cmd *cobra.Command, args []string) error {
		perf, err := l.controller.GetPerformance(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, perf)
	}),
}

var refreshAll bool

var refreshCmd = &cobra.Command{
	Use:   "refresh [user]",
	Short: "Mark holdings to market and store the account total value",
	Args:  cobra.MaximumNArgs(1),
	RunE: withLedger(func(ctx context.Context, l *ledger, cmd *cobra.Command, args []string) error {
		if refreshAll || len(args) == 0 {
			summary, err := l.controller.Valuations.RefreshAll(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, summary)
		}
		valuation, err := l.controller.RefreshPortfolio(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, valuation)
	}),
}

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export <user>",
	Short: "Write the transaction history as xlsx or csv, or a pdf statement",
	Args:  cobra.ExactArgs(1),
	RunE: withLedger(func(ctx context.Context, l *ledger, cmd *cobra.Command, args []string) error {
		var buf bytes.Buffer
		switch exportFormat {
		case "xlsx":
			f, err := l.controller.ExportTransactions(ctx, args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			if err := f.Write(&buf); err != nil {
				return err
			}
		case "csv":
			if err := l.controller.Exports.WriteTransactionsCSV(ctx, args[0], &buf); err != nil {
				return err
			}
		case "pdf":
			if err := l.controller.Exports.WriteStatementPDF(ctx, args[0], &buf); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported format %q", exportFormat)
		}

		out := exportOut
		if out == "" {
			out = fmt.Sprintf("%s-transactions.%s", args[0], exportFormat)
		}
		if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, buf.Len())
		return nil
	}),
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "xlsx", "xlsx, csv or pdf")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default <user>-transactions.<format>)")
	rootCmd.AddCommand(exportCmd)

	transactionsCmd.Flags().IntVar(&txLimit, "limit", 0, "maximum rows (service default when 0)")
	transactionsCmd.Flags().StringVar(&txType, "type", "", "buy or sell")
	transactionsCmd.Flags().StringVar(&txAssetType, "asset-type", "", "stock or crypto")
	refreshCmd.Flags().BoolVar(&refreshAll, "all", false, "refresh every account")

	rootCmd.AddCommand(transactionsCmd)
	rootCmd.AddCommand(performanceCmd)
	rootCmd.AddCommand(refreshCmd)
}
