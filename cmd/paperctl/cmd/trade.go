package cmd

import (
	"context"
	"fmt"
	"strconv"

	"papertrading/src/models"
	"papertrading/src/services"

	"github.com/spf13/cobra"
)

var (
	tradePrice float64
	tradeName  string
)

var buyCmd = &cobra.Command{
	Use:   "buy <user> <stock|crypto> <asset> <quantity>",
	Short: "Buy an asset at the current quote or at --price",
	Args:  cobra.ExactArgs(4),
	RunE:  withLedger(runTrade(true)),
}

var sellCmd = &cobra.Command{
	Use:   "sell <user> <stock|crypto> <asset> <quantity>",
	Short: "Sell an asset at the current quote or at --price",
	Args:  cobra.ExactArgs(4),
	RunE:  withLedger(runTrade(false)),
}

func init() {
	for _, c := range []*cobra.Command{buyCmd, sellCmd} {
		c.Flags().Float64Var(&tradePrice, "price", 0, "execution price; fetched from the quote providers when omitted")
		rootCmd.AddCommand(c)
	}
	buyCmd.Flags().StringVar(&tradeName, "name", "", "display name for a new holding")
}

func parseTradeArgs(args []string) (string, models.AssetKey, float64, error) {
	kind, err := models.ParseAssetKind(args[1])
	if err != nil {
		return "", models.AssetKey{}, 0, err
	}
	asset, err := models.NewAssetKey(kind, args[2])
	if err != nil {
		return "", models.AssetKey{}, 0, err
	}
	quantity, err := strconv.ParseFloat(args[3], 64)
	if err != nil {
		return "", models.AssetKey{}, 0, fmt.Errorf("invalid quantity %q", args[3])
	}
	return args[0], asset, quantity, nil
}

func runTrade(buy bool) func(ctx context.Context, l *ledger, cmd *cobra.Command, args []string) error {
	return func(ctx context.Context, l *ledger, cmd *cobra.Command, args []string) error {
		userID, asset, quantity, err := parseTradeArgs(args)
		if err != nil {
			return err
		}

		price := tradePrice
		if price == 0 {
			if price, err = l.controller.Quoter.GetQuote(ctx, asset); err != nil {
				return err
			}
		}
		name := tradeName
		if name == "" {
			name = asset.ID
		}
		req := services.TradeRequest{UserID: userID, Asset: asset, Name: name, Quantity: quantity, Price: price}

		var result *services.TradeResult
		if buy {
			if _, err := l.controller.Accounts.GetOrInitialize(ctx, userID); err != nil {
				return err
			}
			result, err = l.controller.Trades.Buy(ctx, req)
		} else {
			result, err = l.controller.Trades.Sell(ctx, req)
		}
		if err != nil {
			return err
		}
		return printJSON(cmd, result)
	}
}
