package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Open or inspect a paper trading account",
}

var accountInitCmd = &cobra.Command{
	Use:   "init <user>",
	Short: "Open an account with the configured starting balance",
	Args:  cobra.ExactArgs(1),
	RunE: withLedger(func(ctx context.Context, l *ledger, cmd *cobra.Command, args []string) error {
		account, err := l.controller.CreateAccount(ctx, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, account)
	}),
}

var accountShowCmd = &cobra.Command{
	Use:   "show <user>",
	Short: "Print the account and its open holdings",
	Args:  cobra.ExactArgs(1),
	RunE: withLedger(func(ctx context.Context, l *ledger, cmd *cobra.Command, args []string) error {
		account, err := l.controller.Accounts.Get(ctx, args[0])
		if err != nil {
			return err
		}
		holdings, err := l.controller.Holdings.List(ctx, args[0], "")
		if err != nil {
			return err
		}
		return printJSON(cmd, map[string]interface{}{
			"account":  account,
			"holdings": holdings,
		})
	}),
}

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountInitCmd)
	accountCmd.AddCommand(accountShowCmd)
}
