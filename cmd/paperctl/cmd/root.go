package cmd

import (
	"context"
	"encoding/json"
	"os"

	"papertrading/src/api/controllers"
	"papertrading/src/clients"
	"papertrading/src/config"
	"papertrading/src/database"
	"papertrading/src/utils"
	aws_handler "papertrading/src/utils/aws"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "paperctl",
	Short: "Administer paper trading accounts",
	Long: `paperctl operates on the same store and configuration as the paper trading service.

It can open accounts, place trades at the current quote or an explicit price,
list the transaction log, compute realized performance and refresh valuations.`,
	SilenceUsage: true,
}

var (
	settingsPath string
	environment  string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "./settings", "directory holding appsettings.yaml")
	rootCmd.PersistentFlags().StringVar(&environment, "env", os.Getenv("ENV"), "environment overlay (appsettings.<env>.yaml)")
}

type ledger struct {
	cfg        *config.Config
	controller *controllers.PaperTradingController
	close      func()
}

// openLedger loads configuration and connects the store and quote clients.
func openLedger(ctx context.Context) (context.Context, *ledger, error) {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(settingsPath, environment)
	if err != nil {
		return ctx, nil, err
	}
	if err := aws_handler.ApplySecrets(cfg); err != nil {
		return ctx, nil, err
	}
	logger := utils.NewLogger(utils.ParseLevel(cfg.Service.LogLevel), os.Getenv("LOG_FILE"))
	logger.SetOutput(os.Stderr)
	ctx = utils.WithLogger(ctx, logger)

	store, err := database.NewStore(ctx, cfg)
	if err != nil {
		return ctx, nil, err
	}
	quoter, closeQuoter, err := clients.NewQuoter(ctx, cfg)
	if err != nil {
		_ = store.Close(ctx)
		return ctx, nil, err
	}

	return ctx, &ledger{
		cfg:        cfg,
		controller: controllers.NewPaperTradingController(cfg, store, quoter),
		close: func() {
			closeQuoter()
			_ = store.Close(context.Background())
		},
	}, nil
}

// withLedger adapts a command body that needs an open ledger.
func withLedger(run func(ctx context.Context, l *ledger, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, l, err := openLedger(cmd.Context())
		if err != nil {
			return err
		}
		defer l.close()
		return run(ctx, l, cmd, args)
	}
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
