package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Service   ServiceConfig   `mapstructure:"service"`
	Databases DatabasesConfig `mapstructure:"databases"`
	Trading   TradingConfig   `mapstructure:"trading"`
	Quotes    QuotesConfig    `mapstructure:"quotes"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	Secrets   SecretsConfig   `mapstructure:"secrets"`
}

type ServiceType string

const (
	API    ServiceType = "API"
	WORKER ServiceType = "WORKER"
)

type ServiceConfig struct {
	Type           ServiceType `mapstructure:"type"`
	Port           string      `mapstructure:"port"`
	LogLevel       string      `mapstructure:"logLevel"`
	AllowedOrigins []string    `mapstructure:"allowedOrigins"`
}

type StoreDriver string

const (
	DriverPostgres StoreDriver = "postgres"
	DriverMongo    StoreDriver = "mongo"
	DriverMemory   StoreDriver = "memory"
)

type DatabasesConfig struct {
	Driver StoreDriver `mapstructure:"driver"`
	SQL    SQLConfig   `mapstructure:"sql"`
	Mongo  MongoConfig `mapstructure:"mongo"`
	Redis  RedisConfig `mapstructure:"redis"`
}

type SQLConfig struct {
	Host             string `mapstructure:"host"`
	Port             string `mapstructure:"port"`
	Username         string `mapstructure:"username"`
	Password         string `mapstructure:"password"`
	Database         string `mapstructure:"database"`
	ConnectionString string `mapstructure:"connection_string"`
	MaxConns         int32  `mapstructure:"maxConns"`
}

type MongoConfig struct {
	URI         string                `mapstructure:"uri"`
	Database    string                `mapstructure:"database"`
	Collections MongoCollectionConfig `mapstructure:"collections"`
}

type MongoCollectionConfig struct {
	Accounts       string `mapstructure:"accounts"`
	StockHoldings  string `mapstructure:"stockHoldings"`
	CryptoHoldings string `mapstructure:"cryptoHoldings"`
	Transactions   string `mapstructure:"transactions"`
}

// RedisConfig is optional. An empty host keeps the quote cache in process.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
	TLS      bool   `mapstructure:"tls"`
}

type TradingConfig struct {
	StartingBalance         float64 `mapstructure:"startingBalance"`
	DefaultTransactionLimit int     `mapstructure:"defaultTransactionLimit"`
	MaxTransactionLimit     int     `mapstructure:"maxTransactionLimit"`
}

type QuotesConfig struct {
	Finnhub   QuoteProviderConfig `mapstructure:"finnhub"`
	CoinGecko QuoteProviderConfig `mapstructure:"coingecko"`
	CacheTTL  time.Duration       `mapstructure:"cacheTTL"`
	Timeout   time.Duration       `mapstructure:"timeout"`
	Retries   uint64              `mapstructure:"retries"`
}

type QuoteProviderConfig struct {
	BaseURL string `mapstructure:"baseUrl"`
	APIKey  string `mapstructure:"apiKey"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwtSecret"`
}

type WorkerConfig struct {
	RefreshCron string `mapstructure:"refreshCron"`
	Concurrency int    `mapstructure:"concurrency"`
}

// SecretsConfig names AWS Secrets Manager entries that override values read from
// files. Nothing is fetched when AWSRegion is empty.
type SecretsConfig struct {
	AWSRegion       string `mapstructure:"awsRegion"`
	SQLPasswordID   string `mapstructure:"sqlPasswordId"`
	FinnhubAPIKeyID string `mapstructure:"finnhubApiKeyId"`
	JWTSecretID     string `mapstructure:"jwtSecretId"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.type", string(API))
	v.SetDefault("service.port", "8000")
	v.SetDefault("service.logLevel", "info")
	v.SetDefault("databases.driver", string(DriverPostgres))
	v.SetDefault("databases.sql.maxConns", 10)
	v.SetDefault("databases.mongo.database", "papertrading")
	v.SetDefault("databases.mongo.collections.accounts", "paper_trading_accounts")
	v.SetDefault("databases.mongo.collections.stockHoldings", "paper_stock_holdings")
	v.SetDefault("databases.mongo.collections.cryptoHoldings", "paper_crypto_holdings")
	v.SetDefault("databases.mongo.collections.transactions", "paper_transactions")
	v.SetDefault("trading.startingBalance", 100000.0)
	v.SetDefault("trading.defaultTransactionLimit", 50)
	v.SetDefault("trading.maxTransactionLimit", 1000)
	v.SetDefault("quotes.finnhub.baseUrl", "https://finnhub.io/api/v1")
	v.SetDefault("quotes.coingecko.baseUrl", "https://api.coingecko.com/api/v3")
	v.SetDefault("quotes.cacheTTL", "30s")
	v.SetDefault("quotes.timeout", "5s")
	v.SetDefault("quotes.retries", 3)
	v.SetDefault("worker.refreshCron", "*/15 * * * *")
	v.SetDefault("worker.concurrency", 4)
}

// LoadConfig reads appsettings.yaml from path and merges appsettings.<env>.yaml on top
// when env is set. Environment variables prefixed with PAPER_ override both.
func LoadConfig(path string, env string) (*Config, error) {
	var cfg Config

	v := viper.New()
	setDefaults(v)
	v.AddConfigPath(path)
	v.SetConfigName("appsettings")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("PAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	if env != "" {
		v.SetConfigName("appsettings." + env)
		if err := v.MergeInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, err
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
