package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/lucaCambi77/valr/pkg/postgresql"
	"github.com/lucaCambi77/valr/pkg/redis"
	"github.com/shopspring/decimal"
)

// Config represents the application configuration.
type Config struct {
	App        AppConfig        `envPrefix:"APP_"`
	Exchange   ExchangeConfig   `envPrefix:"EXCHANGE_"`
	OrderKafka OrderKafkaConfig `envPrefix:"ORDER_KAFKA_"`
	MatchKafka MatchKafkaConfig `envPrefix:"MATCH_KAFKA_"`
	Redis      RedisConfig      `envPrefix:"REDIS_"`
	Postgres   PostgresConfig   `envPrefix:"POSTGRES_"`
}

// AppConfig represents the application configuration.
type AppConfig struct {
	Name        string `env:"NAME" envDefault:"exchange"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8080"`
	GRPCPort    int    `env:"GRPC_PORT" envDefault:"8880"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

// ExchangeConfig holds the venue economics and the startup seed data.
type ExchangeConfig struct {
	TakerFeeRate    decimal.Decimal `env:"TAKER_FEE_RATE" envDefault:"0.001"`
	MakerRewardRate decimal.Decimal `env:"MAKER_REWARD_RATE" envDefault:"0.0005"`

	// PairsSeed is a comma separated list of SYMBOL:BASE:QUOTE:SHORTNAME:DECIMALS.
	PairsSeed string `env:"PAIRS" envDefault:"BTCUSDC:BTC:USDC:BTC/USDC:8,ETHUSDC:ETH:USDC:ETH/USDC:8"`
	// UsersSeed is a | separated list of user:leg:CUR=amount;leg:CUR=amount.
	UsersSeed string `env:"USERS"`

	Pairs []PairSeed   `env:"-"`
	Users []WalletSeed `env:"-"`
}

// PairSeed describes one tradable currency pair.
type PairSeed struct {
	Symbol       string
	Base         string
	Quote        string
	ShortName    string
	BaseDecimals int32
}

// BalanceSeed is one starting balance of a wallet.
type BalanceSeed struct {
	Leg      string // "base" or "quote"
	Currency string
	Amount   decimal.Decimal
}

// WalletSeed is a user created at startup with its starting balances.
type WalletSeed struct {
	UserID   string
	Balances []BalanceSeed
}

// OrderKafkaConfig configures the inbound order command topic.
type OrderKafkaConfig struct {
	Enabled bool     `env:"ENABLED" envDefault:"false"`
	Brokers []string `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic   string   `env:"TOPIC" envDefault:"orders"`
	GroupID string   `env:"GROUP_ID" envDefault:"exchange"`
}

// MatchKafkaConfig configures the outbound trade event topic.
type MatchKafkaConfig struct {
	Enabled bool     `env:"ENABLED" envDefault:"false"`
	Brokers []string `env:"BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Topic   string   `env:"TOPIC" envDefault:"trades"`
}

// RedisConfig toggles the order-book snapshot store.
type RedisConfig struct {
	Enabled      bool `env:"ENABLED" envDefault:"false"`
	redis.Config `envPrefix:""`
}

// PostgresConfig toggles the trade archive.
type PostgresConfig struct {
	Enabled           bool `env:"ENABLED" envDefault:"false"`
	postgresql.Config `envPrefix:""`
}

// Load loads the configuration from the environment and an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Exchange.parse(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *ExchangeConfig) parse() error {
	one := decimal.NewFromInt(1)
	if c.TakerFeeRate.IsNegative() || c.TakerFeeRate.GreaterThanOrEqual(one) {
		return fmt.Errorf("taker fee rate must be in [0, 1), got %s", c.TakerFeeRate)
	}
	if c.MakerRewardRate.IsNegative() || c.MakerRewardRate.GreaterThanOrEqual(one) {
		return fmt.Errorf("maker reward rate must be in [0, 1), got %s", c.MakerRewardRate)
	}

	pairs, err := ParsePairs(c.PairsSeed)
	if err != nil {
		return err
	}
	c.Pairs = pairs

	users, err := ParseWallets(c.UsersSeed)
	if err != nil {
		return err
	}
	c.Users = users

	return nil
}

// ParsePairs parses SYMBOL:BASE:QUOTE:SHORTNAME:DECIMALS entries separated by commas.
func ParsePairs(raw string) ([]PairSeed, error) {
	var pairs []PairSeed
	for _, entry := range splitNonEmpty(raw, ",") {
		parts := strings.Split(entry, ":")
		if len(parts) != 5 {
			return nil, fmt.Errorf("invalid pair %q: want SYMBOL:BASE:QUOTE:SHORTNAME:DECIMALS", entry)
		}
		decimals, err := strconv.ParseInt(parts[4], 10, 32)
		if err != nil || decimals < 0 {
			return nil, fmt.Errorf("invalid base decimals in pair %q", entry)
		}
		pairs = append(pairs, PairSeed{
			Symbol:       parts[0],
			Base:         parts[1],
			Quote:        parts[2],
			ShortName:    parts[3],
			BaseDecimals: int32(decimals),
		})
	}
	return pairs, nil
}

// ParseWallets parses user:leg:CUR=amount;leg:CUR=amount entries separated by |.
func ParseWallets(raw string) ([]WalletSeed, error) {
	var wallets []WalletSeed
	for _, entry := range splitNonEmpty(raw, "|") {
		userID, rest, ok := strings.Cut(entry, ":")
		if !ok || userID == "" {
			return nil, fmt.Errorf("invalid wallet %q: want user:leg:CUR=amount", entry)
		}

		seed := WalletSeed{UserID: userID}
		for _, balance := range splitNonEmpty(rest, ";") {
			leg, holding, ok := strings.Cut(balance, ":")
			if !ok || (leg != "base" && leg != "quote") {
				return nil, fmt.Errorf("invalid balance %q for user %s: leg must be base or quote", balance, userID)
			}
			currency, amount, ok := strings.Cut(holding, "=")
			if !ok || currency == "" {
				return nil, fmt.Errorf("invalid balance %q for user %s", balance, userID)
			}
			value, err := decimal.NewFromString(amount)
			if err != nil || value.IsNegative() {
				return nil, fmt.Errorf("invalid amount %q for user %s", amount, userID)
			}
			seed.Balances = append(seed.Balances, BalanceSeed{Leg: leg, Currency: currency, Amount: value})
		}
		wallets = append(wallets, seed)
	}
	return wallets, nil
}

func splitNonEmpty(raw, sep string) []string {
	var out []string
	for _, part := range strings.Split(raw, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
