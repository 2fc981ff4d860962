package bootstrap

import (
	"context"
	"time"

	"github.com/lucaCambi77/valr/internal/app/engine"
	matchpublisherv1 "github.com/lucaCambi77/valr/internal/domain/match-publisher/v1"
	orderreaderv1 "github.com/lucaCambi77/valr/internal/domain/order-reader/v1"
	pairv1 "github.com/lucaCambi77/valr/internal/domain/pair/v1"
	snapshotv1 "github.com/lucaCambi77/valr/internal/domain/snapshot/v1"
	walletv1 "github.com/lucaCambi77/valr/internal/domain/wallet/v1"
	"github.com/lucaCambi77/valr/internal/usecase/exchange"
	"github.com/lucaCambi77/valr/internal/usecase/ledger"
	matchpublisher "github.com/lucaCambi77/valr/internal/usecase/match-publisher"
	orderreader "github.com/lucaCambi77/valr/internal/usecase/order-reader"
	"github.com/lucaCambi77/valr/internal/usecase/pair"
	"github.com/lucaCambi77/valr/internal/usecase/settlement"
	"github.com/lucaCambi77/valr/internal/usecase/snapshot"
	"github.com/lucaCambi77/valr/internal/usecase/tradelog"
	"github.com/lucaCambi77/valr/internal/usecase/wallet"
	"github.com/lucaCambi77/valr/pkg/logger"
)

// Usecase holds the exchange core and its publishing decorator.
type Usecase struct {
	Pairs      *pair.Registry
	Wallets    *wallet.Store
	Ledger     *ledger.Ledger
	Trades     *tradelog.Log
	Settlement *settlement.Engine
	Exchange   *exchange.Exchange
	Publishing *engine.Publishing
}

func (b *Bootstrap) registerUsecase(_ context.Context) error {
	cfg := b.Config.Exchange

	pairs := make([]pairv1.CurrencyPair, 0, len(cfg.Pairs))
	for _, p := range cfg.Pairs {
		pairs = append(pairs, pairv1.CurrencyPair{
			Symbol:        p.Symbol,
			BaseCurrency:  p.Base,
			QuoteCurrency: p.Quote,
			ShortName:     p.ShortName,
			BaseDecimals:  p.BaseDecimals,
		})
	}

	b.Usecase.Pairs = pair.NewRegistry(pairs...)
	b.Usecase.Wallets = wallet.NewStore()
	b.Usecase.Ledger = ledger.NewLedger(b.Usecase.Wallets, b.Logger)
	b.Usecase.Trades = tradelog.NewLog()
	b.Usecase.Settlement = settlement.NewEngine(
		b.Usecase.Ledger,
		b.Usecase.Trades,
		b.Logger,
		cfg.TakerFeeRate,
		cfg.MakerRewardRate,
	)
	b.Usecase.Exchange = exchange.NewExchange(
		b.Usecase.Pairs,
		b.Usecase.Wallets,
		b.Usecase.Ledger,
		b.Usecase.Trades,
		b.Usecase.Settlement,
		b.Logger,
	)

	var snapshots snapshotv1.Store
	if b.Infrastructure.Redis != nil {
		snapshots = snapshot.NewSnapshotStore(b.Infrastructure.Redis, b.Config.Redis.Config, b.Logger)
	}

	b.Usecase.Publishing = engine.NewPublishing(b.Usecase.Exchange, b.registerPublishers(), snapshots, b.Logger)
	return nil
}

// registerPublishers returns the trade publishers of the enabled sinks, or
// nil when none is enabled.
func (b *Bootstrap) registerPublishers() matchpublisherv1.MatchPublisher {
	fanout := matchpublisher.NewFanout(b.Logger)

	if b.Config.MatchKafka.Enabled {
		publisher := matchpublisher.NewPublisher(b.Config.MatchKafka, b.Logger)
		fanout.Add("kafka", publisher)
		b.onClose(func() {
			if err := publisher.Close(); err != nil {
				b.Logger.Error(err, logger.Field{Key: "action", Value: "close_match_publisher"})
			}
		})
	}
	if b.Repository.TradeRepository != nil {
		fanout.Add("postgres", matchpublisher.NewArchive(b.Repository.TradeRepository))
	}

	if fanout.Len() == 0 {
		return nil
	}
	return fanout
}

// seed creates the configured wallets with their starting balances.
func (b *Bootstrap) seed(ctx context.Context) error {
	for _, w := range b.Config.Exchange.Users {
		if _, err := b.Usecase.Wallets.Create(ctx, w.UserID); err != nil {
			return err
		}
		for _, balance := range w.Balances {
			if err := b.Usecase.Wallets.Deposit(ctx, w.UserID, walletv1.Leg(balance.Leg), balance.Currency, balance.Amount); err != nil {
				return err
			}
		}
		b.Logger.Info("Wallet seeded",
			logger.Field{Key: "user", Value: w.UserID},
			logger.Field{Key: "balances", Value: len(w.Balances)},
		)
	}
	return nil
}

func (b *Bootstrap) registerEngine(_ context.Context) error {
	var reader orderreaderv1.OrderReader
	if b.Config.OrderKafka.Enabled {
		reader = orderreader.NewReader(b.Config.OrderKafka, b.Logger)
	}

	b.Engine = engine.NewEngineWithOptions(b.Usecase.Publishing, reader, b.Usecase.Pairs, b.Logger, &engine.Options{
		ReadBackoff:      engine.DefaultEngineOptions().ReadBackoff,
		SnapshotInterval: b.snapshotInterval(),
	})
	return nil
}

// snapshotInterval refreshes snapshots at half their TTL so they never lapse.
func (b *Bootstrap) snapshotInterval() time.Duration {
	if b.Infrastructure.Redis == nil || b.Config.Redis.SnapshotTTL <= 0 {
		return 0
	}
	return b.Config.Redis.SnapshotTTL / 2
}
