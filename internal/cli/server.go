package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"vitadash-reward-service/internal/app"
	"vitadash-reward-service/internal/config"
	"vitadash-reward-service/internal/domain"
	"vitadash-reward-service/internal/infra/memory"
	pgstore "vitadash-reward-service/internal/infra/postgres"
	redisinfra "vitadash-reward-service/internal/infra/redis"
	transport "vitadash-reward-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the reward engine server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// rewardStores groups the persistence surfaces the services need. Both
// the memory and postgres stores satisfy it.
type rewardStores interface {
	app.TransactionStore
	app.AttemptStore
	app.StreakStore
	app.OwnershipStore
	app.NotificationStore
	app.UserStore
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var store rewardStores = memory.NewStore()
	var catalog app.BadgeCatalog = memory.NewCatalog(memory.DefaultBadges())
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		store = pgstore.NewStore(pool)

		catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
		loader := pgstore.NewBadgeLoader(pool)
		if redisClient != nil {
			catalog = redisinfra.NewCatalogCache(redisClient, loader, catalogTTL)
		} else {
			catalog = loaderCatalog{loader: loader}
		}
	}

	var cache app.BalanceCache = memory.NewBalanceCache()
	if redisClient != nil {
		walletTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
		cache = redisinfra.NewWalletCache(redisClient, walletTTL)
	}

	locks := app.NewUserLocks()
	clock := app.SystemClock
	hub := transport.NewNotificationHub()

	ledger := app.NewLedger(store, cache, locks, clock)
	dispatcher := app.NewDispatcher(store, hub, clock)
	streaks := app.NewStreakTracker(store)
	gate := app.NewGate(store)
	badges := app.NewBadgeEngine(catalog, store, ledger, store, store, dispatcher, locks, clock)
	quiz := app.NewQuizEngine(ledger, store, gate, streaks, badges, locks, clock, app.RewardConfig{
		QuestionCount:     cfg.Rewards.QuestionCount,
		PerQuestionReward: cfg.Rewards.PerQuestionReward,
		MaxAwardPerQuiz:   cfg.Rewards.MaxAwardPerQuiz,
	})
	accounts := app.NewAccounts(store, ledger, badges, dispatcher, locks, clock, app.BonusConfig{
		WelcomeBonus:     cfg.Rewards.WelcomeBonus,
		DailyLoginBonus:  cfg.Rewards.DailyLoginBonus,
		MissedDayPenalty: cfg.Rewards.MissedDayPenalty,
	})
	stats := app.NewStatsAggregator(ledger, store)

	handler := transport.NewHandler(accounts, quiz, ledger, badges, streaks, stats, dispatcher, hub)
	mux := http.NewServeMux()
	handler.Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting reward service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// loaderCatalog serves the catalog straight from Postgres when no
// Redis cache is configured.
type loaderCatalog struct {
	loader *pgstore.BadgeLoader
}

func (c loaderCatalog) Badges(ctx context.Context) ([]domain.Badge, error) {
	return c.loader.LoadBadges(ctx)
}

func (c loaderCatalog) Badge(ctx context.Context, badgeID string) (domain.Badge, error) {
	badges, err := c.loader.LoadBadges(ctx)
	if err != nil {
		return domain.Badge{}, err
	}
	for _, badge := range badges {
		if badge.ID == badgeID {
			return badge, nil
		}
	}
	return domain.Badge{}, domain.ErrBadgeNotFound
}
