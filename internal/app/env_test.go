package app_test

import (
	"context"
	"sync"
	"time"

	"vitadash-reward-service/internal/app"
	"vitadash-reward-service/internal/domain"
	"vitadash-reward-service/internal/infra/memory"
)

// fakeClock is a settable clock shared by every service in a test env.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// recorderSink captures delivered notifications.
type recorderSink struct {
	mu        sync.Mutex
	delivered []domain.Notification
}

func (s *recorderSink) Deliver(n domain.Notification) {
	s.mu.Lock()
	s.delivered = append(s.delivered, n)
	s.mu.Unlock()
}

func (s *recorderSink) byType(kind domain.NotificationType) []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Notification
	for _, n := range s.delivered {
		if n.Type == kind {
			out = append(out, n)
		}
	}
	return out
}

// testStores is the store surface the env builder needs; *memory.Store
// and the failure-injecting wrappers in these tests all satisfy it.
type testStores interface {
	app.TransactionStore
	app.AttemptStore
	app.StreakStore
	app.OwnershipStore
	app.NotificationStore
	app.UserStore
}

type testEnv struct {
	store      testStores
	clock      *fakeClock
	sink       *recorderSink
	locks      *app.UserLocks
	ledger     *app.Ledger
	gate       *app.Gate
	streaks    *app.StreakTracker
	badges     *app.BadgeEngine
	quiz       *app.QuizEngine
	accounts   *app.Accounts
	stats      *app.StatsAggregator
	dispatcher *app.Dispatcher
}

func newTestEnv() *testEnv {
	return newTestEnvWithStore(memory.NewStore())
}

func newTestEnvWithStore(store testStores) *testEnv {
	clock := newFakeClock()
	sink := &recorderSink{}
	locks := app.NewUserLocks()
	catalog := memory.NewCatalog(memory.DefaultBadges())

	ledger := app.NewLedger(store, memory.NewBalanceCache(), locks, clock)
	dispatcher := app.NewDispatcher(store, sink, clock)
	streaks := app.NewStreakTracker(store)
	gate := app.NewGate(store)
	badges := app.NewBadgeEngine(catalog, store, ledger, store, store, dispatcher, locks, clock)
	quiz := app.NewQuizEngine(ledger, store, gate, streaks, badges, locks, clock, app.RewardConfig{})
	accounts := app.NewAccounts(store, ledger, badges, dispatcher, locks, clock, app.BonusConfig{})
	stats := app.NewStatsAggregator(ledger, store)

	return &testEnv{
		store:      store,
		clock:      clock,
		sink:       sink,
		locks:      locks,
		ledger:     ledger,
		gate:       gate,
		streaks:    streaks,
		badges:     badges,
		quiz:       quiz,
		accounts:   accounts,
		stats:      stats,
		dispatcher: dispatcher,
	}
}

// answerAll submits the correct option for the first `correct`
// questions and a wrong option for the rest.
func answerAll(ctx context.Context, env *testEnv, sessionID string, questions []domain.Question, correct int) error {
	for i, q := range questions {
		var pick string
		for _, opt := range q.Options {
			if opt.Correct == (i < correct) {
				pick = opt.ID
				break
			}
		}
		if err := env.quiz.SubmitAnswer(ctx, sessionID, i, pick); err != nil {
			return err
		}
	}
	return nil
}
