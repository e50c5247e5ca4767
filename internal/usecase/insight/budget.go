package insight

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/propdex/internal/domain"
)

// BudgetAction defines behavior when the call budget is exceeded.
type BudgetAction string

const (
	// BudgetActionWarn logs a warning but allows the request.
	BudgetActionWarn BudgetAction = "warn"
	// BudgetActionReject blocks the request.
	BudgetActionReject BudgetAction = "reject"
)

// BudgetStore is the persistence interface for budget counters.
// Implementations must be idempotent (IncrBy can be called repeatedly).
type BudgetStore interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

// BudgetTracker is an in-memory insight-call budget with optional
// persistence. Limits cap generation CALLS per day and month; token totals
// ride along for usage reporting but are never capped. Hot path (Check) is
// in-memory only, no round-trip. Record updates in-memory first, then
// write-behind to store.
type BudgetTracker struct {
	mu             sync.Mutex
	dailyCalls     int64
	monthlyCalls   int64
	dailyTokens    int64
	monthlyTokens  int64
	dailyLimit     int64
	monthlyLimit   int64
	action         BudgetAction
	lastDayReset   time.Time
	lastMonthReset time.Time
	store          BudgetStore
	logger         *zap.Logger
}

// NewBudgetTracker creates a budget tracker with the given call limits.
// A zero limit means unlimited.
func NewBudgetTracker(dailyLimit, monthlyLimit int64, action BudgetAction, logger *zap.Logger) *BudgetTracker {
	now := time.Now().UTC()
	return &BudgetTracker{
		dailyLimit:     dailyLimit,
		monthlyLimit:   monthlyLimit,
		action:         action,
		lastDayReset:   truncateToDay(now),
		lastMonthReset: truncateToMonth(now),
		logger:         logger,
	}
}

// WithStore attaches a persistence store and loads current counters.
func (b *BudgetTracker) WithStore(ctx context.Context, store BudgetStore) *BudgetTracker {
	b.store = store
	b.loadFromStore(ctx)
	return b
}

func (b *BudgetTracker) loadFromStore(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now().UTC()
	counters := []struct {
		key  string
		dest *int64
	}{
		{dailyCallsKey(now), &b.dailyCalls},
		{monthlyCallsKey(now), &b.monthlyCalls},
		{dailyTokensKey(now), &b.dailyTokens},
		{monthlyTokensKey(now), &b.monthlyTokens},
	}
	for _, c := range counters {
		val, err := b.store.Get(ctx, c.key)
		if err != nil {
			b.logger.Warn("Failed to load insight budget counter", zap.String("key", c.key), zap.Error(err))
			continue
		}
		*c.dest = val
	}

	b.logger.Info("Insight budget loaded from store",
		zap.Int64("daily_calls", b.dailyCalls),
		zap.Int64("monthly_calls", b.monthlyCalls),
	)
}

func dailyCallsKey(t time.Time) string {
	return domain.KeyPrefix + "budget:insight:daily:" + t.Format("2006-01-02")
}

func monthlyCallsKey(t time.Time) string {
	return domain.KeyPrefix + "budget:insight:monthly:" + t.Format("2006-01")
}

func dailyTokensKey(t time.Time) string {
	return domain.KeyPrefix + "budget:insight:tokens:daily:" + t.Format("2006-01-02")
}

func monthlyTokensKey(t time.Time) string {
	return domain.KeyPrefix + "budget:insight:tokens:monthly:" + t.Format("2006-01")
}

// Check verifies the budget allows a new generation call. In-memory only
// (hot path).
func (b *BudgetTracker) Check(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.resetIfNeeded()

	dailyExceeded := b.dailyLimit > 0 && b.dailyCalls >= b.dailyLimit
	monthlyExceeded := b.monthlyLimit > 0 && b.monthlyCalls >= b.monthlyLimit

	if !dailyExceeded && !monthlyExceeded {
		return nil
	}

	if b.action == BudgetActionReject {
		return domain.ErrInsightQuotaExceeded
	}

	// action=warn: log but allow the request through
	b.logger.Warn("Insight call budget exceeded",
		zap.Int64("daily_calls", b.dailyCalls),
		zap.Int64("daily_limit", b.dailyLimit),
		zap.Int64("monthly_calls", b.monthlyCalls),
		zap.Int64("monthly_limit", b.monthlyLimit),
	)
	return nil
}

// Record registers one completed generation call and its token usage.
// Updates in-memory counters, then write-behind to store (if attached).
func (b *BudgetTracker) Record(tokens int64) {
	b.mu.Lock()
	b.resetIfNeeded()
	b.dailyCalls++
	b.monthlyCalls++
	b.dailyTokens += tokens
	b.monthlyTokens += tokens
	store := b.store
	now := time.Now().UTC()
	b.mu.Unlock()

	if store == nil {
		return
	}

	// Write-behind: fire-and-forget INCRBY to store.
	// Uses background context so store writes don't block the caller.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	increments := []struct {
		key string
		val int64
	}{
		{dailyCallsKey(now), 1},
		{monthlyCallsKey(now), 1},
		{dailyTokensKey(now), tokens},
		{monthlyTokensKey(now), tokens},
	}
	for _, inc := range increments {
		if inc.val == 0 {
			continue
		}
		if err := store.IncrBy(ctx, inc.key, inc.val); err != nil {
			b.logger.Warn("Failed to persist insight budget", zap.String("key", inc.key), zap.Error(err))
		}
	}
}

// RemainingDaily returns calls left in the daily budget (-1 if unlimited).
func (b *BudgetTracker) RemainingDaily() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.resetIfNeeded()
	if b.dailyLimit == 0 {
		return -1 // unlimited
	}
	remaining := b.dailyLimit - b.dailyCalls
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RemainingMonthly returns calls left in the monthly budget (-1 if unlimited).
func (b *BudgetTracker) RemainingMonthly() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.resetIfNeeded()
	if b.monthlyLimit == 0 {
		return -1 // unlimited
	}
	remaining := b.monthlyLimit - b.monthlyCalls
	if remaining < 0 {
		return 0
	}
	return remaining
}

// DailyLimit returns the daily call cap.
func (b *BudgetTracker) DailyLimit() int64 { return b.dailyLimit }

// MonthlyLimit returns the monthly call cap.
func (b *BudgetTracker) MonthlyLimit() int64 { return b.monthlyLimit }

// DailyUsed returns calls made today.
func (b *BudgetTracker) DailyUsed() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetIfNeeded()
	return b.dailyCalls
}

// MonthlyUsed returns calls made this month.
func (b *BudgetTracker) MonthlyUsed() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetIfNeeded()
	return b.monthlyCalls
}

// DailyTokens returns tokens consumed today.
func (b *BudgetTracker) DailyTokens() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetIfNeeded()
	return b.dailyTokens
}

// MonthlyTokens returns tokens consumed this month.
func (b *BudgetTracker) MonthlyTokens() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetIfNeeded()
	return b.monthlyTokens
}

// resetIfNeeded zeroes counters when the day or month rolls over.
func (b *BudgetTracker) resetIfNeeded() {
	now := time.Now().UTC()
	today := truncateToDay(now)
	thisMonth := truncateToMonth(now)

	if today.After(b.lastDayReset) {
		b.dailyCalls = 0
		b.dailyTokens = 0
		b.lastDayReset = today
	}
	if thisMonth.After(b.lastMonthReset) {
		b.monthlyCalls = 0
		b.monthlyTokens = 0
		b.lastMonthReset = thisMonth
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func truncateToMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
