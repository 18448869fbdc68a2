package ledger_test

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/envelope-zero/ledger/pkg/ledger"
	"github.com/envelope-zero/ledger/pkg/models"
	"github.com/envelope-zero/ledger/test"
)

func (suite *TestSuiteStandard) TestScenario() {
	ctx := context.Background()
	week := 7 * 24 * time.Hour

	suite.assertBalances(1, 0, 0)

	suite.Require().Nil(suite.engine.Deposit(ctx, 1, 500, "paycheck"))
	suite.assertBalances(1, 500, 500)

	suite.Require().Nil(suite.engine.Deposit(ctx, 1, -200, "groceries"))
	suite.assertBalances(1, 300, 300)

	suite.Require().Nil(suite.engine.DepositAt(ctx, 1, 1000, "bonus", now.Add(week)))
	suite.assertBalances(1, 300, 1300)

	_, err := suite.engine.FullReplayAt(ctx, now)
	suite.Require().Nil(err)
	suite.assertBalances(1, 300, 1300, "Replay as of now must not change anything")

	_, err = suite.engine.FullReplayAt(ctx, now.Add(week).Add(time.Millisecond))
	suite.Require().Nil(err)
	suite.assertBalances(1, 1300, 1300)
}

func (suite *TestSuiteStandard) TestReplayCutoffInclusive() {
	ctx := context.Background()
	effective := now.Add(time.Hour)

	suite.Require().Nil(suite.engine.DepositAt(ctx, 2, 700, "rent refund", effective))
	suite.assertBalances(2, 0, 700)

	_, err := suite.engine.FullReplayAt(ctx, effective.Add(-time.Millisecond))
	suite.Require().Nil(err)
	suite.assertBalances(2, 0, 700)

	_, err = suite.engine.FullReplayAt(ctx, effective)
	suite.Require().Nil(err)
	suite.assertBalances(2, 700, 700, "Entries effective exactly at the cutoff are current")
}

func (suite *TestSuiteStandard) TestDepositEffectiveNow() {
	suite.Require().Nil(suite.engine.DepositAt(context.Background(), 1, 250, "now", now))
	suite.assertBalances(1, 250, 250)
}

func (suite *TestSuiteStandard) TestDepositInThePast() {
	suite.Require().Nil(suite.engine.DepositAt(context.Background(), 1, 250, "last year", now.AddDate(-1, 0, 0)))
	suite.assertBalances(1, 250, 250)
}

func (suite *TestSuiteStandard) TestDepositLogEntry() {
	effective := now.Add(48 * time.Hour)
	suite.Require().Nil(suite.engine.DepositAt(context.Background(), 3, -4200, "  Car repair\n", effective))

	var entry models.LogEntry
	suite.Require().Nil(suite.db.First(&entry).Error)
	suite.Assert().Equal(uint(3), entry.EnvelopeID)
	suite.Assert().Equal(int64(-4200), entry.AmountCents)
	suite.Assert().Equal("Car repair", entry.Description)
	suite.Assert().Equal(effective.UnixMilli(), entry.EffectiveTime)
	suite.Assert().True(effective.Equal(entry.Effective()))
}

func (suite *TestSuiteStandard) TestDepositZero() {
	ctx := context.Background()
	suite.Require().Nil(suite.engine.Deposit(ctx, 1, 500, "paycheck"))
	length := suite.logLength()

	suite.Require().Nil(suite.engine.Deposit(ctx, 1, 0, "nothing"))
	suite.Require().Nil(suite.engine.DepositAt(ctx, 1, 0, "nothing later", now.Add(time.Hour)))

	suite.Assert().Equal(length, suite.logLength(), "Zero deposits must not be logged")
	suite.assertBalances(1, 500, 500)
}

func (suite *TestSuiteStandard) TestDepositNotFound() {
	ctx := context.Background()
	suite.Require().Nil(suite.engine.Deposit(ctx, 1, 500, "paycheck"))
	suite.events = nil

	err := suite.engine.Deposit(ctx, 4711, 500, "nowhere")
	suite.Assert().ErrorIs(err, ledger.ErrEnvelopeNotFound)
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
	suite.Assert().NotErrorIs(err, ledger.ErrStore)

	suite.Assert().Equal(int64(1), suite.logLength(), "The log must be untouched")
	suite.assertBalances(1, 500, 500)
	suite.assertBalances(2, 0, 0)
	suite.Assert().Empty(suite.events, "Failed operations must not notify")
}

func (suite *TestSuiteStandard) TestDepositRollback() {
	ctx := context.Background()
	suite.Require().Nil(suite.engine.Deposit(ctx, 1, 500, "paycheck"))
	suite.events = nil

	// Appending to the log fails after the balances have been written
	suite.Require().Nil(suite.db.Migrator().DropTable(&models.LogEntry{}))

	err := suite.engine.Deposit(ctx, 1, 300, "bonus")
	suite.Assert().ErrorIs(err, ledger.ErrStore)
	suite.assertBalances(1, 500, 500, "Balances must be rolled back")
	suite.Assert().Empty(suite.events)
}

func (suite *TestSuiteStandard) TestDepositClosedDatabase() {
	suite.Require().Nil(suite.engine.Deposit(context.Background(), 1, 500, "paycheck"))
	suite.events = nil

	test.Disconnect(suite.T(), suite.db)

	err := suite.engine.Deposit(context.Background(), 1, 300, "bonus")
	suite.Assert().ErrorIs(err, ledger.ErrStore)
	suite.Assert().Empty(suite.events)

	_, err = suite.engine.FullReplay(context.Background())
	suite.Assert().ErrorIs(err, ledger.ErrStore)
	suite.Assert().Empty(suite.events)
}

func (suite *TestSuiteStandard) TestReplayIdempotent() {
	ctx := context.Background()
	suite.Require().Nil(suite.engine.Deposit(ctx, 1, 500, "paycheck"))
	suite.Require().Nil(suite.engine.DepositAt(ctx, 2, 900, "later", now.Add(time.Hour)))
	suite.Require().Nil(suite.engine.Deposit(ctx, 3, -100, "fee"))

	first, err := suite.engine.FullReplay(ctx)
	suite.Require().Nil(err)
	envelopesFirst, err := suite.store.Envelopes(ctx)
	suite.Require().Nil(err)

	second, err := suite.engine.FullReplay(ctx)
	suite.Require().Nil(err)
	envelopesSecond, err := suite.store.Envelopes(ctx)
	suite.Require().Nil(err)

	suite.Assert().Equal(first, second)
	suite.Require().Len(envelopesSecond, len(envelopesFirst))
	for i := range envelopesFirst {
		suite.Assert().Equal(envelopesFirst[i].CurrentCents, envelopesSecond[i].CurrentCents)
		suite.Assert().Equal(envelopesFirst[i].ProjectedCents, envelopesSecond[i].ProjectedCents)
	}
}

func (suite *TestSuiteStandard) TestReplayResult() {
	ctx := context.Background()
	suite.Require().Nil(suite.engine.Deposit(ctx, 1, 500, "paycheck"))
	suite.Require().Nil(suite.engine.Deposit(ctx, 1, 500, "paycheck"))
	suite.Require().Nil(suite.engine.Deposit(ctx, 3, 10, "interest"))

	result, err := suite.engine.FullReplay(ctx)
	suite.Require().Nil(err)
	suite.Assert().Equal(ledger.ReplayResult{Entries: 3, Envelopes: 2, Skipped: 0}, result)
}

// TestReplayEnvelopeWithoutEntries verifies that envelopes without any log
// entries get a current balance of zero and keep their projected balance.
func (suite *TestSuiteStandard) TestReplayEnvelopeWithoutEntries() {
	ctx := context.Background()
	suite.Require().Nil(suite.db.Model(&models.Envelope{}).Where("id = ?", 2).UpdateColumns(map[string]any{
		"current_cents":   40,
		"projected_cents": 80,
	}).Error)

	_, err := suite.engine.FullReplay(ctx)
	suite.Require().Nil(err)
	suite.assertBalances(2, 0, 80)
}

func (suite *TestSuiteStandard) TestReplayRepairsDrift() {
	ctx := context.Background()
	suite.Require().Nil(suite.engine.Deposit(ctx, 1, 500, "paycheck"))
	suite.Require().Nil(suite.engine.DepositAt(ctx, 1, 200, "later", now.Add(time.Hour)))

	suite.Require().Nil(suite.db.Model(&models.Envelope{}).Where("id = ?", 1).UpdateColumns(map[string]any{
		"current_cents":   -1,
		"projected_cents": 99999,
	}).Error)

	_, err := suite.engine.FullReplay(ctx)
	suite.Require().Nil(err)
	suite.assertBalances(1, 500, 700)
}

func (suite *TestSuiteStandard) TestReplaySkipsDeletedEnvelopes() {
	ctx := context.Background()
	suite.Require().Nil(suite.engine.Deposit(ctx, 1, 500, "paycheck"))
	suite.Require().Nil(suite.engine.Deposit(ctx, 3, 800, "savings"))

	suite.Require().Nil(suite.db.Delete(&models.Envelope{}, 3).Error)

	result, err := suite.engine.FullReplay(ctx)
	suite.Require().Nil(err)
	suite.Assert().Equal(ledger.ReplayResult{Entries: 2, Envelopes: 1, Skipped: 1}, result)
	suite.assertBalances(1, 500, 500)
	suite.Assert().Equal(int64(2), suite.logLength(), "The log keeps entries of deleted envelopes")
}

// TestReplayEquivalence verifies that a full replay as of T yields the same
// balances as applying every entry incrementally at T.
func (suite *TestSuiteStandard) TestReplayEquivalence() {
	ctx := context.Background()

	entries := []struct {
		envelope uint
		amount   int64
		offset   time.Duration
	}{
		{1, 10000, -72 * time.Hour},
		{2, -2500, -time.Minute},
		{1, 333, 0},
		{3, 4200, time.Millisecond},
		{2, 9000, 24 * time.Hour},
		{1, -1200, 30 * 24 * time.Hour},
		{3, -4200, -time.Millisecond},
	}

	cutoffs := []time.Time{
		now.Add(-100 * time.Hour),
		now.Add(-time.Millisecond),
		now,
		now.Add(time.Millisecond),
		now.Add(24 * time.Hour),
		now.AddDate(1, 0, 0),
	}

	for _, cutoff := range cutoffs {
		suite.SetupTest()

		// Incremental path with the clock set to the cutoff
		incremental := ledger.NewEngine(suite.store, ledger.WithClock(func() time.Time { return cutoff }))
		for _, e := range entries {
			suite.Require().Nil(incremental.DepositAt(ctx, e.envelope, e.amount, "", now.Add(e.offset)))
		}

		expected, err := suite.store.Envelopes(ctx)
		suite.Require().Nil(err)

		_, err = suite.engine.FullReplayAt(ctx, cutoff)
		suite.Require().Nil(err)

		for _, envelope := range expected {
			suite.assertBalances(envelope.ID, envelope.CurrentCents, envelope.ProjectedCents, "Cutoff %s, envelope %d", cutoff, envelope.ID)
		}
	}
}

func (suite *TestSuiteStandard) TestNotifications() {
	ctx := context.Background()

	suite.Require().Nil(suite.engine.Deposit(ctx, 1, 500, "paycheck"))
	suite.Require().Nil(suite.engine.DepositAt(ctx, 1, 500, "later", now.Add(time.Hour)))
	_, err := suite.engine.FullReplay(ctx)
	suite.Require().Nil(err)

	suite.Assert().Equal([]string{ledger.OperationDeposit, ledger.OperationDeposit, ledger.OperationReplay}, suite.operations())
	for _, e := range suite.events {
		suite.Assert().Equal("ledger://test", e.URI)
	}
}

func (suite *TestSuiteStandard) TestNotificationFailureDoesNotFail() {
	store := ledger.NewStore(suite.db, ledger.StoreOptions{
		Notifier: failingNotifier{},
	})
	engine := ledger.NewEngine(store, ledger.WithClock(func() time.Time { return now }))

	suite.Require().Nil(engine.Deposit(context.Background(), 1, 500, "paycheck"))
	suite.assertBalances(1, 500, 500)
}

func (suite *TestSuiteStandard) TestEngineStore() {
	suite.Assert().Same(suite.store, suite.engine.Store())
}

func (suite *TestSuiteStandard) TestDepositBalanceOutOfRange() {
	ctx := context.Background()

	suite.Require().Nil(suite.engine.Deposit(ctx, 1, math.MaxInt64, "jackpot"))
	err := suite.engine.Deposit(ctx, 1, 1, "one more")
	suite.Assert().ErrorIs(err, ledger.ErrBalanceOutOfRange)
	suite.Assert().NotErrorIs(err, ledger.ErrStore)
	suite.assertBalances(1, math.MaxInt64, math.MaxInt64, "Balances must not wrap around")

	suite.Require().Nil(suite.engine.Deposit(ctx, 2, math.MinInt64, "debt"))
	err = suite.engine.Deposit(ctx, 2, -1, "more debt")
	suite.Assert().ErrorIs(err, ledger.ErrBalanceOutOfRange)
	suite.assertBalances(2, math.MinInt64, math.MinInt64)

	suite.Require().Nil(suite.engine.DepositAt(ctx, 3, math.MaxInt64, "future jackpot", now.Add(time.Hour)))
	err = suite.engine.DepositAt(ctx, 3, 1, "future one more", now.Add(time.Hour))
	suite.Assert().ErrorIs(err, ledger.ErrBalanceOutOfRange)
	suite.assertBalances(3, 0, math.MaxInt64)

	suite.Assert().Equal(int64(3), suite.logLength(), "Rejected deposits must not be logged")
}

func (suite *TestSuiteStandard) TestReplayBalanceOutOfRange() {
	ctx := context.Background()
	suite.Require().Nil(suite.engine.Deposit(ctx, 1, 500, "paycheck"))

	// Both entries are valid on their own, only their sum overflows
	for range 2 {
		suite.Require().Nil(suite.db.Create(&models.LogEntry{EnvelopeID: 1, AmountCents: math.MaxInt64, EffectiveTime: now.UnixMilli()}).Error)
	}

	suite.events = nil
	_, err := suite.engine.FullReplay(ctx)
	suite.Assert().ErrorIs(err, ledger.ErrBalanceOutOfRange)
	suite.assertBalances(1, 500, 500, "A failed replay must roll back")
	suite.Assert().Empty(suite.operations(), "Failed operations must not notify")
}

func (suite *TestSuiteStandard) TestConcurrentDeposits() {
	ctx := context.Background()
	const n = 50

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- suite.engine.Deposit(ctx, 1, 1, "concurrent")
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		suite.Assert().Nil(err)
	}

	suite.assertBalances(1, n, n, "No deposit may get lost")
	suite.Assert().Equal(int64(n), suite.logLength())
}
