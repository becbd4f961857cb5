package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlozano/patrimonio/internal/career"
	"github.com/dlozano/patrimonio/internal/engine"
	"github.com/dlozano/patrimonio/internal/entropy"
	"github.com/dlozano/patrimonio/internal/game"
	"github.com/dlozano/patrimonio/internal/market"
	"github.com/dlozano/patrimonio/internal/realestate"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testEngine(t *testing.T) *engine.Engine {
	t.Helper()
	rng := entropy.NewSeeded(42)
	track, err := career.New("comercio")
	require.NoError(t, err)
	first := track.FirstRank()
	st := game.NewState(first.Salary, first.Title)
	return engine.New(st, market.New(rng), realestate.New(rng), track)
}

func TestHasSnapshotOnFreshDB(t *testing.T) {
	db := openTestDB(t)
	assert.False(t, db.HasSnapshot())
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)
	e := testEngine(t)
	st := e.State

	// Play a few months with activity in every subsystem.
	require.True(t, e.Buy("ITX.MC", 5).Success)
	require.True(t, e.TakeLoan(2000, 1).Success)
	st.Cash = 200000 // covers any listing's down payment
	require.True(t, e.BuyProperty(e.Estate.Listings[0].ID, true).Success)
	for i := 0; i < 8; i++ {
		e.NextTurn()
	}
	require.True(t, e.Promote().Success)

	require.NoError(t, db.Save(e))
	require.True(t, db.HasSnapshot())

	snap, err := db.Load()
	require.NoError(t, err)

	got := snap.State
	assert.Equal(t, st.Month, got.Month)
	assert.Equal(t, st.Year, got.Year)
	assert.InDelta(t, st.Cash, got.Cash, 1e-9)
	assert.InDelta(t, st.NetWorth, got.NetWorth, 1e-9)
	assert.Equal(t, st.Salary, got.Salary)
	assert.Equal(t, st.Expenses, got.Expenses)
	assert.Equal(t, st.JobTitle, got.JobTitle)

	require.Len(t, got.Holdings, 1)
	assert.Equal(t, st.Holdings[0], got.Holdings[0])

	require.Len(t, got.Properties, 1)
	assert.Equal(t, st.Properties[0], got.Properties[0])

	require.Len(t, got.Loans, len(st.Loans))
	for i := range st.Loans {
		assert.Equal(t, st.Loans[i].ID, got.Loans[i].ID)
		assert.Equal(t, st.Loans[i].Kind, got.Loans[i].Kind)
		assert.InDelta(t, st.Loans[i].RemainingBalance, got.Loans[i].RemainingBalance, 1e-9)
		assert.Equal(t, st.Loans[i].RemainingMonths, got.Loans[i].RemainingMonths)
	}

	require.Len(t, got.History, len(st.History))
	assert.Equal(t, st.History[0], got.History[0])
	assert.Equal(t, st.History[len(st.History)-1], got.History[len(got.History)-1])

	assert.Equal(t, st.Stats.MonthsPlayed, got.Stats.MonthsPlayed)
	assert.InDelta(t, st.Stats.InterestPaid, got.Stats.InterestPaid, 1e-9)
	assert.InDelta(t, st.Stats.CommissionsPaid, got.Stats.CommissionsPaid, 1e-9)
	assert.InDelta(t, st.Stats.RentCollected, got.Stats.RentCollected, 1e-9)
	assert.InDelta(t, st.Stats.PeakNetWorth, got.Stats.PeakNetWorth, 1e-9)

	assert.Equal(t, "comercio", snap.CareerPath)
	assert.Equal(t, e.Career.MonthsInJob, snap.MonthsInJob)

	require.Len(t, snap.Stocks, 8)
	for i, s := range e.Market.Stocks {
		assert.Equal(t, s.Symbol, snap.Stocks[i].Symbol)
		assert.InDelta(t, s.Price, snap.Stocks[i].Price, 1e-9)
		assert.InDelta(t, s.Trend, snap.Stocks[i].Trend, 1e-9)
	}

	require.Len(t, snap.Listings, len(e.Estate.Listings))
	assert.Equal(t, e.Estate.Listings[0], snap.Listings[0])

	require.Len(t, snap.Events, len(e.Events))
	assert.Equal(t, e.Events[0], snap.Events[0])
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	db := openTestDB(t)
	e := testEngine(t)

	require.NoError(t, db.Save(e))
	e.NextTurn()
	e.NextTurn()
	require.NoError(t, db.Save(e))

	snap, err := db.Load()
	require.NoError(t, err)
	assert.Equal(t, 3, snap.State.Month)
	assert.Len(t, snap.State.History, 2, "old rows fully replaced")
}

func TestLoadFailsOnEmptyDB(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Load()
	assert.Error(t, err)
}

func TestRestoredSessionKeepsPlaying(t *testing.T) {
	db := openTestDB(t)
	e := testEngine(t)
	for i := 0; i < 3; i++ {
		e.NextTurn()
	}
	require.NoError(t, db.Save(e))

	snap, err := db.Load()
	require.NoError(t, err)
	track, err := career.Restore(snap.CareerPath, snap.MonthsInJob)
	require.NoError(t, err)

	rng := entropy.NewSeeded(7)
	mkt := market.New(rng)
	mkt.Stocks = snap.Stocks
	estate := realestate.New(rng)
	estate.Listings = snap.Listings

	restored := engine.New(snap.State, mkt, estate, track)
	restored.Events = snap.Events
	restored.NextTurn()

	assert.Equal(t, 5, restored.State.Month)
	assert.Equal(t, 4, restored.State.Stats.MonthsPlayed)
	assert.Equal(t, 4, restored.Career.MonthsInJob)
}
