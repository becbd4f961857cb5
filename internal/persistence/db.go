// Package persistence provides SQLite-based session snapshots. The in-memory
// state stays authoritative; snapshots are written on demand and on shutdown,
// and read once at boot.
package persistence

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/dlozano/patrimonio/internal/engine"
	"github.com/dlozano/patrimonio/internal/game"
	"github.com/dlozano/patrimonio/internal/market"
	"github.com/dlozano/patrimonio/internal/realestate"
)

// DB wraps a SQLite connection for session snapshots.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		month INTEGER NOT NULL,
		year INTEGER NOT NULL,
		cash REAL NOT NULL,
		net_worth REAL NOT NULL,
		salary REAL NOT NULL,
		expenses REAL NOT NULL,
		job_title TEXT NOT NULL,
		career_path TEXT NOT NULL,
		months_in_job INTEGER NOT NULL,
		months_played INTEGER NOT NULL,
		interest_paid REAL NOT NULL,
		commissions_paid REAL NOT NULL,
		rent_collected REAL NOT NULL,
		peak_net_worth REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS holdings (
		symbol TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		avg_price REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS properties (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		price REAL NOT NULL,
		monthly_rent REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS loans (
		id TEXT PRIMARY KEY,
		kind INTEGER NOT NULL,
		principal REAL NOT NULL,
		term_months INTEGER NOT NULL,
		remaining_months INTEGER NOT NULL,
		monthly_payment REAL NOT NULL,
		annual_rate REAL NOT NULL,
		remaining_balance REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS stocks (
		symbol TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		price REAL NOT NULL,
		trend REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS listings (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		price REAL NOT NULL,
		monthly_rent REAL NOT NULL,
		down_payment_pct REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS history (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		month INTEGER NOT NULL,
		year INTEGER NOT NULL,
		net_worth REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		month INTEGER NOT NULL,
		year INTEGER NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// HasSnapshot reports whether a saved session exists.
func (db *DB) HasSnapshot() bool {
	var n int
	if err := db.conn.Get(&n, "SELECT COUNT(*) FROM state"); err != nil {
		return false
	}
	return n > 0
}

// Save writes the full session (full replace, one transaction).
func (db *DB) Save(e *engine.Engine) error {
	st := e.State

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"state", "holdings", "properties", "loans", "stocks", "listings", "history", "events"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	_, err = tx.Exec(`INSERT INTO state
		(id, month, year, cash, net_worth, salary, expenses, job_title,
		 career_path, months_in_job, months_played, interest_paid,
		 commissions_paid, rent_collected, peak_net_worth)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.Month, st.Year, st.Cash, st.NetWorth, st.Salary, st.Expenses,
		st.JobTitle, e.Career.Path, e.Career.MonthsInJob,
		st.Stats.MonthsPlayed, st.Stats.InterestPaid,
		st.Stats.CommissionsPaid, st.Stats.RentCollected, st.Stats.PeakNetWorth,
	)
	if err != nil {
		return fmt.Errorf("insert state: %w", err)
	}

	for _, h := range st.Holdings {
		if _, err := tx.Exec(
			"INSERT INTO holdings (symbol, name, quantity, avg_price) VALUES (?, ?, ?, ?)",
			h.Symbol, h.Name, h.Quantity, h.AvgPrice,
		); err != nil {
			return fmt.Errorf("insert holding %s: %w", h.Symbol, err)
		}
	}

	for _, p := range st.Properties {
		if _, err := tx.Exec(
			"INSERT INTO properties (id, name, price, monthly_rent) VALUES (?, ?, ?, ?)",
			p.ID.String(), p.Name, p.Price, p.MonthlyRent,
		); err != nil {
			return fmt.Errorf("insert property %s: %w", p.ID, err)
		}
	}

	for _, l := range st.Loans {
		if _, err := tx.Exec(`INSERT INTO loans
			(id, kind, principal, term_months, remaining_months,
			 monthly_payment, annual_rate, remaining_balance)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			l.ID.String(), l.Kind, l.Principal, l.TermMonths, l.RemainingMonths,
			l.MonthlyPayment, l.AnnualRate, l.RemainingBalance,
		); err != nil {
			return fmt.Errorf("insert loan %s: %w", l.ID, err)
		}
	}

	for _, s := range e.Market.Stocks {
		if _, err := tx.Exec(
			"INSERT INTO stocks (symbol, name, price, trend) VALUES (?, ?, ?, ?)",
			s.Symbol, s.Name, s.Price, s.Trend,
		); err != nil {
			return fmt.Errorf("insert stock %s: %w", s.Symbol, err)
		}
	}

	for _, l := range e.Estate.Listings {
		if _, err := tx.Exec(`INSERT INTO listings
			(id, name, price, monthly_rent, down_payment_pct)
			VALUES (?, ?, ?, ?, ?)`,
			l.ID.String(), l.Name, l.Price, l.MonthlyRent, l.DownPaymentPct,
		); err != nil {
			return fmt.Errorf("insert listing %s: %w", l.ID, err)
		}
	}

	for _, h := range st.History {
		if _, err := tx.Exec(
			"INSERT INTO history (month, year, net_worth) VALUES (?, ?, ?)",
			h.Month, h.Year, h.NetWorth,
		); err != nil {
			return fmt.Errorf("insert history: %w", err)
		}
	}

	for _, ev := range e.Events {
		if _, err := tx.Exec(
			"INSERT INTO events (month, year, category, description) VALUES (?, ?, ?, ?)",
			ev.Month, ev.Year, ev.Category, ev.Description,
		); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("session saved",
		"month", st.Month, "year", st.Year,
		"holdings", len(st.Holdings), "loans", len(st.Loans),
		"properties", len(st.Properties),
	)
	return nil
}

// Snapshot is a fully loaded session, ready for wiring.
type Snapshot struct {
	State       *game.State
	Stocks      []*market.Stock
	Listings    []realestate.Listing
	CareerPath  string
	MonthsInJob int
	Events      []engine.Event
}

// Load reads the saved session back.
func (db *DB) Load() (*Snapshot, error) {
	var row struct {
		Month           int     `db:"month"`
		Year            int     `db:"year"`
		Cash            float64 `db:"cash"`
		NetWorth        float64 `db:"net_worth"`
		Salary          float64 `db:"salary"`
		Expenses        float64 `db:"expenses"`
		JobTitle        string  `db:"job_title"`
		CareerPath      string  `db:"career_path"`
		MonthsInJob     int     `db:"months_in_job"`
		MonthsPlayed    int     `db:"months_played"`
		InterestPaid    float64 `db:"interest_paid"`
		CommissionsPaid float64 `db:"commissions_paid"`
		RentCollected   float64 `db:"rent_collected"`
		PeakNetWorth    float64 `db:"peak_net_worth"`
	}
	if err := db.conn.Get(&row, "SELECT month, year, cash, net_worth, salary, expenses, job_title, career_path, months_in_job, months_played, interest_paid, commissions_paid, rent_collected, peak_net_worth FROM state WHERE id = 1"); err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	st := &game.State{
		Month:    row.Month,
		Year:     row.Year,
		Cash:     row.Cash,
		NetWorth: row.NetWorth,
		Salary:   row.Salary,
		Expenses: row.Expenses,
		JobTitle: row.JobTitle,
		Stats: game.Stats{
			MonthsPlayed:    row.MonthsPlayed,
			InterestPaid:    row.InterestPaid,
			CommissionsPaid: row.CommissionsPaid,
			RentCollected:   row.RentCollected,
			PeakNetWorth:    row.PeakNetWorth,
		},
	}

	if err := db.conn.Select(&st.Holdings, "SELECT symbol, name, quantity, avg_price AS avgprice FROM holdings"); err != nil {
		return nil, fmt.Errorf("load holdings: %w", err)
	}

	var propRows []struct {
		ID          string  `db:"id"`
		Name        string  `db:"name"`
		Price       float64 `db:"price"`
		MonthlyRent float64 `db:"monthly_rent"`
	}
	if err := db.conn.Select(&propRows, "SELECT id, name, price, monthly_rent FROM properties"); err != nil {
		return nil, fmt.Errorf("load properties: %w", err)
	}
	for _, r := range propRows {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, fmt.Errorf("property id %q: %w", r.ID, err)
		}
		st.Properties = append(st.Properties, game.Property{
			ID: id, Name: r.Name, Price: r.Price, MonthlyRent: r.MonthlyRent,
		})
	}

	var loanRows []struct {
		ID               string  `db:"id"`
		Kind             uint8   `db:"kind"`
		Principal        float64 `db:"principal"`
		TermMonths       int     `db:"term_months"`
		RemainingMonths  int     `db:"remaining_months"`
		MonthlyPayment   float64 `db:"monthly_payment"`
		AnnualRate       float64 `db:"annual_rate"`
		RemainingBalance float64 `db:"remaining_balance"`
	}
	if err := db.conn.Select(&loanRows, "SELECT id, kind, principal, term_months, remaining_months, monthly_payment, annual_rate, remaining_balance FROM loans"); err != nil {
		return nil, fmt.Errorf("load loans: %w", err)
	}
	for _, r := range loanRows {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, fmt.Errorf("loan id %q: %w", r.ID, err)
		}
		st.Loans = append(st.Loans, game.Loan{
			ID:               id,
			Kind:             game.LoanKind(r.Kind),
			Principal:        r.Principal,
			TermMonths:       r.TermMonths,
			RemainingMonths:  r.RemainingMonths,
			MonthlyPayment:   r.MonthlyPayment,
			AnnualRate:       r.AnnualRate,
			RemainingBalance: r.RemainingBalance,
		})
	}

	if err := db.conn.Select(&st.History, "SELECT month, year, net_worth AS networth FROM history ORDER BY seq"); err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	var stocks []*market.Stock
	if err := db.conn.Select(&stocks, "SELECT symbol, name, price, trend FROM stocks"); err != nil {
		return nil, fmt.Errorf("load stocks: %w", err)
	}

	var listingRows []struct {
		ID             string  `db:"id"`
		Name           string  `db:"name"`
		Price          float64 `db:"price"`
		MonthlyRent    float64 `db:"monthly_rent"`
		DownPaymentPct float64 `db:"down_payment_pct"`
	}
	if err := db.conn.Select(&listingRows, "SELECT id, name, price, monthly_rent, down_payment_pct FROM listings"); err != nil {
		return nil, fmt.Errorf("load listings: %w", err)
	}
	var listings []realestate.Listing
	for _, r := range listingRows {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, fmt.Errorf("listing id %q: %w", r.ID, err)
		}
		listings = append(listings, realestate.Listing{
			ID: id, Name: r.Name, Price: r.Price,
			MonthlyRent: r.MonthlyRent, DownPaymentPct: r.DownPaymentPct,
		})
	}

	var events []engine.Event
	if err := db.conn.Select(&events, "SELECT month, year, category, description FROM events ORDER BY seq"); err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	return &Snapshot{
		State:       st,
		Stocks:      stocks,
		Listings:    listings,
		CareerPath:  row.CareerPath,
		MonthsInJob: row.MonthsInJob,
		Events:      events,
	}, nil
}
