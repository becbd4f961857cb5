// Package engine drives the game: it wires the subsystems together and
// applies the fixed-order monthly turn transition to the shared state.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dlozano/patrimonio/internal/bank"
	"github.com/dlozano/patrimonio/internal/career"
	"github.com/dlozano/patrimonio/internal/game"
	"github.com/dlozano/patrimonio/internal/market"
	"github.com/dlozano/patrimonio/internal/realestate"
)

const maxEvents = 1000

// Event is a notable happening in the session, stamped with game time.
type Event struct {
	Month       int    `json:"month"`
	Year        int    `json:"year"`
	Category    string `json:"category"` // "market", "bank", "career", "estate", "turn"
	Description string `json:"description"`
}

// Engine owns the session: one state, one market, one listing pool, one
// career track. All player-facing operations go through it.
type Engine struct {
	State     *game.State
	Market    *market.Market
	Portfolio market.Portfolio
	Estate    *realestate.Agency
	Career    *career.Track
	Events    []Event
}

// New wires a session from its components.
func New(st *game.State, mkt *market.Market, estate *realestate.Agency, track *career.Track) *Engine {
	return &Engine{
		State:     st,
		Market:    mkt,
		Portfolio: market.Portfolio{Market: mkt},
		Estate:    estate,
		Career:    track,
	}
}

// Record appends an event, trimming the feed at maxEvents.
func (e *Engine) Record(category, description string) {
	e.Events = append(e.Events, Event{
		Month:       e.State.Month,
		Year:        e.State.Year,
		Category:    category,
		Description: description,
	})
	if len(e.Events) > maxEvents {
		e.Events = e.Events[len(e.Events)-maxEvents:]
	}
}

// NextTurn advances the game one month. The step order is fixed — later
// steps read the results of earlier ones:
//
//  1. market prices evolve
//  2. bank collects loan payments
//  3. career tenure accrues
//  4. personal cash flow: salary + rents − expenses
//  5. calendar advances (wrapping the year)
//  6. every sixth month the listing pool regenerates
//  7. net worth is recomputed and recorded
func (e *Engine) NextTurn() {
	st := e.State

	e.Market.NextTurn()
	for _, s := range e.Market.Shocked() {
		e.Record("market", fmt.Sprintf("Movimiento brusco en %s: %.0f%%", s.Name, s.Trend*100))
	}

	sum := bank.NextTurn(st)
	for _, l := range sum.Retired {
		e.Record("bank", fmt.Sprintf("Préstamo %s amortizado por completo", l.Kind))
	}
	for _, l := range sum.Missed {
		e.Record("bank", fmt.Sprintf("Cuota de %s impagada: descubierto", game.FormatEUR(l.MonthlyPayment)))
	}

	e.Career.NextTurn()

	// Rent comes from owned properties, not the listing pool.
	rent := st.MonthlyRent()
	st.Cash += st.Salary + rent - st.Expenses
	st.Stats.RentCollected += rent

	st.AdvanceMonth()

	if st.Month%6 == 0 {
		e.Estate.GenerateListings()
		e.Record("estate", "Nuevas propiedades en el mercado")
	}

	st.UpdateNetWorth()
	st.RecordNetWorth()
	st.Stats.MonthsPlayed++

	slog.Info("turn complete",
		"month", st.Month,
		"year", st.Year,
		"cash", fmt.Sprintf("%.2f", st.Cash),
		"net_worth", fmt.Sprintf("%.2f", st.NetWorth),
		"loans", len(st.Loans),
		"holdings", len(st.Holdings),
		"properties", len(st.Properties),
		"interest_paid", fmt.Sprintf("%.2f", sum.Interest),
	)
}

// Buy purchases shares at market price.
func (e *Engine) Buy(symbol string, quantity int) game.Result {
	return e.Portfolio.Buy(e.State, symbol, quantity)
}

// Sell liquidates shares at market price.
func (e *Engine) Sell(symbol string, quantity int) game.Result {
	return e.Portfolio.Sell(e.State, symbol, quantity)
}

// TakeLoan requests a personal loan.
func (e *Engine) TakeLoan(amount float64, years int) game.Result {
	res := bank.TakeLoan(e.State, amount, years)
	if res.Success {
		e.Record("bank", res.Message)
	}
	return res
}

// PayOffLoan settles a loan early.
func (e *Engine) PayOffLoan(id uuid.UUID) game.Result {
	res := bank.PayOff(e.State, id)
	if res.Success {
		e.Record("bank", res.Message)
	}
	return res
}

// BuyProperty purchases a listed property, mortgaged by default.
func (e *Engine) BuyProperty(id uuid.UUID, useMortgage bool) game.Result {
	res := e.Estate.Buy(e.State, id, useMortgage)
	if res.Success {
		e.Record("estate", res.Message)
	}
	return res
}

// Promote advances the career track when eligible.
func (e *Engine) Promote() game.Result {
	res := e.Career.Promote(e.State)
	if res.Success {
		e.Record("career", res.Message)
	}
	return res
}
