package game

import (
	"github.com/google/uuid"
)

// LoanKind distinguishes personal loans from mortgages. Early payoff and the
// borrowing cap only apply to some kinds, so the tag is a real type rather
// than a free-form string.
type LoanKind uint8

const (
	LoanPersonal LoanKind = iota
	LoanMortgage
)

func (k LoanKind) String() string {
	switch k {
	case LoanPersonal:
		return "Personal"
	case LoanMortgage:
		return "Hipotecario"
	}
	return "Desconocido"
}

// Holding is one stock position. At most one holding per symbol; removed
// entirely when quantity reaches zero. AvgPrice is the quantity-weighted cost
// basis, excluding commissions.
type Holding struct {
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	AvgPrice float64 `json:"avg_price"`
}

// Property is an owned real-estate asset. The mortgage that financed it, if
// any, lives in Loans — the property record itself carries no debt.
type Property struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	MonthlyRent float64   `json:"monthly_rent"`
}

// Loan is an amortizing debt collected monthly by the bank.
type Loan struct {
	ID               uuid.UUID `json:"id"`
	Kind             LoanKind  `json:"kind"`
	Principal        float64   `json:"principal"`
	TermMonths       int       `json:"term_months"`
	RemainingMonths  int       `json:"remaining_months"`
	MonthlyPayment   float64   `json:"monthly_payment"`
	AnnualRate       float64   `json:"annual_rate"`
	RemainingBalance float64   `json:"remaining_balance"`
}

// HistoryPoint is one net-worth sample, taken at the end of each turn.
type HistoryPoint struct {
	Month    int     `json:"month"`
	Year     int     `json:"year"`
	NetWorth float64 `json:"net_worth"`
}

// Stats aggregates lifetime counters for the session.
type Stats struct {
	MonthsPlayed    int     `json:"months_played"`
	InterestPaid    float64 `json:"interest_paid"`
	CommissionsPaid float64 `json:"commissions_paid"`
	RentCollected   float64 `json:"rent_collected"`
	PeakNetWorth    float64 `json:"peak_net_worth"`
}

// State is the single mutable game state. There is exactly one instance per
// session, owned by the turn engine and passed explicitly into every
// subsystem operation — never imported as ambient state.
type State struct {
	Month int `json:"month"` // 1–12
	Year  int `json:"year"`  // ≥1

	Cash     float64 `json:"cash"` // may go negative on missed payments
	NetWorth float64 `json:"net_worth"`

	Salary   float64 `json:"salary"`
	Expenses float64 `json:"expenses"`
	JobTitle string  `json:"job_title"`

	Holdings   []Holding  `json:"holdings"`
	Properties []Property `json:"properties"`
	Loans      []Loan     `json:"loans"`

	History []HistoryPoint `json:"history"`
	Stats   Stats          `json:"stats"`
}

// Starting conditions for a fresh session.
const (
	StartingCash     = 1000.0
	StartingExpenses = 800.0
)

// NewState creates a fresh game state at month 1, year 1. Salary and job
// title are set by the career track the session starts on.
func NewState(salary float64, jobTitle string) *State {
	s := &State{
		Month:    1,
		Year:     1,
		Cash:     StartingCash,
		Salary:   salary,
		Expenses: StartingExpenses,
		JobTitle: jobTitle,
	}
	s.UpdateNetWorth()
	return s
}

// Holding returns the position for a symbol, or nil.
func (s *State) Holding(symbol string) *Holding {
	for i := range s.Holdings {
		if s.Holdings[i].Symbol == symbol {
			return &s.Holdings[i]
		}
	}
	return nil
}

// RemoveHolding drops the position for a symbol, if present.
func (s *State) RemoveHolding(symbol string) {
	for i := range s.Holdings {
		if s.Holdings[i].Symbol == symbol {
			s.Holdings = append(s.Holdings[:i], s.Holdings[i+1:]...)
			return
		}
	}
}

// LoanIndex returns the index of the loan with the given id, or -1.
func (s *State) LoanIndex(id uuid.UUID) int {
	for i := range s.Loans {
		if s.Loans[i].ID == id {
			return i
		}
	}
	return -1
}

// RemoveLoan drops the loan at index i.
func (s *State) RemoveLoan(i int) {
	s.Loans = append(s.Loans[:i], s.Loans[i+1:]...)
}

// MonthlyRent sums rent across all owned properties.
func (s *State) MonthlyRent() float64 {
	total := 0.0
	for _, p := range s.Properties {
		total += p.MonthlyRent
	}
	return total
}

// UpdateNetWorth recomputes net worth from first principles:
// cash, plus stock positions at cost basis, plus property prices, minus
// outstanding loan balances. Positions are valued at average cost rather
// than live market price; that matches the game's accounting.
func (s *State) UpdateNetWorth() float64 {
	assets := s.Cash
	for _, h := range s.Holdings {
		assets += float64(h.Quantity) * h.AvgPrice
	}
	for _, p := range s.Properties {
		assets += p.Price
	}

	liabilities := 0.0
	for _, l := range s.Loans {
		liabilities += l.RemainingBalance
	}

	s.NetWorth = assets - liabilities
	if s.NetWorth > s.Stats.PeakNetWorth {
		s.Stats.PeakNetWorth = s.NetWorth
	}
	return s.NetWorth
}

// AdvanceMonth moves the calendar one month forward, wrapping the year.
func (s *State) AdvanceMonth() {
	s.Month++
	if s.Month > 12 {
		s.Month = 1
		s.Year++
	}
}

// RecordNetWorth appends the current net worth to the history series.
func (s *State) RecordNetWorth() {
	s.History = append(s.History, HistoryPoint{
		Month:    s.Month,
		Year:     s.Year,
		NetWorth: s.NetWorth,
	})
}
