// Package bank handles loan issuance, the borrowing cap, early payoff, and
// the monthly collection pass that amortizes every active loan.
package bank

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/dlozano/patrimonio/internal/game"
)

// Fixed annual rates and terms.
const (
	PersonalRate       = 0.12
	MortgageRate       = 0.04
	MortgageTermMonths = 240

	// Loan sizing: the personal-loan cap is the principal whose payment over
	// a 60-month horizon stays within 40% of net monthly income.
	maxPaymentShare  = 0.40
	sizingTermMonths = 60
)

// MonthlyPayment computes the level payment of the standard annuity formula
// M = P·r / (1 − (1+r)^−n) with monthly rate r and term n.
func MonthlyPayment(principal float64, termMonths int, annualRate float64) float64 {
	r := annualRate / 12
	return principal * r / (1 - math.Pow(1+r, -float64(termMonths)))
}

// MaxLoanAmount is the largest personal loan the bank will grant against the
// current state: the income-derived principal, floored, capped at
// max(10000, 2·netWorth). Mortgages are not subject to this cap.
func MaxLoanAmount(st *game.State) float64 {
	netIncome := st.Salary - st.Expenses
	maxMonthly := netIncome * maxPaymentShare

	r := PersonalRate / 12
	maxPrincipal := maxMonthly * (1 - math.Pow(1+r, -float64(sizingTermMonths))) / r

	absoluteCap := math.Max(10000, st.NetWorth*2)

	return math.Min(math.Floor(maxPrincipal), absoluteCap)
}

// TakeLoan grants a personal loan over the given number of years. The
// principal is credited as spendable cash.
func TakeLoan(st *game.State, amount float64, years int) game.Result {
	if amount <= 0 {
		return game.Declined(game.ErrInvalidAmount, "La cantidad debe ser mayor a 0")
	}

	max := MaxLoanAmount(st)
	if amount > max {
		return game.Declined(game.ErrCapExceeded,
			fmt.Sprintf("El banco solo te presta hasta %s", game.FormatEUR(max)))
	}

	termMonths := years * 12
	payment := MonthlyPayment(amount, termMonths, PersonalRate)

	st.Loans = append(st.Loans, game.Loan{
		ID:               uuid.New(),
		Kind:             game.LoanPersonal,
		Principal:        amount,
		TermMonths:       termMonths,
		RemainingMonths:  termMonths,
		MonthlyPayment:   payment,
		AnnualRate:       PersonalRate,
		RemainingBalance: amount,
	})
	st.Cash += amount

	return game.OK(fmt.Sprintf("Préstamo de %s concedido. Cuota: %s/mes",
		game.FormatEUR(amount), game.FormatEUR(payment)))
}

// NewMortgage builds the 240-month mortgage loan record for a financed
// property purchase. The caller appends it to the state.
func NewMortgage(amount float64) game.Loan {
	return game.Loan{
		ID:               uuid.New(),
		Kind:             game.LoanMortgage,
		Principal:        amount,
		TermMonths:       MortgageTermMonths,
		RemainingMonths:  MortgageTermMonths,
		MonthlyPayment:   MonthlyPayment(amount, MortgageTermMonths, MortgageRate),
		AnnualRate:       MortgageRate,
		RemainingBalance: amount,
	}
}

// PayOff settles a loan's remaining balance in full and removes it. Works for
// any loan kind — paying a mortgage off early is allowed.
func PayOff(st *game.State, id uuid.UUID) game.Result {
	i := st.LoanIndex(id)
	if i == -1 {
		return game.Declined(game.ErrLoanNotFound, "Préstamo no encontrado")
	}

	loan := st.Loans[i]
	if st.Cash < loan.RemainingBalance {
		return game.Declined(game.ErrInsufficientFunds, "Dinero insuficiente para liquidar")
	}

	st.Cash -= loan.RemainingBalance
	st.RemoveLoan(i)
	return game.OK("Préstamo liquidado totalmente")
}

// TurnSummary reports what the monthly collection pass did, for the event
// feed and stats.
type TurnSummary struct {
	TotalPaid float64
	Interest  float64
	Retired   []game.Loan
	Missed    []game.Loan
}

// NextTurn collects the monthly payment on every loan. When cash covers the
// payment it is split into interest and principal and the balance amortizes;
// when it does not, the payment is still debited in full and the loan is not
// amortized — a missed payment accrues as overdraft, never as default.
// Fully amortized loans (and balances down to residual dust ≤ 1) are removed
// after the pass.
func NextTurn(st *game.State) TurnSummary {
	var sum TurnSummary
	var remove []int

	for i := range st.Loans {
		loan := &st.Loans[i]

		if st.Cash >= loan.MonthlyPayment {
			st.Cash -= loan.MonthlyPayment
			sum.TotalPaid += loan.MonthlyPayment

			interest := loan.RemainingBalance * loan.AnnualRate / 12
			principal := loan.MonthlyPayment - interest

			loan.RemainingBalance -= principal
			loan.RemainingMonths--
			sum.Interest += interest

			if loan.RemainingMonths <= 0 || loan.RemainingBalance <= 1 {
				remove = append(remove, i)
			}
		} else {
			st.Cash -= loan.MonthlyPayment
			sum.Missed = append(sum.Missed, *loan)
		}
	}

	st.Stats.InterestPaid += sum.Interest

	// Descending index order keeps earlier indices valid.
	for i := len(remove) - 1; i >= 0; i-- {
		idx := remove[i]
		sum.Retired = append(sum.Retired, st.Loans[idx])
		st.RemoveLoan(idx)
	}

	return sum
}
