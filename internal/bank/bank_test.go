package bank

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dlozano/patrimonio/internal/game"
)

func TestMonthlyPayment(t *testing.T) {
	// 5000 over 12 months at 12%: standard annuity.
	p := MonthlyPayment(5000, 12, 0.12)
	r := 0.01
	want := 5000 * r / (1 - math.Pow(1.01, -12))
	assert.InDelta(t, want, p, 1e-9)
	assert.InDelta(t, 444.24, p, 0.01)
}

func TestMaxLoanAmount(t *testing.T) {
	st := game.NewState(1200, "Reponedor") // net income 400, max monthly 160

	r := 0.01
	wantPrincipal := math.Floor(160 * (1 - math.Pow(1.01, -60)) / r)
	got := MaxLoanAmount(st)
	assert.Equal(t, wantPrincipal, got)
	assert.Less(t, got, 10000.0, "income-derived principal binds before the cap")
}

func TestMaxLoanAmountAbsoluteCap(t *testing.T) {
	st := game.NewState(30000, "CTO")
	st.UpdateNetWorth() // net worth 1000, 2x = 2000 < 10000 floor

	assert.Equal(t, 10000.0, MaxLoanAmount(st))

	st.Cash = 100000
	st.UpdateNetWorth()
	// Income allows far more, but now the binding limit is income again.
	r := 0.01
	wantPrincipal := math.Floor((30000 - 800) * 0.40 * (1 - math.Pow(1.01, -60)) / r)
	assert.Equal(t, math.Min(wantPrincipal, 200000), MaxLoanAmount(st))
}

func TestTakeLoan(t *testing.T) {
	st := game.NewState(1200, "Reponedor")

	res := TakeLoan(st, 5000, 1)

	require.True(t, res.Success, res.Message)
	assert.Equal(t, 6000.0, st.Cash)
	require.Len(t, st.Loans, 1)
	l := st.Loans[0]
	assert.Equal(t, game.LoanPersonal, l.Kind)
	assert.Equal(t, 5000.0, l.Principal)
	assert.Equal(t, 12, l.TermMonths)
	assert.Equal(t, 12, l.RemainingMonths)
	assert.Equal(t, 5000.0, l.RemainingBalance)
	assert.Equal(t, PersonalRate, l.AnnualRate)
	assert.InDelta(t, MonthlyPayment(5000, 12, PersonalRate), l.MonthlyPayment, 1e-9)
}

func TestTakeLoanDeclines(t *testing.T) {
	st := game.NewState(1200, "Reponedor")

	res := TakeLoan(st, 0, 1)
	assert.Equal(t, game.CodeInvalidAmount, res.Code)

	res = TakeLoan(st, MaxLoanAmount(st)+1, 5)
	assert.Equal(t, game.CodeCapExceeded, res.Code)

	// Declined requests leave the state untouched.
	assert.Equal(t, game.StartingCash, st.Cash)
	assert.Empty(t, st.Loans)
}

func TestNewMortgageBypassesCap(t *testing.T) {
	st := game.NewState(1200, "Reponedor")

	// 80k mortgage dwarfs the personal cap; it attaches regardless.
	l := NewMortgage(80000)
	st.Loans = append(st.Loans, l)

	assert.Equal(t, game.LoanMortgage, l.Kind)
	assert.Equal(t, MortgageTermMonths, l.TermMonths)
	assert.Equal(t, MortgageRate, l.AnnualRate)
	assert.InDelta(t, MonthlyPayment(80000, 240, 0.04), l.MonthlyPayment, 1e-9)
}

func TestPayOff(t *testing.T) {
	st := game.NewState(1200, "Reponedor")
	require.True(t, TakeLoan(st, 5000, 1).Success)
	id := st.Loans[0].ID
	st.Cash = 5000

	res := PayOff(st, id)

	require.True(t, res.Success, res.Message)
	assert.Equal(t, 0.0, st.Cash)
	assert.Empty(t, st.Loans)
}

func TestPayOffDeclines(t *testing.T) {
	st := game.NewState(1200, "Reponedor")
	require.True(t, TakeLoan(st, 5000, 1).Success)

	res := PayOff(st, uuid.New())
	assert.Equal(t, game.CodeLoanNotFound, res.Code)

	st.Cash = 100
	res = PayOff(st, st.Loans[0].ID)
	assert.Equal(t, game.CodeInsufficientFunds, res.Code)
	assert.Len(t, st.Loans, 1)
}

func TestNextTurnAmortizes(t *testing.T) {
	st := game.NewState(1200, "Reponedor")
	require.True(t, TakeLoan(st, 5000, 1).Success)
	loan := st.Loans[0]
	cash := st.Cash

	sum := NextTurn(st)

	assert.InDelta(t, loan.MonthlyPayment, sum.TotalPaid, 1e-9)
	assert.InDelta(t, cash-loan.MonthlyPayment, st.Cash, 1e-9)

	l := st.Loans[0]
	wantInterest := 5000 * PersonalRate / 12
	assert.InDelta(t, wantInterest, sum.Interest, 1e-9)
	assert.InDelta(t, 5000-(loan.MonthlyPayment-wantInterest), l.RemainingBalance, 1e-9)
	assert.Equal(t, 11, l.RemainingMonths)
	assert.InDelta(t, wantInterest, st.Stats.InterestPaid, 1e-9)
}

func TestNextTurnRetiresLoanAtEndOfTerm(t *testing.T) {
	st := game.NewState(1200, "Reponedor")
	require.True(t, TakeLoan(st, 5000, 1).Success)
	st.Cash = 100000

	var retired bool
	for i := 0; i < 12; i++ {
		sum := NextTurn(st)
		if len(sum.Retired) > 0 {
			retired = true
		}
	}

	assert.True(t, retired)
	assert.Empty(t, st.Loans)
}

func TestNextTurnWritesOffResidualDust(t *testing.T) {
	st := game.NewState(1200, "Reponedor")
	st.Loans = append(st.Loans, game.Loan{
		ID:               uuid.New(),
		Kind:             game.LoanPersonal,
		RemainingMonths:  30,
		MonthlyPayment:   50,
		AnnualRate:       PersonalRate,
		RemainingBalance: 40, // one payment drops it under 1
	})
	st.Cash = 1000

	sum := NextTurn(st)

	require.Len(t, sum.Retired, 1)
	assert.Empty(t, st.Loans)
}

func TestNextTurnMissedPayment(t *testing.T) {
	st := game.NewState(1200, "Reponedor")
	require.True(t, TakeLoan(st, 5000, 1).Success)
	loan := st.Loans[0]
	st.Cash = 100 // under the ~444 payment

	sum := NextTurn(st)

	require.Len(t, sum.Missed, 1)
	assert.InDelta(t, 100-loan.MonthlyPayment, st.Cash, 1e-9, "full debit, cash goes negative")

	l := st.Loans[0]
	assert.Equal(t, loan.RemainingBalance, l.RemainingBalance, "no amortization on a miss")
	assert.Equal(t, loan.RemainingMonths, l.RemainingMonths)
	assert.Zero(t, sum.Interest)
}

func TestNextTurnMultipleLoans(t *testing.T) {
	st := game.NewState(1200, "Reponedor")
	require.True(t, TakeLoan(st, 2000, 1).Success)
	require.True(t, TakeLoan(st, 3000, 2).Success)
	st.Cash = 10000
	total := st.Loans[0].MonthlyPayment + st.Loans[1].MonthlyPayment

	sum := NextTurn(st)

	assert.InDelta(t, total, sum.TotalPaid, 1e-9)
	assert.InDelta(t, 10000-total, st.Cash, 1e-9)
	assert.Len(t, st.Loans, 2)
}
