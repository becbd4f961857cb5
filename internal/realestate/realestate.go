// Package realestate generates the rotating property listings and handles
// mortgaged purchases against the game state.
package realestate

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/dlozano/patrimonio/internal/bank"
	"github.com/dlozano/patrimonio/internal/entropy"
	"github.com/dlozano/patrimonio/internal/game"
)

// Archetype is a property class with a price band and a base rental yield.
type Archetype struct {
	Name     string
	MinPrice float64
	MaxPrice float64
	Yield    float64
}

var archetypes = []Archetype{
	{Name: "Plaza de Garaje", MinPrice: 15000, MaxPrice: 30000, Yield: 0.05},
	{Name: "Piso Pequeño", MinPrice: 80000, MaxPrice: 150000, Yield: 0.045},
	{Name: "Apartamento Turístico", MinPrice: 120000, MaxPrice: 200000, Yield: 0.06},
	{Name: "Local Comercial", MinPrice: 200000, MaxPrice: 400000, Yield: 0.055},
	{Name: "Chalet", MinPrice: 400000, MaxPrice: 800000, Yield: 0.035},
}

const (
	listingCount   = 4
	yieldJitter    = 0.01 // ±1 absolute percentage point off the base yield
	DownPaymentPct = 0.20
)

// Listing is one property on the market.
type Listing struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Price          float64   `json:"price"`
	MonthlyRent    float64   `json:"monthly_rent"`
	DownPaymentPct float64   `json:"down_payment_pct"`
}

// Agency owns the listing pool. The pool is replaced wholesale every sixth
// in-game month; purchased listings leave the pool without replacement.
type Agency struct {
	Listings []Listing
	rng      entropy.Source
}

// New creates an agency with an initial listing pool.
func New(rng entropy.Source) *Agency {
	a := &Agency{rng: rng}
	a.GenerateListings()
	return a
}

// GenerateListings replaces the pool with four freshly drawn properties.
// Each draws an archetype, a uniform price within its band, a jittered
// yield, and a monthly rent of price·yield/12 floored to whole currency.
func (a *Agency) GenerateListings() {
	listings := make([]Listing, 0, listingCount)
	for i := 0; i < listingCount; i++ {
		t := archetypes[a.rng.Intn(len(archetypes))]
		price := math.Floor(a.rng.Float64()*(t.MaxPrice-t.MinPrice) + t.MinPrice)
		actualYield := t.Yield + (a.rng.Float64()*2*yieldJitter - yieldJitter)
		rent := math.Floor(price * actualYield / 12)

		listings = append(listings, Listing{
			ID:             uuid.New(),
			Name:           t.Name,
			Price:          price,
			MonthlyRent:    rent,
			DownPaymentPct: DownPaymentPct,
		})
	}
	a.Listings = listings
}

// Buy purchases a listed property. Mortgaged purchases pay the down payment
// in cash and finance the rest with a 240-month mortgage, which bypasses the
// personal borrowing cap. The listing leaves the pool with no immediate
// replacement.
func (a *Agency) Buy(st *game.State, id uuid.UUID, useMortgage bool) game.Result {
	idx := -1
	for i := range a.Listings {
		if a.Listings[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return game.Declined(game.ErrListingNotFound, "Propiedad no encontrada")
	}

	l := a.Listings[idx]
	downPayment := l.Price
	if useMortgage {
		downPayment = l.Price * l.DownPaymentPct
	}

	if st.Cash < downPayment {
		return game.Declined(game.ErrInsufficientFunds, "Necesitas más dinero para la entrada")
	}

	if loanAmount := l.Price - downPayment; useMortgage && loanAmount > 0 {
		st.Loans = append(st.Loans, bank.NewMortgage(loanAmount))
	}

	st.Cash -= downPayment
	st.Properties = append(st.Properties, game.Property{
		ID:          l.ID,
		Name:        l.Name,
		Price:       l.Price,
		MonthlyRent: l.MonthlyRent,
	})

	a.Listings = append(a.Listings[:idx], a.Listings[idx+1:]...)

	return game.OK(fmt.Sprintf("¡Has comprado: %s!", l.Name))
}
