// Package market simulates the stock exchange: a fixed roster of instruments
// whose prices evolve once per turn, plus the portfolio operations that trade
// against them.
package market

import (
	"math"

	"github.com/dlozano/patrimonio/internal/entropy"
	"github.com/dlozano/patrimonio/internal/game"
)

// Stock is one tradable instrument. Trend holds the previous turn's
// fractional price change and feeds the next turn as momentum.
type Stock struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Trend  float64 `json:"trend"`
}

// Price evolution parameters, per turn.
const (
	volatility     = 0.10 // uniform change in [-10%, +10%]
	momentumFactor = 0.30 // carry-over of last turn's change
	shockChance    = 0.05
	shockSize      = 0.25
	priceFloor     = 0.10
)

// Market owns the instrument roster and its per-turn evolution.
type Market struct {
	Stocks []*Stock
	rng    entropy.Source
}

// New creates a market with the standard eight-instrument roster.
func New(rng entropy.Source) *Market {
	return &Market{
		rng: rng,
		Stocks: []*Stock{
			{Symbol: "ITX.MC", Name: "Inditex", Price: 35.50},
			{Symbol: "SAN.MC", Name: "Banco Santander", Price: 3.80},
			{Symbol: "TEF.MC", Name: "Telefónica", Price: 4.05},
			{Symbol: "IBE.MC", Name: "Iberdrola", Price: 11.20},
			{Symbol: "AAPL", Name: "Apple Inc.", Price: 175.00},
			{Symbol: "TSLA", Name: "Tesla", Price: 210.00},
			{Symbol: "AMZN", Name: "Amazon", Price: 145.00},
			{Symbol: "NVDA", Name: "NVIDIA", Price: 460.00},
		},
	}
}

// Get looks up an instrument by symbol.
func (m *Market) Get(symbol string) (*Stock, error) {
	for _, s := range m.Stocks {
		if s.Symbol == symbol {
			return s, nil
		}
	}
	return nil, game.ErrSymbolNotFound
}

// NextTurn advances every price by one month. Each instrument draws a uniform
// change in ±10%, adds 30% of last turn's change as momentum, and with 5%
// probability takes an extra ±25% event shock. Prices never fall below the
// floor. The total change is stored as the new trend.
func (m *Market) NextTurn() {
	for _, s := range m.Stocks {
		change := m.rng.Float64()*2*volatility - volatility
		total := change + s.Trend*momentumFactor

		if m.rng.Float64() < shockChance {
			if m.rng.Float64() < 0.5 {
				total -= shockSize
			} else {
				total += shockSize
			}
		}

		s.Price *= 1 + total
		s.Trend = total

		if s.Price < priceFloor {
			s.Price = priceFloor
		}
	}
}

// Shocked reports instruments whose last move was at least an event shock in
// magnitude, for the turn event feed.
func (m *Market) Shocked() []*Stock {
	var out []*Stock
	for _, s := range m.Stocks {
		if math.Abs(s.Trend) >= shockSize {
			out = append(out, s)
		}
	}
	return out
}
