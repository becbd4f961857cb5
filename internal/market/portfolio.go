package market

import (
	"fmt"

	"github.com/dlozano/patrimonio/internal/game"
)

// CommissionRate is charged on both sides of every trade. Commission is not
// part of the cost basis.
const CommissionRate = 0.005

// Portfolio executes trades against a market, mutating the game state it is
// handed. It holds no state of its own.
type Portfolio struct {
	Market *Market
}

// Buy purchases quantity shares at the current market price plus commission.
// Either the whole trade applies or the state is untouched.
func (p Portfolio) Buy(st *game.State, symbol string, quantity int) game.Result {
	if quantity <= 0 {
		return game.Declined(game.ErrInvalidAmount, "La cantidad debe ser mayor a 0")
	}
	stock, err := p.Market.Get(symbol)
	if err != nil {
		return game.Declined(err, "Acción no encontrada")
	}

	cost := stock.Price * float64(quantity)
	commission := cost * CommissionRate
	total := cost + commission

	if st.Cash < total {
		return game.Declined(game.ErrInsufficientFunds, "Dinero insuficiente")
	}

	st.Cash -= total
	st.Stats.CommissionsPaid += commission

	if existing := st.Holding(symbol); existing != nil {
		// Weighted-average cost basis over the combined position.
		totalValue := float64(existing.Quantity)*existing.AvgPrice + cost
		existing.Quantity += quantity
		existing.AvgPrice = totalValue / float64(existing.Quantity)
	} else {
		st.Holdings = append(st.Holdings, game.Holding{
			Symbol:   symbol,
			Name:     stock.Name,
			Quantity: quantity,
			AvgPrice: stock.Price,
		})
	}

	return game.OK(fmt.Sprintf("Has comprado %d acciones de %s", quantity, stock.Name))
}

// Sell liquidates quantity shares at the current market price minus
// commission. The holding is removed entirely when it reaches zero.
func (p Portfolio) Sell(st *game.State, symbol string, quantity int) game.Result {
	if quantity <= 0 {
		return game.Declined(game.ErrInvalidAmount, "La cantidad debe ser mayor a 0")
	}
	existing := st.Holding(symbol)
	if existing == nil || existing.Quantity < quantity {
		return game.Declined(game.ErrInsufficientHoldings, "No tienes suficientes acciones")
	}
	stock, err := p.Market.Get(symbol)
	if err != nil {
		return game.Declined(err, "Acción no encontrada")
	}

	value := stock.Price * float64(quantity)
	commission := value * CommissionRate

	st.Cash += value - commission
	st.Stats.CommissionsPaid += commission
	existing.Quantity -= quantity

	if existing.Quantity == 0 {
		st.RemoveHolding(symbol)
	}

	return game.OK(fmt.Sprintf("Has vendido %d acciones de %s", quantity, stock.Name))
}
