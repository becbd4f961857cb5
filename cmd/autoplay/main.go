// Command autoplay runs a headless session with a simple policy for the
// given number of months and prints a summary. Useful for balance checks:
// the same seed always produces the same session.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/dlozano/patrimonio/internal/career"
	"github.com/dlozano/patrimonio/internal/engine"
	"github.com/dlozano/patrimonio/internal/entropy"
	"github.com/dlozano/patrimonio/internal/game"
	"github.com/dlozano/patrimonio/internal/market"
	"github.com/dlozano/patrimonio/internal/realestate"
)

func main() {
	months := flag.Int("months", 120, "months to simulate")
	seed := flag.Int64("seed", 42, "random seed")
	path := flag.String("career", "comercio", "career path")
	verbose := flag.Bool("v", false, "log every turn")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	track, err := career.New(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rng := entropy.NewSeeded(*seed)
	first := track.FirstRank()
	st := game.NewState(first.Salary, first.Title)
	eng := engine.New(st, market.New(rng), realestate.New(rng), track)

	for i := 0; i < *months; i++ {
		// Take any promotion on offer.
		if track.AvailablePromotion(st) != nil {
			eng.Promote()
		}

		// Buy the cheapest listing when the down payment leaves headroom.
		cheapest := -1
		for j, l := range eng.Estate.Listings {
			if cheapest == -1 || l.Price < eng.Estate.Listings[cheapest].Price {
				cheapest = j
			}
		}
		if cheapest != -1 {
			l := eng.Estate.Listings[cheapest]
			if st.Cash >= l.Price*l.DownPaymentPct*1.5 {
				eng.BuyProperty(l.ID, true)
			}
		}

		// Park spare cash above a buffer in the first instrument.
		const buffer = 2000
		if spare := st.Cash - buffer; spare > 0 {
			price := eng.Market.Stocks[0].Price
			if qty := int(spare / (price * 1.01)); qty > 0 {
				eng.Buy(eng.Market.Stocks[0].Symbol, qty)
			}
		}

		eng.NextTurn()
	}

	fmt.Printf("after %d months (year %d, month %d):\n", *months, st.Year, st.Month)
	fmt.Printf("  job           %s (%s/mes)\n", st.JobTitle, humanize.Commaf(st.Salary))
	fmt.Printf("  cash          %s\n", game.FormatEUR(st.Cash))
	fmt.Printf("  net worth     %s (peak %s)\n",
		game.FormatEUR(st.NetWorth), game.FormatEUR(st.Stats.PeakNetWorth))
	fmt.Printf("  holdings      %d positions\n", len(st.Holdings))
	fmt.Printf("  properties    %d (rent %s/mes)\n", len(st.Properties), game.FormatEUR(st.MonthlyRent()))
	fmt.Printf("  loans         %d outstanding\n", len(st.Loans))
	fmt.Printf("  interest paid %s, commissions %s, rent collected %s\n",
		game.FormatEUR(st.Stats.InterestPaid),
		game.FormatEUR(st.Stats.CommissionsPaid),
		game.FormatEUR(st.Stats.RentCollected))
}
