// Package career implements the job ladders: tenure accrues once per turn
// and gates promotion to the next rank of the active path.
package career

import (
	"fmt"

	"github.com/dlozano/patrimonio/internal/game"
)

// Rank is one rung of a career ladder. ReqMonths is the cumulative tenure
// required before the rank becomes reachable.
type Rank struct {
	Title     string  `json:"title"`
	Salary    float64 `json:"salary"`
	ReqMonths int     `json:"req_months"`
}

// Paths holds the available career ladders, ordered by strictly increasing
// salary and tenure requirement.
var Paths = map[string][]Rank{
	"comercio": {
		{Title: "Reponedor", Salary: 1100, ReqMonths: 0},
		{Title: "Cajero", Salary: 1300, ReqMonths: 6},
		{Title: "Encargado de Tienda", Salary: 1800, ReqMonths: 24},
		{Title: "Gerente Regional", Salary: 3500, ReqMonths: 60},
	},
	"tech": {
		{Title: "Becario IT", Salary: 800, ReqMonths: 0},
		{Title: "Junior Dev", Salary: 1800, ReqMonths: 6},
		{Title: "Senior Dev", Salary: 3200, ReqMonths: 36},
		{Title: "CTO", Salary: 6000, ReqMonths: 96},
	},
}

// Track is the player's position within one career path.
type Track struct {
	Path        string `json:"path"`
	MonthsInJob int    `json:"months_in_job"`

	ranks []Rank
}

// New creates a track on the named path.
func New(path string) (*Track, error) {
	ranks, ok := Paths[path]
	if !ok {
		return nil, fmt.Errorf("unknown career path %q", path)
	}
	return &Track{Path: path, ranks: ranks}, nil
}

// Restore rebuilds a track from persisted fields.
func Restore(path string, monthsInJob int) (*Track, error) {
	t, err := New(path)
	if err != nil {
		return nil, err
	}
	t.MonthsInJob = monthsInJob
	return t, nil
}

// FirstRank returns the entry rank of the path, used to seed a fresh state's
// salary and job title.
func (t *Track) FirstRank() Rank {
	return t.ranks[0]
}

// Ranks returns the full ladder.
func (t *Track) Ranks() []Rank {
	return t.ranks
}

// NextTurn accrues one month of tenure. The counter is cumulative for the
// whole path; promotions do not reset it.
func (t *Track) NextTurn() {
	t.MonthsInJob++
}

// AvailablePromotion returns the next rank if the player currently sits on a
// rank of the path (matched by exact salary) and has the tenure it requires.
// Returns nil when unmatched, at the top, or not yet eligible.
func (t *Track) AvailablePromotion(st *game.State) *Rank {
	current := -1
	for i := range t.ranks {
		if t.ranks[i].Salary == st.Salary {
			current = i
			break
		}
	}
	if current == -1 || current >= len(t.ranks)-1 {
		return nil
	}

	next := &t.ranks[current+1]
	if t.MonthsInJob >= next.ReqMonths {
		return next
	}
	return nil
}

// Promote moves the player to the next rank, updating salary and title.
func (t *Track) Promote(st *game.State) game.Result {
	next := t.AvailablePromotion(st)
	if next == nil {
		return game.Declined(game.ErrNotEligible, "No cumples los requisitos aún")
	}

	st.Salary = next.Salary
	st.JobTitle = next.Title
	return game.OK(fmt.Sprintf("¡Ascendido a %s! Nuevo salario: %s",
		next.Title, game.FormatEUR(next.Salary)))
}
