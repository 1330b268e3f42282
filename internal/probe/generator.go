package probe

import (
	"math"
	"math/rand/v2"

	"github.com/okian/churnboard/internal/domain/employee"
)

const invalidTier = "executive"

// Case is one generated input and whether the server should accept it.
type Case struct {
	Input employee.Input
	Valid bool
}

// Generate returns n inputs spread over the dashboard's form ranges.
func Generate(cfg *Config) []Case {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	tiers := employee.Tiers
	out := make([]Case, cfg.Requests)
	for i := range out {
		in := employee.Input{
			SatisfactionLevel:   round2(rng.Float64()),
			LastEvaluation:      round2(rng.Float64()),
			NumberProject:       employee.MinProjects + rng.IntN(employee.MaxProjects-employee.MinProjects+1),
			AverageMonthlyHours: employee.MinHours + rng.IntN(employee.MaxHours-employee.MinHours+1),
			TimeSpendCompany:    employee.MinYears + rng.IntN(employee.MaxYears-employee.MinYears+1),
			WorkAccident:        rng.IntN(2),
			PromotionLast5Years: rng.IntN(2),
			Salary:              tiers[rng.IntN(len(tiers))].String(),
		}
		c := Case{Input: in, Valid: true}
		if cfg.InvalidEvery > 0 && (i+1)%cfg.InvalidEvery == 0 {
			c.Input.Salary = invalidTier
			c.Valid = false
		}
		out[i] = c
	}
	return out
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
