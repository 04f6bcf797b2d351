// Package scholarship implements the scholarship application ledger: submission,
// approval with tiered awards, record queries and aggregate statistics.
package scholarship

const (
	// MaxScore is a 4.00 GPA expressed as GPA x 100.
	MaxScore uint64 = 400
	// MinimumScore is the lowest score that can be approved.
	MinimumScore uint64 = 300
	// StroopsPerUnit is the number of base units in one currency unit.
	StroopsPerUnit uint64 = 10_000_000
)

// Tier is one step of the award schedule.
type Tier struct {
	Name     string
	MinScore uint64
	Award    uint64
}

// Tiers is ordered from the highest threshold down.
var Tiers = []Tier{
	{Name: "gold", MinScore: 380, Award: 2000 * StroopsPerUnit},
	{Name: "silver", MinScore: 350, Award: 1500 * StroopsPerUnit},
	{Name: "bronze", MinScore: MinimumScore, Award: 1000 * StroopsPerUnit},
}

// TierForScore returns the first tier whose threshold score meets.
func TierForScore(score uint64) (Tier, bool) {
	for _, t := range Tiers {
		if score >= t.MinScore {
			return t, true
		}
	}
	return Tier{}, false
}

// AwardForScore returns the award an approval at score would disburse.
func AwardForScore(score uint64) (uint64, error) {
	t, ok := TierForScore(score)
	if !ok {
		return 0, ErrBelowMinimum
	}
	return t.Award, nil
}
