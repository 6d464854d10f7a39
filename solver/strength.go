package solver

// Strength ranks how hard the solver tries to honour a row. StrengthFixed rows
// are required; every weaker level is minimised as weighted error, and each
// level dominates all levels below it.
type Strength int

const (
	StrengthNone Strength = iota
	StrengthLow
	StrengthMedium
	StrengthHigh
	StrengthHighest
	StrengthEquality
	StrengthBarrier
	StrengthCentering
	StrengthFixed
)

// requiredWeight is the weight of a required row.
const requiredWeight = 1001001000.0

var strengthWeights = [...]float64{
	StrengthNone:      0,
	StrengthLow:       1,
	StrengthMedium:    10,
	StrengthHigh:      100,
	StrengthHighest:   1e3,
	StrengthEquality:  1e4,
	StrengthBarrier:   1e5,
	StrengthCentering: 1e6,
	StrengthFixed:     requiredWeight,
}

// Weight returns the objective weight used for the strength.
func (s Strength) Weight() float64 {
	if s < StrengthNone {
		return 0
	}
	if s > StrengthFixed {
		return requiredWeight
	}
	return strengthWeights[s]
}

// IsRequired reports whether rows with this strength must hold exactly.
func (s Strength) IsRequired() bool { return s >= StrengthFixed }

func (s Strength) String() string {
	switch s {
	case StrengthNone:
		return "none"
	case StrengthLow:
		return "low"
	case StrengthMedium:
		return "medium"
	case StrengthHigh:
		return "high"
	case StrengthHighest:
		return "highest"
	case StrengthEquality:
		return "equality"
	case StrengthBarrier:
		return "barrier"
	case StrengthCentering:
		return "centering"
	case StrengthFixed:
		return "fixed"
	default:
		return "unknown"
	}
}
