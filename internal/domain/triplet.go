package domain

import "fmt"

// tripletUnits fixes the measurement unit per fire-behaviour variable.
var tripletUnits = map[string]string{
	"scorch_height":             "m",
	"flame_height":              "m",
	"char_height":               "cm",
	"peat_depth":                "cm",
	"peat_consumed":             "cm",
	"biomass_consumed_canopy":   "%",
	"biomass_consumed_shrub":    "%",
	"biomass_consumed_herb":     "%",
	"biomass_consumed_litter":   "%",
	"biomass_consumed_overall":  "%",
	"largest_twig_diameter":     "mm",
	"fire_spread_rate":          "m/min",
}

// UnitsFor returns the fixed unit for a measured variable, or "" when the
// variable has no registered unit.
func UnitsFor(variable string) string {
	return tripletUnits[variable]
}

// Triplet is a best/lower/upper representation of an uncertain measurement.
type Triplet struct {
	Best  *float64
	Lower *float64
	Upper *float64
	Units string
	Notes []string
}

// BuildTriplet assembles a triplet from up to three recorded values in fixed
// order, sanity-checking the bounds against the best estimate. A lower bound
// above the best estimate is demoted to the best estimate (and noted), and
// symmetrically for an upper bound below it; the out-of-order value itself is
// discarded.
func BuildTriplet(variable string, best, lower, upper *float64) Triplet {
	t := Triplet{Best: best, Units: UnitsFor(variable)}

	if lower != nil {
		if t.Best != nil && *lower > *t.Best {
			demoted := *t.Best
			t.Lower = &demoted
			t.Notes = append(t.Notes, fmt.Sprintf(
				"lower bound given as %v but greater than best estimate", *lower))
		} else {
			t.Lower = lower
		}
	}
	if upper != nil {
		if t.Best != nil && *upper < *t.Best {
			demoted := *t.Best
			t.Upper = &demoted
			t.Notes = append(t.Notes, fmt.Sprintf(
				"upper bound given as %v but less than best estimate", *upper))
		} else {
			t.Upper = upper
		}
	}
	return t
}

// Empty reports whether no slot of the triplet is set.
func (t Triplet) Empty() bool {
	return t.Best == nil && t.Lower == nil && t.Upper == nil
}
