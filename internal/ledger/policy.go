package ledger

import (
	"github.com/shopspring/decimal"

	"recircle/internal/platform/config"
	"recircle/internal/residue"
)

// AwardPolicy decides how many points a processed residue is worth. The
// award amount is configuration, not a hidden literal, because the product
// has run with both a flat award and a weight-proportional one.
type AwardPolicy interface {
	Award(r residue.Residue) int
}

// FlatAward is worth the same fixed number of points for every processed
// residue.
type FlatAward struct {
	Points int
}

func (p FlatAward) Award(residue.Residue) int { return p.Points }

// WeightAward is worth round(weight * factor) points. Residues submitted by
// unit count only, with no weight, fall back to the flat fallback.
type WeightAward struct {
	Factor   int
	Fallback int
}

func (p WeightAward) Award(r residue.Residue) int {
	if r.Weight == nil {
		return p.Fallback
	}
	award := r.Weight.Mul(decimal.NewFromInt(int64(p.Factor))).Round(0)
	return int(award.IntPart())
}

// PolicyFromConfig builds the award policy named by configuration,
// defaulting to the flat policy.
func PolicyFromConfig(cfg config.PointsConfig) AwardPolicy {
	if cfg.Policy == "weight" {
		return WeightAward{Factor: cfg.WeightFactor, Fallback: cfg.FlatAward}
	}
	return FlatAward{Points: cfg.FlatAward}
}
