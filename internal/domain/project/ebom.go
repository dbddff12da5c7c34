package project

import (
	"math"

	"github.com/shopspring/decimal"
)

// Material norms per square meter of laminated surface.
var (
	resinPerSQM   = decimal.RequireFromString("1.5")
	gelcoatPerSQM = decimal.RequireFromString("0.6")
	fiberPerSQM   = decimal.RequireFromString("2.0")
	sqmPerWorker  = decimal.NewFromInt(5)

	maxManpower = decimal.NewFromInt(int64(math.MaxInt))
)

// ComputeEBOM derives the bill of materials for sqm square meters. Material
// weights are rounded half away from zero to one decimal; manpower is the
// ceiling of sqm/5, saturating at math.MaxInt. Non-finite input yields a
// zero EBOM.
func ComputeEBOM(sqm float64) EBOM {
	if math.IsNaN(sqm) || math.IsInf(sqm, 0) {
		return EBOM{}
	}
	area := decimal.NewFromFloat(sqm)
	workers := area.Div(sqmPerWorker).Ceil()
	if workers.GreaterThan(maxManpower) {
		workers = maxManpower
	}
	return EBOM{
		Resin:    area.Mul(resinPerSQM).Round(1).InexactFloat64(),
		Gelcoat:  area.Mul(gelcoatPerSQM).Round(1).InexactFloat64(),
		Fiber:    area.Mul(fiberPerSQM).Round(1).InexactFloat64(),
		Manpower: int(workers.IntPart()),
	}
}
