package classify

import (
	"math"

	"github.com/vwap-grader/grader/models"
)

// favorableSlackTicks widens the favorable distance band beyond the optimal
// maximum so that entries slightly past the ideal zone still show up for
// review instead of dropping straight to RISKY.
const favorableSlackTicks = 5

// DistanceTicks measures how far price sits from the anchored average in
// units of the instrument's minimum price increment. TickSize must be
// positive; that is the caller's precondition, not validated here.
func DistanceTicks(ctx models.BarContext) float64 {
	return math.Abs(ctx.Price-ctx.AnchoredAverageCurrent) / ctx.TickSize
}

// GradeLong grades a potential long entry. The rules form an ordered
// cascade: the FORBIDDEN floor is checked first and cannot be overridden by
// any later rule, then OPTIMAL, then FAVORABLE, and RISKY is the
// unconditional default.
func GradeLong(regime models.TrendRegime, ctx models.BarContext, params models.GradingParameters) models.EntryQuality {
	priceAboveAnchor := ctx.Price >= ctx.AnchoredAverageCurrent
	anchorUpOrFlat := ctx.AnchoredAverageCurrent >= ctx.AnchoredAveragePrevious
	anchorDown := ctx.AnchoredAverageCurrent < ctx.AnchoredAveragePrevious
	priceAboveSession := ctx.Price > ctx.SessionAverage
	priceBelowSession := ctx.Price < ctx.SessionAverage
	distance := DistanceTicks(ctx)

	if regime == models.RegimeBear || !priceAboveAnchor || anchorDown || priceBelowSession {
		return models.QualityForbidden
	}
	if regime == models.RegimeStrongBull && priceAboveAnchor && anchorUpOrFlat && priceAboveSession &&
		distance >= float64(params.MinDistanceTicks) && distance <= float64(params.MaxDistanceTicks) {
		return models.QualityOptimal
	}
	if (regime == models.RegimeStrongBull || regime == models.RegimeBull) && priceAboveAnchor && anchorUpOrFlat &&
		distance > 0 && distance <= float64(params.MaxDistanceTicks+favorableSlackTicks) {
		return models.QualityFavorable
	}
	return models.QualityRisky
}

// GradeShort grades a potential short entry. It mirrors GradeLong with the
// polarity reversed, except that the FAVORABLE band deliberately admits the
// BULL regime alongside BEAR: that widened band catches transitional
// regimes on the short side and is intended behavior, not an oversight.
func GradeShort(regime models.TrendRegime, ctx models.BarContext, params models.GradingParameters) models.EntryQuality {
	priceBelowAnchor := ctx.Price <= ctx.AnchoredAverageCurrent
	anchorDownOrFlat := ctx.AnchoredAverageCurrent <= ctx.AnchoredAveragePrevious
	anchorUp := ctx.AnchoredAverageCurrent > ctx.AnchoredAveragePrevious
	priceAboveSession := ctx.Price > ctx.SessionAverage
	priceBelowSession := ctx.Price < ctx.SessionAverage
	distance := DistanceTicks(ctx)

	if regime == models.RegimeStrongBull || !priceBelowAnchor || anchorUp || priceAboveSession {
		return models.QualityForbidden
	}
	if regime == models.RegimeBear && priceBelowAnchor && anchorDownOrFlat && priceBelowSession &&
		distance >= float64(params.MinDistanceTicks) && distance <= float64(params.MaxDistanceTicks) {
		return models.QualityOptimal
	}
	if (regime == models.RegimeBear || regime == models.RegimeBull) && priceBelowAnchor && anchorDownOrFlat &&
		distance > 0 && distance <= float64(params.MaxDistanceTicks+favorableSlackTicks) {
		return models.QualityFavorable
	}
	return models.QualityRisky
}
