package classify

import (
	"github.com/vwap-grader/grader/models"
)

// ClassifyRegime labels the directional bias of the current bar from price,
// the fast/slow average pair and the session average. Rules are evaluated in
// order and the first match wins; the strict four-condition bull and bear
// tests run before the plain crossover tests because the conditions overlap.
// Equality (price exactly on an average) counts as neither above nor below,
// so flat markets fall through to NEUTRAL.
func ClassifyRegime(ctx models.BarContext) models.TrendRegime {
	priceAboveFast := ctx.Price > ctx.FastAverage
	priceBelowFast := ctx.Price < ctx.FastAverage
	fastAboveSlow := ctx.FastAverage > ctx.SlowAverage
	fastBelowSlow := ctx.FastAverage < ctx.SlowAverage
	fastSlopeUp := ctx.FastAverage > ctx.FastAveragePrevious
	fastSlopeDown := ctx.FastAverage < ctx.FastAveragePrevious
	priceAboveSession := ctx.Price > ctx.SessionAverage
	priceBelowSession := ctx.Price < ctx.SessionAverage

	if priceAboveFast && fastAboveSlow && priceAboveSession && fastSlopeUp {
		return models.RegimeStrongBull
	}
	if priceBelowFast && fastBelowSlow && priceBelowSession && fastSlopeDown {
		return models.RegimeBear
	}
	if priceAboveFast && fastAboveSlow {
		return models.RegimeBull
	}
	if priceBelowFast && fastBelowSlow {
		return models.RegimeBear
	}
	return models.RegimeNeutral
}
