// ABOUTME: Per-model token prices used when a telemetry frame omits its cost
// ABOUTME: Exact model names win; otherwise the first substring match in table order

package reconcile

import (
	"math"
	"strings"
)

// price is USD per million tokens.
type price struct {
	model  string
	input  float64
	output float64
}

var priceTable = []price{
	{"claude-sonnet-4-20250514", 3.0, 15.0},
	{"claude-haiku-3-5-20241022", 0.80, 4.0},
	{"gpt-4o", 2.50, 10.0},
	{"gpt-4o-mini", 0.15, 0.60},
	{"gemini-2.0-flash", 0.10, 0.40},
	{"gemini-1.5-pro", 1.25, 5.0},
}

func lookupPrice(model string) (price, bool) {
	if model == "" {
		return price{}, false
	}
	for _, p := range priceTable {
		if p.model == model {
			return p, true
		}
	}
	for _, p := range priceTable {
		if strings.Contains(model, p.model) || strings.Contains(p.model, model) {
			return p, true
		}
	}
	return price{}, false
}

// EstimateCost returns the USD cost of a call, rounded to six decimals.
// Models without a known price cost zero and report false.
func EstimateCost(model string, inputTokens, outputTokens int64) (float64, bool) {
	p, ok := lookupPrice(model)
	if !ok {
		return 0, false
	}
	cost := float64(inputTokens)/1e6*p.input + float64(outputTokens)/1e6*p.output
	return math.Round(cost*1e6) / 1e6, true
}
