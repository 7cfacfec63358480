package service

import (
	"github.com/set-night/groqchat/internal/domain"
	"github.com/shopspring/decimal"
)

var perMillion = decimal.NewFromInt(1_000_000)

// CalculateCost prices a completion from per-1M-token model prices, with an
// optional percentage markup.
func CalculateCost(promptTokens, completionTokens int, model *domain.AIModel, markupPercent float64) decimal.Decimal {
	if model == nil || model.IsFree() {
		return decimal.Zero
	}
	promptCost := decimal.NewFromInt(int64(promptTokens)).Mul(decimal.NewFromFloat(model.PromptPrice))
	completionCost := decimal.NewFromInt(int64(completionTokens)).Mul(decimal.NewFromFloat(model.CompletionPrice))
	baseCost := promptCost.Add(completionCost).Div(perMillion)
	if markupPercent == 0 {
		return baseCost
	}
	markup := decimal.NewFromFloat(1 + markupPercent/100)
	return baseCost.Mul(markup)
}
