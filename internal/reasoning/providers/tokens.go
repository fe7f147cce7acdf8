package providers

// Token budget bounds per provider family. Gemini runs tighter bounds
// because generous budgets push it into long, drifting rewrites.
const (
	defaultMinTokens = 100
	defaultMaxTokens = 2048

	geminiMinTokens = 256
	geminiMaxTokens = 1024

	tokenMultiplier = 2.0
)

// CalculateMaxTokens scales the input length by mult and clamps the result
// into [minTokens, maxTokens].
func CalculateMaxTokens(textLength, minTokens, maxTokens int, mult float64) int {
	tokens := int(float64(textLength) * mult)
	if tokens < minTokens {
		return minTokens
	}
	if tokens > maxTokens {
		return maxTokens
	}
	return tokens
}

// tokenBudget returns the effective output budget for a call: the caller's
// explicit limit when set, otherwise a length-derived default.
func tokenBudget(textLength, configured, minTokens, maxTokens int) int {
	if configured > 0 {
		return configured
	}
	return CalculateMaxTokens(textLength, minTokens, maxTokens, tokenMultiplier)
}
