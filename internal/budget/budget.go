// Package budget provides token budget estimation and history trimming for
// prompt assembly. Because the chatbot supports multiple LLM backends with
// different tokenizers, this package uses a conservative character-based
// heuristic: 1 token ≈ 4 characters (English prose). This deliberately
// under-estimates token counts to leave headroom for model-specific overhead.
package budget

const (
	// charsPerToken is the conservative character-to-token ratio used for
	// estimation. 4 chars/token is standard for English; using 3 would be
	// more aggressive but risks overflowing context windows.
	charsPerToken = 4

	// DefaultMaxContextTokens is the default input context budget in tokens.
	// Conservative enough to fit within 8k-context models while leaving room
	// for the output. Override via MEMORY_MAX_CONTEXT_TOKENS.
	DefaultMaxContextTokens = 6000

	// perItemOverhead is the small per-message overhead most chat APIs add
	// (~4 tokens for role and framing).
	perItemOverhead = 4
)

// Estimate returns a rough token count for s using the character heuristic.
func Estimate(s string) int {
	n := len(s) / charsPerToken
	if n == 0 && len(s) > 0 {
		return 1
	}
	return n
}

// EstimateExchange returns the estimated token count for a single
// conversation exchange (one user message plus one assistant reply),
// including per-message overhead.
func EstimateExchange(user, assistant string) int {
	return 2*perItemOverhead + Estimate(user) + Estimate(assistant)
}

// TrimOldest returns the number of leading items to drop from a sequence of
// per-item token costs so that fixedTokens plus the remaining items fits
// within maxTokens. Items are dropped oldest-first. If even the empty
// sequence does not fit, len(costs) is returned (drop everything); callers
// should warn separately when fixedTokens alone exceeds the budget.
func TrimOldest(costs []int, fixedTokens, maxTokens int) int {
	total := fixedTokens
	for _, c := range costs {
		total += c
	}

	// History is typically short; a linear scan from the front is clear
	// and correct.
	drop := 0
	for drop < len(costs) && total > maxTokens {
		total -= costs[drop]
		drop++
	}
	return drop
}
