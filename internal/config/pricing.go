package config

const (
	// charsPerToken approximates the tokenizer: one token per four characters.
	charsPerToken = 4
	// promptOverheadTokens covers the fixed analysis prompt sent with the code.
	promptOverheadTokens = 1000
	// fallbackPricePerKTokens applies to models missing from the price table.
	fallbackPricePerKTokens = 0.001
)

// ModelPrice is the per-1K-token USD input price for a model.
type ModelPrice struct {
	Model          string
	PricePerKToken float64
	Description    string
}

// KnownModels returns the price table in display order. The slice is a
// fresh copy on every call.
func KnownModels() []ModelPrice {
	return []ModelPrice{
		{Model: "gemini-1.5-flash", PricePerKToken: 0.00015, Description: "fast, cheapest"},
		{Model: "gemini-1.5-pro", PricePerKToken: 0.0035, Description: "most capable"},
		{Model: "gemini-1.0-pro", PricePerKToken: 0.0005, Description: "legacy"},
	}
}

// PricePerKTokens returns the USD price per 1000 tokens for model.
// Unknown models get the fallback rate and known=false.
func PricePerKTokens(model string) (price float64, known bool) {
	switch model {
	case "gemini-1.5-flash":
		return 0.00015, true // $0.15 per 1M tokens
	case "gemini-1.5-pro":
		return 0.0035, true // $3.50 per 1M tokens
	case "gemini-1.0-pro":
		return 0.0005, true // $0.50 per 1M tokens
	default:
		return fallbackPricePerKTokens, false
	}
}

// EstimateTokens approximates the token count of a submission whose code is
// contentLength characters long, including the prompt overhead.
func EstimateTokens(contentLength int) int {
	if contentLength < 0 {
		contentLength = 0
	}
	return contentLength/charsPerToken + promptOverheadTokens
}

// EstimateCost returns the estimated USD cost of analyzing contentLength
// characters of code with model.
func EstimateCost(contentLength int, model string) float64 {
	price, _ := PricePerKTokens(model)
	return float64(EstimateTokens(contentLength)) / 1000.0 * price
}
