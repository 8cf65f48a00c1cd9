package llm

// ModelCost holds pricing for a model.
// Token prices are in USD per 1 million tokens; image models are billed
// per generated image.
type ModelCost struct {
	InputPerMTok  float64 // USD per 1M input tokens
	OutputPerMTok float64 // USD per 1M output tokens
	PerImage      float64 // USD per generated image
}

// Cost calculates the total USD cost for the given token and image counts.
func (c ModelCost) Cost(inputTokens, outputTokens, images int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000 +
		float64(images)*c.PerImage
}

// LookupCost returns the pricing for a model ID, or nil if unknown.
func LookupCost(modelID string) *ModelCost {
	if c, ok := modelCosts[modelID]; ok {
		return &c
	}
	return nil
}

// modelCosts is the embedded pricing table from the public Gemini API
// price list. Last updated: 2026-09-30.
var modelCosts = map[string]ModelCost{
	// Text
	"gemini-2.0-flash":                      {InputPerMTok: 0.1, OutputPerMTok: 0.4},
	"gemini-2.0-flash-lite":                 {InputPerMTok: 0.075, OutputPerMTok: 0.3},
	"gemini-2.5-flash":                      {InputPerMTok: 0.3, OutputPerMTok: 2.5},
	"gemini-2.5-flash-lite":                 {InputPerMTok: 0.1, OutputPerMTok: 0.4},
	"gemini-2.5-flash-preview-09-2025":      {InputPerMTok: 0.3, OutputPerMTok: 2.5},
	"gemini-2.5-flash-lite-preview-09-2025": {InputPerMTok: 0.1, OutputPerMTok: 0.4},
	"gemini-2.5-pro":                        {InputPerMTok: 1.25, OutputPerMTok: 10},
	"gemini-3-flash-preview":                {InputPerMTok: 0.5, OutputPerMTok: 3},
	"gemini-3-pro-preview":                  {InputPerMTok: 2, OutputPerMTok: 12},
	"gemini-flash-latest":                   {InputPerMTok: 0.3, OutputPerMTok: 2.5},
	"gemini-flash-lite-latest":              {InputPerMTok: 0.1, OutputPerMTok: 0.4},

	// Images
	"imagen-4.0-generate-001":       {PerImage: 0.04},
	"imagen-4.0-fast-generate-001":  {PerImage: 0.02},
	"imagen-4.0-ultra-generate-001": {PerImage: 0.06},
	"imagen-3.0-generate-002":       {PerImage: 0.03},
}
