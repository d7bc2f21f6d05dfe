// README: LLM provider contract for preference extraction.
package ai

import (
	"context"
	"encoding/json"
)

// LLMProvider defines the contract for interacting with AI models.
// This interface allows for swapping different AI providers (Gemini, OpenAI, etc.) in the future.
type LLMProvider interface {
	// ExtractPreferences analyzes the user's natural language travel query and
	// returns one preference entity as raw JSON in the schema of the given
	// domain ("flight" or "hotel"). currentContext carries dynamic information
	// like "current_time" or "user_location".
	ExtractPreferences(ctx context.Context, query, domain string, currentContext map[string]string) (json.RawMessage, error)
}
