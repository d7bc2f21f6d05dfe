// README: Gemini-backed preference extraction (JSON mode).
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider implements LLMProvider using Google's Gemini models.
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiProvider initializes a new Gemini client.
// apiKey should be provided from environment variables.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	// Gemini 2.0 Flash for low latency and cost efficiency.
	model := client.GenerativeModel("gemini-2.0-flash")

	// Force JSON response for structured parsing.
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.2)

	return &GeminiProvider{
		client: client,
		model:  model,
	}, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() {
	p.client.Close()
}

// ExtractPreferences asks the model for one preference entity in the schema
// of the given domain and returns the raw JSON object text.
func (p *GeminiProvider) ExtractPreferences(ctx context.Context, query, domain string, currentContext map[string]string) (json.RawMessage, error) {
	systemPrompt := buildSystemPrompt(domain, currentContext)
	fullPrompt := fmt.Sprintf("%s\n\nUser Query: %s", systemPrompt, query)

	resp, err := p.model.GenerateContent(ctx, genai.Text(fullPrompt))
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response candidates from Gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}

	// JSON mode should already return bare JSON, but strip markdown fences in
	// case the model wraps its output anyway.
	cleanJSON := cleanJSONString(responseText.String())

	// Validate the payload is one JSON object before it goes on the wire.
	var probe map[string]any
	if err := json.Unmarshal([]byte(cleanJSON), &probe); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w. Raw: %s", err, cleanJSON)
	}

	return json.RawMessage(cleanJSON), nil
}

// flightSchema and hotelSchema are the entity shapes the normalizer consumes.
const flightSchema = `{
  "destination": "string or null (where the user is flying to)",
  "trip_duration": "string or null (e.g. '3 days')",
  "preferred_airlines": ["string"],
  "not_preferred_airlines": ["string"],
  "preferred_departure_time": ["string (e.g. 'morning', '6-9 AM')"],
  "stops_preference": ["string ('0', '1', '2', ...)"],
  "flight_budget": "string or null (e.g. 'under $500')",
  "flight_amenities": ["string"],
  "chips": ["string (extra pre-formatted labels)"]
}`

const hotelSchema = `{
  "destination": "string or null (city or area of the stay)",
  "star_rating": "string or null (e.g. '5')",
  "preferred_user_rating": "string or null (e.g. '4.5')",
  "stay_budget": "string or null (e.g. 'NT$3000/night')",
  "amenities": ["string"],
  "accommodation_type": ["string"],
  "preferred_hotel_names": ["string"],
  "chips": ["string (extra pre-formatted labels)"]
}`

// buildSystemPrompt constructs the instructions for the AI.
func buildSystemPrompt(domain string, ctxMap map[string]string) string {
	currentTime := ctxMap["current_time"]
	userLocation := ctxMap["user_location"]
	if currentTime == "" {
		currentTime = "UNKNOWN_TIME"
	}
	if userLocation == "" {
		userLocation = "UNKNOWN_LOCATION"
	}

	schema := flightSchema
	if domain == "hotel" {
		schema = hotelSchema
	}

	return fmt.Sprintf(`Role: You are the preference extraction core for a travel app's "Ask AI" feature.
Context:
- Current System Time: %s
- User Location: %s
- Preference Domain: %s

RULES:
1. Extract ONLY preferences the user actually stated. Never invent values.
2. Omit a field entirely (or use null / []) when the user said nothing about it.
3. Keep values short and human readable; they become filter chips in the UI.
4. "stops_preference" uses digit strings: "0" means non-stop, "1" one stop, etc.
5. Budgets keep the user's own currency and phrasing.
6. "chips" is reserved for labels that fit no other field; usually leave it [].
7. Output exactly ONE JSON object in this schema, nothing else:
%s
`, currentTime, userLocation, domain, schema)
}

// cleanJSONString removes markdown code blocks if present (e.g. ```json ... ```)
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
