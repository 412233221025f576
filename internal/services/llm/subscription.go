package llm

import (
	"context"
)

// SubscriptionEditPrompt asks the model for one subscription edit record.
// The word JSON must appear in the system prompt for json_object mode.
const SubscriptionEditPrompt = `You manage an anime RSS download configuration. The user describes one subscription change.
Extract these fields and answer with a single JSON object:
1. "title": the show name. It is required; when the user gives none, answer {"error": "no show title provided"}.
2. "url": the RSS subscription link.
3. "savedir": the folder name downloads are saved under.
4. "enable": whether the subscription is active, as a boolean true/false.
5. "rule": a regular expression that episode titles must match.

Rules:
- Every field the user does not mention must be the string "default".
- The output must be valid JSON and nothing else.`

// ExtractSubscriptionEdit converts a natural-language request into an edit
// record. Transport and decode failures are returned as {"error": ...}
// records so callers handle every outcome through one path.
func (c *Client) ExtractSubscriptionEdit(ctx context.Context, request string) map[string]any {
	content, err := c.CompleteJSON(ctx, SubscriptionEditPrompt, request)
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	var record map[string]any
	if err := DecodeJSON(content, &record); err != nil {
		return map[string]any{"error": "response is not a JSON object", "raw_content": content}
	}
	if record == nil {
		return map[string]any{"error": "response is empty", "raw_content": content}
	}
	return record
}
