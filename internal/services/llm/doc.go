// Package llm is a minimal OpenAI-compatible chat-completions client used to
// turn natural-language subscription requests into structured edits.
//
// Requests ask for JSON output (response_format json_object). Responses
// wrapped in code fences or surrounded by prose are tolerated by DecodeJSON.
// HTTP 408, 429, and 5xx answers, timeouts, and empty completions are retried
// with exponential backoff; Retry-After is honoured.
package llm
