package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedOutput means the model replied but its payload could not
// be reduced to a valid report. The request fails; nothing is cached
// and nothing is guessed.
var ErrMalformedOutput = errors.New("analysis: malformed model output")

// extractJSON strips a markdown code fence from model output. Despite
// the prompt's instructions the upstream sometimes wraps its JSON in
// a ```json fence; when one is present only the fenced body is kept,
// otherwise the whole trimmed text is returned.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)

	start := strings.Index(s, "```")
	if start == -1 {
		return s
	}

	body := s[start+3:]
	body = strings.TrimPrefix(body, "json")

	if end := strings.Index(body, "```"); end != -1 {
		body = body[:end]
	}

	return strings.TrimSpace(body)
}

// Normalize turns raw model output into a Report: detect-fence, then
// strict-parse. Any parse failure is terminal for the request.
func Normalize(raw string) (*Report, error) {
	payload := extractJSON(raw)
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrMalformedOutput)
	}

	var report Report
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	return &report, nil
}
