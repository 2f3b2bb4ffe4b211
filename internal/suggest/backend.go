// Package suggest guesses and suggests menu item names from partial input
// using a generative text backend.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnavailable means the backend could not be reached or refused the request.
	ErrUnavailable = errors.New("suggestion service unavailable")
	// ErrMalformed means the backend answered with something that does not
	// match the expected schema.
	ErrMalformed = errors.New("malformed suggestion response")
)

// Request is a single structured generation request.
type Request struct {
	// Prompt is the fully rendered prompt text.
	Prompt string
	// Schema describes the JSON object the backend must return.
	Schema map[string]any
}

// Backend generates JSON text for a prompt. Implementations must return
// errors wrapping ErrUnavailable or ErrMalformed.
type Backend interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Unavailable is the Backend used when no generation service is configured.
type Unavailable struct{}

func (Unavailable) Generate(context.Context, Request) (string, error) {
	return "", fmt.Errorf("%w: no backend configured", ErrUnavailable)
}

var guessSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"guess": map[string]any{
			"type":        "STRING",
			"description": "A single most likely full menu item name.",
		},
	},
	"required": []string{"guess"},
}

var suggestSchema = map[string]any{
	"type": "OBJECT",
	"properties": map[string]any{
		"suggestions": map[string]any{
			"type":        "ARRAY",
			"description": "A list of 5-7 suggested menu item names.",
			"items":       map[string]any{"type": "STRING"},
		},
	},
	"required": []string{"suggestions"},
}

// extractJSON trims anything around the outermost JSON object, such as
// markdown fences.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return text[start : end+1]
}
