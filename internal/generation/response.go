package generation

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Response is a validated model reply.
type Response struct {
	Units    []UnitSchema `json:"units"`
	Language string       `json:"language"`
}

// UnitSchema is a study unit as the model returns it, before enrichment.
type UnitSchema struct {
	Name       string       `json:"name"`
	Concepts   []string     `json:"concepts"`
	Flashcards []CardSchema `json:"flashcards"`
}

// CardSchema is a single question/answer pair as the model returns it.
type CardSchema struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Validate parses a raw model reply. The body must be a JSON object whose
// units field is an array, and the whole body must decode into Response.
// Every failure wraps ErrInvalidResponse; a partial result is never returned.
func Validate(raw []byte) (*Response, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: reply is not a JSON object: %v", ErrInvalidResponse, err)
	}

	units, ok := envelope["units"]
	if !ok {
		return nil, fmt.Errorf("%w: reply has no units field", ErrInvalidResponse)
	}
	if trimmed := bytes.TrimSpace(units); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: units is not an array", ErrInvalidResponse)
	}

	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: reply does not match schema: %v", ErrInvalidResponse, err)
	}

	for i, u := range resp.Units {
		if u.Name == "" {
			return nil, fmt.Errorf("%w: unit %d has no name", ErrInvalidResponse, i)
		}
		for j, c := range u.Flashcards {
			if c.Question == "" || c.Answer == "" {
				return nil, fmt.Errorf("%w: unit %q flashcard %d is missing question or answer",
					ErrInvalidResponse, u.Name, j)
			}
		}
	}

	return &resp, nil
}
