package stylist

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	FailedGenerationDescription = "Failed to generate a valid outfit. Please try again."
	ErrorGenerationDescription  = "An error occurred while generating your outfit. Please try again."
)

// ParseError keeps the raw completion so it can be logged.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse llm response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var errNoJSONObject = errors.New("no JSON object found")

// cleanResponseText drops anything before the last output marker and strips
// markdown code fences.
func cleanResponseText(raw string) string {
	text := raw
	if i := strings.LastIndex(text, OutputMarker); i >= 0 {
		text = text[i+len(OutputMarker):]
	}
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```JSON")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// decodeObject unmarshals the completion into v, falling back to the
// outermost brace span when the model wrapped the JSON in prose.
func decodeObject(raw string, v any) error {
	text := cleanResponseText(raw)
	if text == "" {
		return &ParseError{Raw: raw, Err: errors.New("empty response")}
	}
	err := json.Unmarshal([]byte(text), v)
	if err == nil {
		return nil
	}
	start, end := strings.Index(text, "{"), strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return &ParseError{Raw: raw, Err: errors.Join(err, errNoJSONObject)}
	}
	if err2 := json.Unmarshal([]byte(text[start:end+1]), v); err2 != nil {
		return &ParseError{Raw: raw, Err: err2}
	}
	return nil
}

func Extract(raw string) (OutfitCandidate, error) {
	var c OutfitCandidate
	if err := decodeObject(raw, &c); err != nil {
		return OutfitCandidate{}, err
	}
	// warnings are ours, never the model's
	c.Warnings = []string{}
	if c.OutfitItems == nil {
		c.OutfitItems = []OutfitItemRef{}
	}
	return c, nil
}

// FailedCandidate is returned in place of an outfit that could not be produced.
func FailedCandidate(occasion Occasion, description, warning string) OutfitCandidate {
	return OutfitCandidate{
		Occasion:    occasion,
		OutfitItems: []OutfitItemRef{},
		Description: description,
		Warnings:    []string{warning},
	}
}
