package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/outputparser"
)

// ErrMissingKey is returned when structured output lacks a declared field.
var ErrMissingKey = errors.New("structured output is missing key")

// Parser turns model text into a value.
type Parser[T any] interface {
	Parse(text string) (T, error)
}

// TextParser returns the model output trimmed of surrounding whitespace.
type TextParser struct{}

func (TextParser) Parse(text string) (string, error) {
	return strings.TrimSpace(text), nil
}

// ListParser splits comma-separated output into trimmed items.
type ListParser struct {
	inner outputparser.CommaSeparatedList
}

// NewListParser creates a comma-separated list parser.
func NewListParser() ListParser {
	return ListParser{inner: outputparser.NewCommaSeparatedList()}
}

func (p ListParser) Parse(text string) ([]string, error) {
	items, err := p.inner.Parse(text)
	if err != nil {
		return nil, err
	}
	out := items[:0]
	for _, it := range items {
		if it != "" {
			out = append(out, it)
		}
	}
	return out, nil
}

// GetFormatInstructions returns the instructions to append to a prompt.
func (p ListParser) GetFormatInstructions() string {
	return p.inner.GetFormatInstructions()
}

// Field describes one key of structured output.
type Field struct {
	Name        string
	Description string
}

// StructuredParser reads a JSON object of string fields, fenced or bare.
type StructuredParser struct {
	fields []Field
	inner  outputparser.Structured
}

// NewStructuredParser creates a parser that requires every field.
func NewStructuredParser(fields ...Field) *StructuredParser {
	schemas := make([]outputparser.ResponseSchema, len(fields))
	for i, f := range fields {
		schemas[i] = outputparser.ResponseSchema{Name: f.Name, Description: f.Description}
	}
	return &StructuredParser{fields: fields, inner: outputparser.NewStructured(schemas)}
}

// TechnologyFields are the fields of the technology profile.
var TechnologyFields = []Field{
	{Name: "benefits", Description: "two benefits separated by commas"},
	{Name: "complexity", Description: "low, medium or high"},
	{Name: "use_case", Description: "one main use case"},
}

// GetFormatInstructions returns the instructions to append to a prompt.
func (p *StructuredParser) GetFormatInstructions() string {
	return p.inner.GetFormatInstructions()
}

func (p *StructuredParser) Parse(text string) (map[string]string, error) {
	text = strings.TrimSpace(text)
	if !strings.Contains(text, "```json") {
		text = "```json\n" + strings.Trim(text, "`") + "\n```"
	}

	v, err := p.inner.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse structured output: %w", err)
	}
	var parsed map[string]string
	switch m := v.(type) {
	case map[string]string:
		parsed = m
	case map[string]any:
		parsed = make(map[string]string, len(m))
		for k, val := range m {
			parsed[k] = fmt.Sprint(val)
		}
	default:
		return nil, fmt.Errorf("failed to parse structured output: unexpected %T", v)
	}
	for _, f := range p.fields {
		if _, ok := parsed[f.Name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingKey, f.Name)
		}
	}
	return parsed, nil
}
