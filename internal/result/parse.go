package result

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON is returned by Extract when the text contains no JSON object.
var ErrNoJSON = errors.New("no JSON object in completion")

// Extract finds the JSON object in text. Models sometimes wrap it in a
// markdown fence or surround it with prose, so everything outside the first
// '{' and the last '}' is dropped.
func Extract(text string) (json.RawMessage, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, ErrNoJSON
	}
	candidate := []byte(text[start : end+1])

	var decoded any
	dec := json.NewDecoder(bytes.NewReader(candidate))
	dec.UseNumber()
	if err := dec.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding completion JSON: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decoding completion JSON: trailing data after object")
	}
	return json.RawMessage(candidate), nil
}

// Parser validates structured completions against their declared schema.
type Parser struct {
	validator *Validator
}

// NewParser compiles the schemas and returns a Parser.
func NewParser() (*Parser, error) {
	v, err := NewValidator()
	if err != nil {
		return nil, err
	}
	return &Parser{validator: v}, nil
}

// Parse turns text into a Result of the given kind. When the text is not
// JSON, or is JSON of the wrong shape, Data is the marshalled fallback.
func (p *Parser) Parse(kind Kind, text string, fallback any) Result {
	raw, err := Extract(text)
	if err != nil {
		return p.fallback(kind, fallback, Result{ParseError: err.Error()})
	}
	if errs := p.validator.Validate(kind, raw); len(errs) > 0 {
		return p.fallback(kind, fallback, Result{SchemaErrors: errs})
	}
	return Result{Kind: kind, Data: raw}
}

func (p *Parser) fallback(kind Kind, fallback any, r Result) Result {
	r.Kind = kind
	r.Fallback = true
	r.Data = MustMarshal(fallback)
	return r
}

// MustMarshal marshals payload types defined in this package, which cannot
// fail to encode.
func MustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("result: marshalling %T: %v", v, err))
	}
	return data
}
