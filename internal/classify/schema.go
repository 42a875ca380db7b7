// Package classify describes the contract with the external classification
// service: a prompt plus a declared output schema in, one JSON document out.
package classify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

type Type string

const (
	TypeObject  Type = "OBJECT"
	TypeArray   Type = "ARRAY"
	TypeString  Type = "STRING"
	TypeBoolean Type = "BOOLEAN"
)

// Schema is the declared result shape sent with every request. The JSON
// encoding matches the Gemini responseSchema object.
type Schema struct {
	Type        Type               `json:"type"`
	Description string             `json:"description,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
}

var (
	// ErrUnavailable covers transport failures, timeouts and non-2xx replies.
	ErrUnavailable = errors.New("classifier unavailable")
	// ErrMalformed covers unparsable output and schema violations.
	ErrMalformed = errors.New("classifier output malformed")
	// ErrBlocked is returned when the service produced no usable candidate.
	ErrBlocked = errors.New("classifier returned no candidate")
)

// Malformed wraps a cause as ErrMalformed.
func Malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

// Cause names the failure class for logs and metric labels.
func Cause(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrBlocked):
		return "blocked"
	default:
		return "unavailable"
	}
}

// Decode parses raw into v, rejecting unknown fields and trailing data.
func Decode(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return Malformed("decode: %v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Malformed("trailing data after document")
	}
	return nil
}
