// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// Handlers accept both form-encoded bodies (htmx) and JSON bodies.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"kakeibo/internal/core"
	"kakeibo/internal/services"
)

// maxBodyBytes caps request bodies; an entry form is a few hundred bytes.
const maxBodyBytes = 64 << 10

// ErrInvalidID reports a path id that is not an integer.
var ErrInvalidID = errors.New("invalid entry id")

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body == nil {
		return p
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = fmt.Errorf("request body exceeds %d bytes", maxBodyBytes)
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.IsJSONContent() || p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a sanitized string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSONContent reports whether the Content-Type announces JSON.
func (p *RequestBodyParser) IsJSONContent() bool {
	return strings.HasPrefix(strings.ToLower(p.contentType), "application/json")
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts a decoded JSON value to string. Numbers keep their
// shortest form so amounts round-trip.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseDraft reads the entry form fields from the request body.
func ParseDraft(r *http.Request) (core.Draft, error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return core.Draft{}, err
	}
	return core.Draft{
		Date:        strings.TrimSpace(p.Get("date")),
		Member:      p.Get("member"),
		Type:        strings.TrimSpace(p.Get("type")),
		Category:    p.Get("category"),
		Description: p.Get("description"),
		Amount:      strings.TrimSpace(p.Get("amount")),
	}, nil
}

// ParseDecision reads the confirmation answer from the request body.
// Anything but "yes" cancels.
func ParseDecision(r *http.Request) (services.Decision, error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return services.Cancelled, err
	}
	return services.ParseDecision(strings.TrimSpace(p.Get("decision"))), nil
}

// ParseEntryID reads the {id} path segment.
func ParseEntryID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return id, nil
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}
