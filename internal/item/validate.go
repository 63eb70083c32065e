/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package item

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformedBody is returned when a request body is not the expected JSON.
var ErrMalformedBody = errors.New("malformed request body")

// ValidationError names the field that failed and why. Index is the
// position inside a bulk payload, -1 for a single item.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("item %d: %s %s", e.Index, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Payload is the wire form of an item. Pointers tell a missing field apart
// from a zero value.
type Payload struct {
	ID   *int64  `json:"id"`
	Name *string `json:"name"`
}

// Validate returns the item the payload describes, or a *ValidationError.
func (p Payload) Validate() (*Item, error) {
	return p.validate(-1)
}

func (p Payload) validate(index int) (*Item, error) {
	if p.ID == nil {
		return nil, &ValidationError{Index: index, Field: "id", Reason: "is required"}
	}
	if p.Name == nil {
		return nil, &ValidationError{Index: index, Field: "name", Reason: "is required"}
	}
	if strings.TrimSpace(*p.Name) == "" {
		return nil, &ValidationError{Index: index, Field: "name", Reason: "must not be empty"}
	}
	return &Item{ID: *p.ID, Name: *p.Name}, nil
}

// ValidateAll validates every payload and stops at the first failure.
func ValidateAll(payloads []Payload) ([]*Item, error) {
	items := make([]*Item, 0, len(payloads))
	for i, p := range payloads {
		it, err := p.validate(i)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

// DecodeOne reads a single JSON object and validates it.
func DecodeOne(r io.Reader) (*Item, error) {
	var p Payload
	if err := decodeJSON(r, &p); err != nil {
		return nil, err
	}
	return p.Validate()
}

// DecodeMany reads a JSON array of objects and validates every element.
func DecodeMany(r io.Reader) ([]*Item, error) {
	var ps []Payload
	if err := decodeJSON(r, &ps); err != nil {
		return nil, err
	}
	if ps == nil {
		// a literal null is not an array
		return nil, fmt.Errorf("%w: expected a JSON array", ErrMalformedBody)
	}
	return ValidateAll(ps)
}

func decodeJSON(r io.Reader, v interface{}) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return fmt.Errorf("%w: empty body", ErrMalformedBody)
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data after JSON value", ErrMalformedBody)
	}
	return nil
}
