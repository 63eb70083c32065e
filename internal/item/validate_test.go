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
	"errors"
	"strings"
	"testing"
)

func TestDecodeOne(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		wantField string
		malformed bool
	}{
		{name: "ok", body: `{"id":4,"name":"New Item"}`},
		{name: "zero id is allowed", body: `{"id":0,"name":"zero"}`},
		{name: "missing id", body: `{"name":"x"}`, wantField: "id"},
		{name: "missing name", body: `{"id":1}`, wantField: "name"},
		{name: "blank name", body: `{"id":1,"name":"  "}`, wantField: "name"},
		{name: "null", body: `null`, wantField: "id"},
		{name: "empty", body: ``, malformed: true},
		{name: "syntax", body: `{"id":`, malformed: true},
		{name: "wrong type", body: `{"id":"one","name":"x"}`, malformed: true},
		{name: "array", body: `[{"id":1,"name":"x"}]`, malformed: true},
		{name: "trailing", body: `{"id":1,"name":"x"} {}`, malformed: true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			it, err := DecodeOne(strings.NewReader(c.body))
			switch {
			case c.malformed:
				if !errors.Is(err, ErrMalformedBody) {
					t.Fatalf("error = %v, want ErrMalformedBody", err)
				}
			case c.wantField != "":
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("error = %v, want *ValidationError", err)
				}
				if verr.Field != c.wantField || verr.Index != -1 {
					t.Fatalf("validation error = %+v, want field %q", verr, c.wantField)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if it == nil {
					t.Fatal("nil item")
				}
			}
		})
	}
}

func TestDecodeMany(t *testing.T) {
	items, err := DecodeMany(strings.NewReader(`[{"id":10,"name":"a"},{"id":11,"name":"b"}]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 2 || items[1].ID != 11 || items[1].Name != "b" {
		t.Fatalf("decoded %+v", items)
	}

	empty, err := DecodeMany(strings.NewReader(`[]`))
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty array = %v, %v", empty, err)
	}

	_, err = DecodeMany(strings.NewReader(`[{"id":1,"name":"ok"},{"id":2}]`))
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Index != 1 || verr.Field != "name" {
		t.Fatalf("error = %v, want name error at index 1", err)
	}
	if !strings.Contains(verr.Error(), "item 1") {
		t.Fatalf("message %q does not name the index", verr.Error())
	}

	for _, body := range []string{`null`, `{"id":1,"name":"x"}`} {
		if _, err := DecodeMany(strings.NewReader(body)); !errors.Is(err, ErrMalformedBody) {
			t.Fatalf("DecodeMany(%s) error = %v, want ErrMalformedBody", body, err)
		}
	}
}
