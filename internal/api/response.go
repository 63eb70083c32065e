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

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tomoncle/itemsvc/internal/item"
)

const (
	msgNotFound         = "Not found"
	msgMethodNotAllowed = "Method not allowed"
	msgDuplicate        = "Item already exists"
	msgInternal         = "Internal server error"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, errorBody{Error: msgNotFound})
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: msgMethodNotAllowed})
}

// writeError maps service and validation errors to a status code. Anything
// unrecognized is logged and reported as a bare 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *item.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: verr.Error()})
	case errors.Is(err, item.ErrMalformedBody):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, item.ErrDuplicateID):
		s.entry(r).WithError(err).Warn("Duplicate item id")
		writeJSON(w, http.StatusConflict, errorBody{Error: msgDuplicate})
	default:
		s.entry(r).WithError(err).Error("Request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: msgInternal})
	}
}
