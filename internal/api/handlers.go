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
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/tomoncle/itemsvc/internal/item"
)

type itemView struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	NextItem string `json:"next_item"`
}

type messageBody struct {
	Message string `json:"message"`
}

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.items.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	it, err := item.DecodeOne(r.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	created, err := s.items.Create(r.Context(), it)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) bulkCreateItems(w http.ResponseWriter, r *http.Request) {
	items, err := item.DecodeMany(r.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	n, err := s.items.BulkCreate(r.Context(), items)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, messageBody{Message: fmt.Sprintf("Created %d items", n)})
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		// out of int64 range, so no such row
		notFound(w, r)
		return
	}
	it, err := s.items.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if it == nil {
		notFound(w, r)
		return
	}
	next, err := s.itemURL(r, id+1)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, itemView{ID: it.ID, Name: it.Name, NextItem: next})
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	status := s.health.HealthCheck(r.Context())
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

// itemURL builds the absolute URL of the item route for id.
func (s *Server) itemURL(r *http.Request, id int64) (string, error) {
	u, err := s.router.Get(routeItem).URL("id", strconv.FormatInt(id, 10))
	if err != nil {
		return "", fmt.Errorf("build item url: %w", err)
	}
	return s.externalBase(r) + u.Path, nil
}

func (s *Server) externalBase(r *http.Request) string {
	if s.baseURL != "" {
		return s.baseURL
	}
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
