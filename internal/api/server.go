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

// Package api exposes the item service over HTTP/JSON.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/tomoncle/itemsvc/config"
	"github.com/tomoncle/itemsvc/database"
	"github.com/tomoncle/itemsvc/internal/item"
	"github.com/tomoncle/itemsvc/utils"
)

const routeItem = "item"

// HealthChecker reports storage health for /healthz.
type HealthChecker interface {
	HealthCheck(ctx context.Context) *database.HealthStatus
}

type Server struct {
	items      item.Service
	health     HealthChecker
	log        *logrus.Logger
	baseURL    string
	router     *mux.Router
	handler    http.Handler
	httpServer *http.Server
}

// NewServer wires the routes for items. health may be nil, in which case
// /healthz is not registered.
func NewServer(cfg config.ServerConfig, items item.Service, health HealthChecker) *Server {
	s := &Server{
		items:   items,
		health:  health,
		log:     utils.NewLogger("HTTP"),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
	s.router = s.routes()
	s.handler = s.requestID(s.accessLog(s.recoverer(s.router)))
	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/items", s.listItems).Methods(http.MethodGet)
	r.HandleFunc("/api/items", s.createItem).Methods(http.MethodPost)
	r.HandleFunc("/api/items/bulk", s.bulkCreateItems).Methods(http.MethodPost)
	r.HandleFunc("/api/items/{id:-?[0-9]+}", s.getItem).Methods(http.MethodGet).Name(routeItem)
	if s.health != nil {
		r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	}
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	return r
}

// Handler returns the full handler chain, middleware included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe blocks until the server stops. A stop caused by Shutdown
// returns nil.
func (s *Server) ListenAndServe() error {
	s.log.WithField("addr", s.httpServer.Addr).Info("HTTP server started")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}
