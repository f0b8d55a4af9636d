// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package datastoretest provides an in-memory fake of the Cloud Datastore
// JSON API (v1) for tests of the REST transport and the keystore.
//
// The fake understands the subset the keystore uses: single-key :lookup,
// single-upsert :commit and kind-only :runQuery. Entities are stored verbatim
// as received, so a test can inspect exactly what went over the wire.
package datastoretest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/MKhiriev/go-cred-stash/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Request is a request observed by the fake.
type Request struct {
	Method string
	Path   string
	Token  string
	Body   json.RawMessage
}

type partitionID struct {
	ProjectID   string `json:"projectId,omitempty"`
	NamespaceID string `json:"namespaceId,omitempty"`
}

type pathElement struct {
	Kind string `json:"kind"`
	Name string `json:"name,omitempty"`
}

type key struct {
	PartitionID *partitionID  `json:"partitionId,omitempty"`
	Path        []pathElement `json:"path"`
}

// Entity is the wire representation stored by the fake.
type Entity struct {
	Key        key                        `json:"key"`
	Properties map[string]json.RawMessage `json:"properties,omitempty"`
}

// Server is a fake Datastore REST endpoint.
type Server struct {
	*httptest.Server

	// ProjectID is the only project the fake accepts.
	ProjectID string
	// Token, when set, is the only bearer token the fake accepts.
	Token string

	mu       sync.Mutex
	entities map[string]Entity
	order    []string
	requests []Request

	failStatus     int
	duplicateFound bool
}

// NewServer starts a fake for projectID. The caller must Close it.
func NewServer(projectID string) *Server {
	s := &Server{
		ProjectID: projectID,
		entities:  map[string]Entity{},
	}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(s.record)
	router.Use(s.auth)
	router.Post("/v1/projects/{target}", s.dispatch)

	s.Server = httptest.NewServer(router)
	return s
}

// FailWith makes every subsequent request answer with statusCode.
func (s *Server) FailWith(statusCode int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus = statusCode
}

// DuplicateFound makes :lookup report the found entity twice.
func (s *Server) DuplicateFound() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duplicateFound = true
}

// Requests returns a copy of the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Stored returns the entity stored under the namespace and kind/name path.
func (s *Server) Stored(namespace string, path ...string) (Entity, bool) {
	elems := make([]pathElement, 0, len(path)/2)
	for i := 0; i+1 < len(path); i += 2 {
		elems = append(elems, pathElement{Kind: path[i], Name: path[i+1]})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[storageKey(namespace, elems)]
	return e, ok
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&body)

		token, _ := utils.ParseBearerToken(r.Header.Get("Authorization"))

		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Token: token, Body: body})
		s.mu.Unlock()

		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := utils.ParseBearerToken(r.Header.Get("Authorization"))
		if err != nil || (s.Token != "" && token != s.Token) {
			_, _ = utils.WriteGoogleError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "request had invalid authentication credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	project, method, ok := strings.Cut(chi.URLParam(r, "target"), ":")
	if !ok || project != s.ProjectID {
		_, _ = utils.WriteGoogleError(w, http.StatusNotFound, "NOT_FOUND", "unknown project or method")
		return
	}

	s.mu.Lock()
	failStatus := s.failStatus
	s.mu.Unlock()
	if failStatus != 0 {
		_, _ = utils.WriteGoogleError(w, failStatus, "FAILED", http.StatusText(failStatus))
		return
	}

	switch method {
	case "lookup":
		s.lookup(w, r)
	case "commit":
		s.commit(w, r)
	case "runQuery":
		s.runQuery(w, r)
	default:
		_, _ = utils.WriteGoogleError(w, http.StatusNotFound, "NOT_FOUND", "unknown method "+method)
	}
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keys []key `json:"keys"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Keys) == 0 {
		_, _ = utils.WriteGoogleError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "keys are required")
		return
	}

	type result struct {
		Entity any `json:"entity"`
	}
	found := make([]result, 0)
	missing := make([]result, 0)

	s.mu.Lock()
	for _, k := range req.Keys {
		e, ok := s.entities[storageKey(namespaceOf(k.PartitionID), k.Path)]
		if !ok {
			missing = append(missing, result{Entity: map[string]any{"key": k}})
			continue
		}
		found = append(found, result{Entity: e})
		if s.duplicateFound {
			found = append(found, result{Entity: e})
		}
	}
	s.mu.Unlock()

	resp := map[string]any{}
	if len(found) > 0 {
		resp["found"] = found
	}
	if len(missing) > 0 {
		resp["missing"] = missing
	}
	_, _ = utils.WriteJSON(w, resp, http.StatusOK)
}

func (s *Server) commit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mutations []struct {
			Upsert *Entity `json:"upsert"`
		} `json:"mutations"`
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_, _ = utils.WriteGoogleError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
		return
	}
	if req.Mode != "NON_TRANSACTIONAL" {
		_, _ = utils.WriteGoogleError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "a transaction is required unless mode is NON_TRANSACTIONAL")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range req.Mutations {
		if m.Upsert == nil || len(m.Upsert.Key.Path) == 0 {
			_, _ = utils.WriteGoogleError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "only upserts with a key are supported")
			return
		}
		id := storageKey(namespaceOf(m.Upsert.Key.PartitionID), m.Upsert.Key.Path)
		if _, ok := s.entities[id]; !ok {
			s.order = append(s.order, id)
		}
		s.entities[id] = *m.Upsert
	}

	_, _ = utils.WriteJSON(w, map[string]any{"mutationResults": []any{}}, http.StatusOK)
}

func (s *Server) runQuery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PartitionID *partitionID `json:"partitionId"`
		Query       struct {
			Kind []struct {
				Name string `json:"name"`
			} `json:"kind"`
		} `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Query.Kind) != 1 {
		_, _ = utils.WriteGoogleError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "exactly one kind is required")
		return
	}
	kind := req.Query.Kind[0].Name
	namespace := namespaceOf(req.PartitionID)

	type result struct {
		Entity Entity `json:"entity"`
	}
	results := make([]result, 0)

	s.mu.Lock()
	for _, id := range s.order {
		e := s.entities[id]
		leaf := e.Key.Path[len(e.Key.Path)-1]
		if leaf.Kind == kind && namespaceOf(e.Key.PartitionID) == namespace {
			results = append(results, result{Entity: e})
		}
	}
	s.mu.Unlock()

	_, _ = utils.WriteJSON(w, map[string]any{
		"batch": map[string]any{
			"entityResults": results,
			"moreResults":   "NO_MORE_RESULTS",
		},
	}, http.StatusOK)
}

func namespaceOf(p *partitionID) string {
	if p == nil {
		return ""
	}
	return p.NamespaceID
}

func storageKey(namespace string, path []pathElement) string {
	var b strings.Builder
	b.WriteString(namespace)
	for _, el := range path {
		b.WriteString("|")
		b.WriteString(el.Kind)
		b.WriteString("/")
		b.WriteString(el.Name)
	}
	return b.String()
}
