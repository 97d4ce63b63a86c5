// Package storetest runs an in-memory document store speaking the same
// REST dialect as the remote store, for tests.
package storetest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type Request struct {
	Method     string
	Collection string
	Key        string
}

type Server struct {
	*httptest.Server

	// Token, when set, must match the auth query parameter
	Token string

	mu       sync.Mutex
	docs     map[string]map[string]json.RawMessage
	raw      map[string]string
	failures map[string]int
	seq      int
	requests []Request
}

func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		docs:     make(map[string]map[string]json.RawMessage),
		raw:      make(map[string]string),
		failures: make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Seed stores v under collection/key.
func (s *Server) Seed(collection, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collection(collection)[key] = data
}

// SeedRaw makes collection reads return body verbatim.
func (s *Server) SeedRaw(collection, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raw[collection] = body
}

// FailWith makes every request to collection answer with status; 0 clears it.
func (s *Server) FailWith(collection string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, collection)
		return
	}
	s.failures[collection] = status
}

func (s *Server) Doc(collection, key string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[collection][key]
	return doc, ok
}

func (s *Server) Len(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs[collection])
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Count returns how many requests hit collection with method.
func (s *Server) Count(method, collection string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Collection == collection {
			n++
		}
	}
	return n
}

// caller holds mu
func (s *Server) collection(name string) map[string]json.RawMessage {
	c, ok := s.docs[name]
	if !ok {
		c = make(map[string]json.RawMessage)
		s.docs[name] = c
	}
	return c
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(strings.Trim(r.URL.Path, "/"), ".json")
	path = strings.Trim(path, "/")
	var collection, key string
	if path != "" {
		parts := strings.SplitN(path, "/", 2)
		collection = parts[0]
		if len(parts) == 2 {
			key = parts[1]
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, Request{Method: r.Method, Collection: collection, Key: key})

	w.Header().Set("Content-Type", "application/json")
	if s.Token != "" && r.URL.Query().Get("auth") != s.Token {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":"Permission denied"}`)
		return
	}
	if status, ok := s.failures[collection]; ok {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, `{"error":"injected failure"}`)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.get(w, collection, key)
	case http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		if !json.Valid(body) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":"Invalid data"}`)
			return
		}
		s.seq++
		newKey := fmt.Sprintf("-K%08d", s.seq)
		s.collection(collection)[newKey] = body
		_ = json.NewEncoder(w).Encode(map[string]string{"name": newKey})
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		if !json.Valid(body) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":"Invalid data"}`)
			return
		}
		s.collection(collection)[key] = body
		_, _ = w.Write(body)
	case http.MethodDelete:
		delete(s.collection(collection), key)
		_, _ = io.WriteString(w, "null")
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// caller holds mu
func (s *Server) get(w http.ResponseWriter, collection, key string) {
	if collection == "" {
		names := make(map[string]bool, len(s.docs))
		for name := range s.docs {
			names[name] = true
		}
		_ = json.NewEncoder(w).Encode(names)
		return
	}
	if key == "" {
		if raw, ok := s.raw[collection]; ok {
			_, _ = io.WriteString(w, raw)
			return
		}
		docs := s.docs[collection]
		if len(docs) == 0 {
			_, _ = io.WriteString(w, "null")
			return
		}
		_ = json.NewEncoder(w).Encode(docs)
		return
	}
	doc, ok := s.docs[collection][key]
	if !ok {
		_, _ = io.WriteString(w, "null")
		return
	}
	_, _ = w.Write(doc)
}
