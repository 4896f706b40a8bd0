package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/zjrosen/conceptnav/internal/sdmx"
)

// RegistryServer answers structure queries from a Builder.
type RegistryServer struct {
	*httptest.Server

	b *Builder

	mu     sync.Mutex
	hits   map[string]int
	failed map[string]int
}

// NewRegistryServer starts a fake registry for b. It is closed with the test.
//
// Routes, under the server URL:
//
//	/dataflow/all/{id}/latest?references=all        ArtefactMessage
//	/dataflow/all/{id}/latest?references=ancestors  ConstraintMessage
//	/categoryscheme/{agency}/{id}/latest            CatalogueMessage
//	/categoryscheme/all/all/latest                  CategorySchemeMessage
//	/categorisation/all/all/latest                  CategorisationMessage
func NewRegistryServer(t *testing.T, b *Builder) *RegistryServer {
	t.Helper()
	s := &RegistryServer{b: b, hits: make(map[string]int), failed: make(map[string]int)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// FailWith makes requests for resource id answer status until cleared with
// status 0.
func (s *RegistryServer) FailWith(id string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failed, id)
		return
	}
	s.failed[id] = status
}

// Hits returns how often the path ending in resource id was requested with
// the given references value.
func (s *RegistryServer) Hits(id, references string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[id+"?"+references]
}

// TotalHits returns the number of requests served.
func (s *RegistryServer) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, h := range s.hits {
		n += h
	}
	return n
}

func (s *RegistryServer) serve(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 4 {
		http.NotFound(w, r)
		return
	}
	resource, agency, id := parts[len(parts)-4], parts[len(parts)-3], parts[len(parts)-2]
	refs := r.URL.Query().Get("references")

	s.mu.Lock()
	s.hits[id+"?"+refs]++
	status := s.failed[id]
	s.mu.Unlock()

	if status != 0 {
		http.Error(w, "fixture failure", status)
		return
	}

	var msg *sdmx.Message
	switch {
	case resource == "dataflow" && refs == "ancestors":
		msg = s.b.ConstraintMessage(id)
	case resource == "dataflow":
		msg = s.b.ArtefactMessage(id)
	case resource == "categoryscheme" && agency == "all":
		msg = s.b.CategorySchemeMessage()
	case resource == "categoryscheme":
		msg = s.b.CatalogueMessage()
	case resource == "categorisation":
		msg = s.b.CategorisationMessage()
	}
	if msg == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(msg)
}
