package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mila-iqia/bibmerge/internal/config"
)

func TestRunFetch_UsesConfiguredAPIBase(t *testing.T) {
	root := setupRepo(t)

	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`{"paperId":"abc123","title":"A Study of Things","externalIds":{"DOI":"10.1234/example"}}`))
	}))
	defer server.Close()

	cfg, err := config.Load(root)
	if err != nil {
		t.Fatal(err)
	}
	cfg.ScholarAPIBase = server.URL
	if err := cfg.Save(root); err != nil {
		t.Fatal(err)
	}

	fetchCmd.SetContext(context.Background())
	if err := runFetch(fetchCmd, []string{"abc123"}); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if requests != 1 {
		t.Errorf("expected the configured API base to serve the fetch, got %d requests", requests)
	}
}
