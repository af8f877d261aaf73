package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"presyo-tracker/internal/registry"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testRegion() registry.Region {
	return registry.Region{ID: 5, Name: "Region V", Param: "5"}
}

func testCategory() registry.Category {
	return registry.Category{Slug: "fish", Label: "Fish", Path: "/tbl_fish.php"}
}

func TestClientFetchTableSuccess(t *testing.T) {
	var gotPath, gotRID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRID = r.URL.Query().Get("rid")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, Timeout: time.Second, UserAgent: "test"}, noopLogger())

	table, err := c.FetchTable(context.Background(), testRegion(), testCategory())
	if err != nil {
		t.Fatalf("FetchTable: %v", err)
	}
	if gotPath != "/tbl_fish.php" {
		t.Fatalf("path = %q, want category path", gotPath)
	}
	if gotRID != "5" {
		t.Fatalf("rid = %q, want region param", gotRID)
	}
	if len(table.Markets) != 3 || len(table.Rows) != 2 {
		t.Fatalf("parsed %d markets / %d rows", len(table.Markets), len(table.Rows))
	}
}

func TestClientFetchTableHTTPErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())

	_, err := c.FetchTable(context.Background(), testRegion(), testCategory())
	if err == nil {
		t.Fatal("HTTP 502 must return an error")
	}
	if !IsTransient(err) {
		t.Fatalf("HTTP failure should be transient, got %v", err)
	}
}

func TestClientFetchTableMissingGridIsNotTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>under maintenance</p></body></html>`))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, Timeout: time.Second}, noopLogger())

	_, err := c.FetchTable(context.Background(), testRegion(), testCategory())
	if !errors.Is(err, ErrNoTableFound) {
		t.Fatalf("err = %v, want ErrNoTableFound", err)
	}
	if IsTransient(err) {
		t.Fatal("structure change must not be treated as transient")
	}
}
