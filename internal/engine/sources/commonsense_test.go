package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const csmBadgePage = `<html><body>
<div class="search-results">
  <div class="result">
    <span class="review-rating csm-green-label">7+</span>
    <a href="/tv-reviews/some-show">Some Show</a>
  </div>
  <div class="result">
    <span class="review-rating csm-green-label">12+</span>
    <a href="/tv-reviews/other-show">Other Show</a>
  </div>
</div>
</body></html>`

func TestCommonSenseLookupFindsBadge(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(csmBadgePage))
	}))
	t.Cleanup(srv.Close)

	lookup := NewCommonSenseLookup(srv.Client(), srv.URL+"/search/")
	age, ok := lookup(context.Background(), "Some Show")
	if !ok {
		t.Fatal("expected a badge match")
	}
	if age != 7 {
		t.Errorf("age = %d, want 7 (first badge wins)", age)
	}
	if gotPath != "/search/Some Show" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestCommonSenseLookupNoBadge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><span class="no-results">Nothing found</span></body></html>`))
	}))
	t.Cleanup(srv.Close)

	lookup := NewCommonSenseLookup(srv.Client(), srv.URL+"/search/")
	if _, ok := lookup(context.Background(), "Unknown Channel"); ok {
		t.Error("expected absent result without a badge")
	}
}

func TestCommonSenseLookupServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	lookup := NewCommonSenseLookup(srv.Client(), srv.URL+"/search/")
	if _, ok := lookup(context.Background(), "whatever"); ok {
		t.Error("expected absent result on non-200")
	}
}

func TestCommonSenseLookupIgnoresNonNumericBadge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><span class="csm-green-label">NR</span></body></html>`))
	}))
	t.Cleanup(srv.Close)

	lookup := NewCommonSenseLookup(srv.Client(), srv.URL+"/search/")
	if _, ok := lookup(context.Background(), "whatever"); ok {
		t.Error("expected absent result for a non-numeric badge")
	}
}
