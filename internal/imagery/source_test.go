package imagery

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"
)

var testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

// fakeLoader returns a fixed-size image for any URL, or an error for URLs in
// its reject set.
type fakeLoader struct {
	width, height int
	reject        map[string]bool
	loaded        []string
}

func (l *fakeLoader) Load(_ context.Context, url string) (image.Image, error) {
	if l.reject[url] {
		return nil, errors.New("decode failed")
	}
	l.loaded = append(l.loaded, url)
	return image.NewRGBA(image.Rect(0, 0, l.width, l.height)), nil
}

func testDeps(client *http.Client, loader Loader) Deps {
	return Deps{Client: client, Loader: loader, Logger: testLogger}
}

func TestCandidateListFirstSuccessWins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/hires/full_disk_20250812-2310.jpg":
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	src := &CandidateList{
		Satellite: "goes-west",
		URLs: []string{
			server.URL + "/hires/full_disk_20250812-2310.jpg",
			server.URL + "/lowres/full_disk_20250812-2310.jpg",
		},
	}

	loader := &fakeLoader{width: 1080, height: 1080}
	got := src.RecentImage(context.Background(), testDeps(server.Client(), loader))
	if got == nil {
		t.Fatal("expected a resolved image, got nil")
	}

	want := time.Date(2025, 8, 12, 23, 10, 0, 0, time.UTC)
	if !got.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", got.Timestamp, want)
	}
	if len(loader.loaded) != 1 {
		t.Errorf("loader called %d times, want 1 (stop at first success)", len(loader.loaded))
	}
}

func TestCandidateListFallsThroughFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/backup/disk_20250812-2310.jpg" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	src := &CandidateList{
		Satellite: "goes-east",
		URLs: []string{
			server.URL + "/primary/disk.jpg",
			server.URL + "/backup/disk_20250812-2310.jpg",
		},
	}

	got := src.RecentImage(context.Background(), testDeps(server.Client(), &fakeLoader{width: 678, height: 678}))
	if got == nil {
		t.Fatal("expected fallback candidate to resolve")
	}
	if got.URL != server.URL+"/backup/disk_20250812-2310.jpg" {
		t.Errorf("resolved URL = %q", got.URL)
	}
}

func TestCandidateListRedirectTimestamp(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/latest.jpg", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/fd/20250812-231045.jpg", http.StatusFound)
	})
	mux.HandleFunc("/fd/20250812-231045.jpg", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	src := &CandidateList{Satellite: "goes-west", URLs: []string{server.URL + "/latest.jpg"}}
	got := src.RecentImage(context.Background(), testDeps(server.Client(), &fakeLoader{width: 10, height: 10}))
	if got == nil {
		t.Fatal("expected a resolved image")
	}

	// The timestamp comes from the redirected filename, and the image is
	// loaded from the final URL.
	want := time.Date(2025, 8, 12, 23, 10, 45, 0, time.UTC)
	if !got.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", got.Timestamp, want)
	}
	if got.URL != server.URL+"/fd/20250812-231045.jpg" {
		t.Errorf("resolved URL = %q", got.URL)
	}
}

func TestCandidateListLastModifiedFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Last-Modified", "Tue, 12 Aug 2025 23:10:00 GMT")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	src := &CandidateList{Satellite: "meteosat", URLs: []string{server.URL + "/latest_full_disk.jpg"}}
	got := src.RecentImage(context.Background(), testDeps(server.Client(), &fakeLoader{width: 10, height: 10}))
	if got == nil {
		t.Fatal("expected a resolved image")
	}

	want := time.Date(2025, 8, 12, 23, 10, 0, 0, time.UTC)
	if !got.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", got.Timestamp, want)
	}
}

func TestCandidateListNowFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	before := time.Now().UTC()
	src := &CandidateList{Satellite: "gk2a", URLs: []string{server.URL + "/latest.jpg"}}
	got := src.RecentImage(context.Background(), testDeps(server.Client(), &fakeLoader{width: 10, height: 10}))
	if got == nil {
		t.Fatal("expected a resolved image")
	}
	after := time.Now().UTC()

	if got.Timestamp.Before(before) || got.Timestamp.After(after) {
		t.Errorf("timestamp %v not in [%v, %v]", got.Timestamp, before, after)
	}
}

func TestCandidateListAllFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	src := &CandidateList{Satellite: "goes-east", URLs: []string{server.URL + "/a.jpg", server.URL + "/b.jpg"}}
	if got := src.RecentImage(context.Background(), testDeps(server.Client(), &fakeLoader{width: 10, height: 10})); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestCandidateListSkipsUndecodableImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	primary := server.URL + "/primary_20250812-2310.jpg"
	backup := server.URL + "/backup_20250812-2310.jpg"
	loader := &fakeLoader{width: 10, height: 10, reject: map[string]bool{primary: true}}

	src := &CandidateList{Satellite: "goes-west", URLs: []string{primary, backup}}
	got := src.RecentImage(context.Background(), testDeps(server.Client(), loader))
	if got == nil {
		t.Fatal("expected backup candidate to resolve")
	}
	if got.URL != backup {
		t.Errorf("resolved URL = %q, want backup", got.URL)
	}
}

const listingHTML = `<html><body><pre>
<a href="himawari9-20252232250-fd.png">himawari9-20252232250-fd.png</a>
<a href="himawari9-20252242310-fd.png">himawari9-20252242310-fd.png</a>
<a href="himawari9-20252242300-fd.png">himawari9-20252242300-fd.png</a>
<a href="thumbnail.png">thumbnail.png</a>
</pre></body></html>`

func TestDirectoryListingPicksLatest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/fd/" || r.URL.Path == "/fd" {
			w.Write([]byte(listingHTML))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	src := &DirectoryListing{
		Satellite: "himawari-9",
		URL:       server.URL + "/fd",
		Pattern:   regexp.MustCompile(`himawari9-\d{11}-fd\.png`),
	}

	got := src.RecentImage(context.Background(), testDeps(server.Client(), &fakeLoader{width: 1100, height: 1100}))
	if got == nil {
		t.Fatal("expected a resolved image")
	}

	if got.URL != server.URL+"/fd/himawari9-20252242310-fd.png" {
		t.Errorf("resolved URL = %q", got.URL)
	}
	// 2025 day 224 = August 12.
	want := time.Date(2025, 8, 12, 23, 10, 0, 0, time.UTC)
	if !got.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", got.Timestamp, want)
	}
}

func TestDirectoryListingNoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>empty index</body></html>"))
	}))
	defer server.Close()

	src := &DirectoryListing{
		Satellite: "himawari-9",
		URL:       server.URL + "/fd",
		Pattern:   regexp.MustCompile(`himawari9-\d{11}-fd\.png`),
	}
	if got := src.RecentImage(context.Background(), testDeps(server.Client(), &fakeLoader{width: 10, height: 10})); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestDirectoryListingFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	src := &DirectoryListing{
		Satellite: "himawari-9",
		URL:       server.URL + "/fd",
		Pattern:   regexp.MustCompile(`himawari9-\d{11}-fd\.png`),
	}
	if got := src.RecentImage(context.Background(), testDeps(server.Client(), &fakeLoader{width: 10, height: 10})); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}
