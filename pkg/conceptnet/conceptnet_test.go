package conceptnet

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

const relatedBody = `{"@id": "/related/c/en/happy", "related": [
	{"@id": "/c/en/happy", "weight": 1.0},
	{"@id": "/c/en/joyful", "weight": 0.8},
	{"@id": "/c/en/glad/a", "weight": 0.7},
	{"@id": "/c/en/over_the_moon", "weight": 0.6},
	{"@id": "/c/en/Cheerful", "weight": 0.5},
	{"@id": "/c/en/joyful", "weight": 0.4}
]}`

const edgesBody = `{"edges": [
	{"start": {"label": "dark", "language": "en"}, "end": {"label": "night", "language": "en"}},
	{"start": {"label": "dark", "language": "en"}, "end": {"label": "sombre", "language": "fr"}},
	{"start": {"label": "shadow", "language": "en"}, "end": {"label": "dark", "language": "en"}}
]}`

func newFake(t *testing.T, body string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("filter") != "/c/en" {
			http.Error(w, "missing filter", http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, body)
	}))
}

func fastOptions(url string) Options {
	return Options{BaseURL: url, Timeout: time.Second, RatePerSec: 1000, Burst: 10}
}

func TestRelatedTerms(t *testing.T) {
	defer goleak.VerifyNone(t)

	var hits atomic.Int32
	server := newFake(t, relatedBody, &hits)
	defer server.Close()

	c := NewClient(fastOptions(server.URL))
	defer c.Close()

	got := c.RelatedTerms(context.Background(), " Happy ", 10)
	want := []string{"joyful", "glad", "cheerful"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RelatedTerms mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want[:2], c.RelatedTerms(context.Background(), "happy", 2)); diff != "" {
		t.Errorf("cached lookup must honour max (-want +got):\n%s", diff)
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}
}

func TestRelatedTermsEdges(t *testing.T) {
	defer goleak.VerifyNone(t)

	var hits atomic.Int32
	server := newFake(t, edgesBody, &hits)
	defer server.Close()

	c := NewClient(fastOptions(server.URL))
	defer c.Close()

	got := c.RelatedTerms(context.Background(), "dark", 0)
	if diff := cmp.Diff([]string{"night", "shadow"}, got); diff != "" {
		t.Errorf("edge labels mismatch (-want +got):\n%s", diff)
	}
}

func TestRelatedTermsFailOpen(t *testing.T) {
	defer goleak.VerifyNone(t)

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.URL.Path {
		case "/slow":
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		case "/garbage":
			fmt.Fprint(w, "{not json")
		default:
			http.Error(w, "boom", http.StatusBadGateway)
		}
	}))
	defer server.Close()

	opts := fastOptions(server.URL)
	opts.Timeout = 50 * time.Millisecond
	c := NewClient(opts)
	defer c.Close()

	testCases := []string{"slow", "garbage", "broken"}
	for _, term := range testCases {
		start := time.Now()
		if got := c.RelatedTerms(context.Background(), term, 5); len(got) != 0 {
			t.Errorf("%s: got %v, want empty", term, got)
		}
		if time.Since(start) > time.Second {
			t.Errorf("%s: lookup was not time-boxed", term)
		}
	}

	before := calls.Load()
	c.RelatedTerms(context.Background(), "broken", 5)
	if calls.Load() != before+1 {
		t.Error("failures must not be cached")
	}

	if got := c.RelatedTerms(context.Background(), "two words", 5); got != nil {
		t.Errorf("multiword terms are skipped, got %v", got)
	}
}

func TestRelatedTermsConcurrent(t *testing.T) {
	defer goleak.VerifyNone(t)

	var hits atomic.Int32
	server := newFake(t, relatedBody, &hits)
	defer server.Close()

	c := NewClient(fastOptions(server.URL))
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := c.RelatedTerms(context.Background(), "happy", 3); len(got) != 3 {
				t.Errorf("got %v", got)
			}
		}()
	}
	wg.Wait()
}

func TestNoop(t *testing.T) {
	var n Network = Noop{}
	if got := n.RelatedTerms(context.Background(), "happy", 5); got != nil {
		t.Errorf("Noop returned %v", got)
	}
}
