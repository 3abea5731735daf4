package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSearchSendsCredentialsAndDecodes(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/photos" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Client-ID key" {
			t.Errorf("Authorization = %q", got)
		}
		q := r.URL.Query()
		if q.Get("query") != "sunset" || q.Get("page") != "2" || q.Get("per_page") != "30" {
			t.Errorf("query = %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total":1,"total_pages":1,"results":[{"id":"abc","alt_description":"a sunset","urls":{"thumb":"t"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", time.Second)
	got, err := c.Search(context.Background(), "sunset", 2, 100)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got.Total != 1 || got.TotalPages != 1 || len(got.Results) != 1 || got.Results[0].ID != "abc" || got.Results[0].URLs.Thumb != "t" {
		t.Fatalf("result = %+v", got)
	}
}

func TestFailuresDegradeToEmpty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{name: "server error", handler: func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{name: "unauthorized", handler: func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusUnauthorized)
		}},
		{name: "bad json", handler: func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{not json`))
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			c := NewClient(srv.URL, "key", time.Second)

			res, err := c.Search(context.Background(), "x", 1, 10)
			if err == nil {
				t.Fatal("Search: expected error")
			}
			if res.Results == nil || len(res.Results) != 0 || res.Total != 0 {
				t.Fatalf("Search result = %+v, want empty", res)
			}

			images, err := c.Random(context.Background(), 5)
			if err == nil {
				t.Fatal("Random: expected error")
			}
			if images == nil || len(images) != 0 {
				t.Fatalf("Random = %v, want empty", images)
			}
		})
	}
}

func TestUnreachableProvider(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c := NewClient(addr, "key", time.Second)
	if _, err := c.Random(context.Background(), 3); err == nil {
		t.Fatal("expected error from closed server")
	}
}

func TestRandomDefaultsCount(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("count"); got != "24" {
			t.Errorf("count = %q, want 24", got)
		}
		w.Write([]byte(`[{"id":"1"},{"id":"2"}]`))
	}))
	defer srv.Close()

	images, err := NewClient(srv.URL, "key", time.Second).Random(context.Background(), 0)
	if err != nil {
		t.Fatalf("Random: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("images = %+v", images)
	}
}

func TestConcurrentIdenticalRequestsShareOneCall(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		w.Write([]byte(`{"total":0,"total_pages":0,"results":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", 5*time.Second)
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Search(context.Background(), "same", 1, 10); err != nil {
				t.Errorf("Search: %v", err)
			}
		}()
	}
	// Let every goroutine join the in-flight call before the server answers.
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Fatalf("upstream calls = %d, want 1", n)
	}
}

func TestConcurrentRandomRequestsEachReachUpstream(t *testing.T) {
	t.Parallel()

	const callers = 3
	var (
		calls   atomic.Int32
		once    sync.Once
		arrived = make(chan struct{})
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == callers {
			once.Do(func() { close(arrived) })
		}
		select {
		case <-arrived:
		case <-time.After(2 * time.Second):
		}
		w.Write([]byte(`[{"id":"r"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", 5*time.Second)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Random(context.Background(), 4); err != nil {
				t.Errorf("Random: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := calls.Load(); n != callers {
		t.Fatalf("upstream calls = %d, want %d", n, callers)
	}
}

func TestCanceledContextStopsWaiting(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res, err := NewClient(srv.URL, "key", 5*time.Second).Search(ctx, "slow", 1, 10)
	if err == nil {
		t.Fatal("expected context error")
	}
	if len(res.Results) != 0 {
		t.Fatalf("result = %+v", res)
	}
}
