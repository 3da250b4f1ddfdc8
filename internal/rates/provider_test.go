package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newProviderForTest() *Provider {
	return NewProvider(2 * time.Second)
}

func TestFetchNestedRatesField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"USD","rates":{"USD":1,"EURO":0.9,"GBP":0.78}}`))
	}))
	defer srv.Close()

	table, ok := newProviderForTest().Fetch(context.Background(), srv.URL)
	if !ok {
		t.Fatalf("expected successful fetch")
	}
	if len(table) != 3 || table["EURO"] != 0.9 {
		t.Fatalf("unexpected table: %v", table)
	}
}

func TestFetchBareMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"USD":1,"ILS":3.4}`))
	}))
	defer srv.Close()

	table, ok := newProviderForTest().Fetch(context.Background(), srv.URL)
	if !ok {
		t.Fatalf("expected successful fetch")
	}
	if table["ILS"] != 3.4 {
		t.Fatalf("unexpected table: %v", table)
	}
}

func TestFetchDegradesToEmptyMap(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"rates": [not json`))
			},
		},
		{
			name: "wrong shape",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`["USD","EURO"]`))
			},
		},
		{
			name: "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{}`))
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			table, ok := newProviderForTest().Fetch(context.Background(), srv.URL)
			if ok {
				t.Fatalf("expected degraded fetch")
			}
			if len(table) != 0 {
				t.Fatalf("degraded fetch must return an empty map, got %v", table)
			}
		})
	}
}

func TestFetchUnreachableEndpoint(t *testing.T) {
	// Closed server: connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	table, ok := newProviderForTest().Fetch(context.Background(), url)
	if ok || len(table) != 0 {
		t.Fatalf("unreachable endpoint must degrade to empty map, got %v ok=%v", table, ok)
	}
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		_, _ = w.Write([]byte(`{"USD":1}`))
	}))
	defer srv.Close()

	p := NewProvider(50 * time.Millisecond)
	table, ok := p.Fetch(context.Background(), srv.URL)
	if ok || len(table) != 0 {
		t.Fatalf("slow endpoint must degrade to empty map, got %v ok=%v", table, ok)
	}
}
