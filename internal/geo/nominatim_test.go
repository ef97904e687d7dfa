package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResolveComposesAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Path; got != "/reverse" {
			t.Errorf("path = %q", got)
		}
		q := r.URL.Query()
		if q.Get("format") != "json" || q.Get("zoom") != "18" || q.Get("addressdetails") != "1" {
			t.Errorf("query = %v", q)
		}
		if ua := r.Header.Get("User-Agent"); ua != "test-agent" {
			t.Errorf("user agent = %q", ua)
		}
		w.Write([]byte(`{
			"display_name": "long form",
			"address": {"road": "вулиця Хрещатик", "house_number": "1", "suburb": "Печерський", "city": "Київ"}
		}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, UserAgent: "test-agent"})
	addr, ok := c.Resolve(context.Background(), 50.4501, 30.5234)
	if !ok {
		t.Fatal("resolve failed")
	}
	if want := "вулиця Хрещатик, 1, Печерський, Київ"; addr != want {
		t.Fatalf("addr = %q, want %q", addr, want)
	}
}

func TestResolveFallsBackToDisplayName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"display_name": "Десь у полі, Україна", "address": {}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, UserAgent: "test-agent"})
	addr, ok := c.Resolve(context.Background(), 48.0, 31.0)
	if !ok || addr != "Десь у полі, Україна" {
		t.Fatalf("addr = %q, ok = %v", addr, ok)
	}
}

func TestResolveFailsClosed(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()
		c := NewClient(Config{BaseURL: srv.URL, UserAgent: "test-agent"})
		if _, ok := c.Resolve(context.Background(), 1, 2); ok {
			t.Fatal("ok on 503")
		}
	})

	t.Run("bad json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer srv.Close()
		c := NewClient(Config{BaseURL: srv.URL, UserAgent: "test-agent"})
		if _, ok := c.Resolve(context.Background(), 1, 2); ok {
			t.Fatal("ok on garbage body")
		}
	})

	t.Run("empty result", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"display_name": "", "address": {}}`))
		}))
		defer srv.Close()
		c := NewClient(Config{BaseURL: srv.URL, UserAgent: "test-agent"})
		if _, ok := c.Resolve(context.Background(), 1, 2); ok {
			t.Fatal("ok on empty address")
		}
	})

	t.Run("unreachable host", func(t *testing.T) {
		c := NewClient(Config{BaseURL: "http://127.0.0.1:1", UserAgent: "test-agent"})
		if _, ok := c.Resolve(context.Background(), 1, 2); ok {
			t.Fatal("ok on connection error")
		}
	})
}
