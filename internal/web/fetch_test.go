package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/qiangli/dataworks/internal/api"
)

const page = `<html><head><title>Weather</title></head>
<body><h1>Today</h1><p class="temp">21 C</p><p class="temp">23 C</p></body></html>`

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("user agent not set")
		}
		w.Write([]byte(page))
	}))
	defer srv.Close()

	body, err := Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != page {
		t.Errorf("got %q", body)
	}

	if _, err := Get(context.Background(), srv.URL+"/missing"); err == nil {
		t.Errorf("expected error for 404")
	}
	if _, err := Get(context.Background(), "::not a url"); !api.IsKind(err, api.KindBadRequest) {
		t.Errorf("expected bad request, got %v", err)
	}
}

func TestSelect(t *testing.T) {
	got, err := Select(page, "p.temp")
	if err != nil {
		t.Fatal(err)
	}
	if got != "21 C\n23 C" {
		t.Errorf("got %q", got)
	}

	if _, err := Select(page, "table"); !api.IsKind(err, api.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestExtractTextFromHTML(t *testing.T) {
	got, err := ExtractTextFromHTML("<p> hello <b>world</b> </p>")
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello world" {
		t.Errorf("got %q", got)
	}
}
