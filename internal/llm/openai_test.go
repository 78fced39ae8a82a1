package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qiangli/dataworks/internal/api"
)

// chatServer answers chat completions with reply and records the last request body.
func chatServer(t *testing.T, reply string, body *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		if body != nil {
			*body = string(b)
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/chat/completions"):
			json.NewEncoder(w).Encode(map[string]any{
				"id":      "chatcmpl-test",
				"object":  "chat.completion",
				"created": 0,
				"model":   "test-model",
				"choices": []map[string]any{
					{
						"index":         0,
						"finish_reason": "stop",
						"message":       map[string]any{"role": "assistant", "content": reply},
					},
				},
			})
		case strings.HasSuffix(r.URL.Path, "/audio/transcriptions"):
			json.NewEncoder(w).Encode(map[string]any{"text": reply})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); !api.IsKind(err, api.KindConfig) {
		t.Fatalf("expected config error, got %v", err)
	}

	cfg = &Config{ApiKey: "sk-test", BaseUrl: "http://localhost:4000/v1"}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.BaseUrl != "http://localhost:4000/v1/" {
		t.Errorf("base url: %q", cfg.BaseUrl)
	}
	if cfg.Model != DefaultModel || cfg.AudioModel != DefaultAudioModel {
		t.Errorf("defaults not applied: %+v", cfg)
	}

	dry := &Config{DryRun: true}
	if err := dry.Validate(); err != nil {
		t.Errorf("dry run needs no key: %v", err)
	}
}

func TestSend(t *testing.T) {
	var body string
	srv := chatServer(t, "sender@example.com", &body)

	client, err := NewClient(&Config{ApiKey: "sk-test", BaseUrl: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	out, err := client.Send(context.Background(), "extract the sender", "From: sender@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if out != "sender@example.com" {
		t.Errorf("got %q", out)
	}
	if !strings.Contains(body, "From: sender@example.com") {
		t.Errorf("input missing from request: %s", body)
	}
}

func TestSendDryRun(t *testing.T) {
	client, err := NewClient(&Config{DryRun: true, DryRunContent: "canned", BaseUrl: "http://127.0.0.1:1/"})
	if err != nil {
		t.Fatal(err)
	}
	out, err := client.Send(context.Background(), "", "anything")
	if err != nil {
		t.Fatal(err)
	}
	if out != "canned" {
		t.Errorf("got %q", out)
	}
}

func TestTranscribe(t *testing.T) {
	srv := chatServer(t, "hello world", nil)

	audio := filepath.Join(t.TempDir(), "audio.mp3")
	if err := os.WriteFile(audio, []byte("ID3"), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(audio)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	client, err := NewClient(&Config{ApiKey: "sk-test", BaseUrl: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	text, err := client.Transcribe(context.Background(), f)
	if err != nil {
		t.Fatal(err)
	}
	if text != "hello world" {
		t.Errorf("got %q", text)
	}
}

func TestTryUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{`["a", "b"]`, []string{"a", "b"}},
		{"```json\n[\"a\", \"b\"]\n```", []string{"a", "b"}},
		{`["a", "b",]`, []string{"a", "b"}},
	}
	for _, tt := range tests {
		var got []string
		if err := TryUnmarshal(tt.in, &got); err != nil {
			t.Errorf("%q: %v", tt.in, err)
			continue
		}
		if len(got) != 2 || got[0] != tt.want[0] || got[1] != tt.want[1] {
			t.Errorf("%q: got %v", tt.in, got)
		}
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  4111 \n", "4111"},
		{"```\n4111\n```", "4111"},
		{"```text\nabc\n```\n", "abc"},
	}
	for _, tt := range tests {
		if got := Clean(tt.in); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
