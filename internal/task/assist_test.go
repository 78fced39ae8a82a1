package task

import (
	"context"
	"strings"
	"testing"

	"github.com/qiangli/dataworks/internal/api"
	"github.com/qiangli/dataworks/internal/llm"
)

func TestExtractEmail(t *testing.T) {
	env, model := newTestEnv(t, "  sender@example.com\n")
	writeFile(t, env, "email.txt", "From: Sender <sender@example.com>\nTo: you@example.com\n\nhi")

	resp := NewDispatcher(env, nil).RunID(context.Background(), "A7", "")
	if resp.Status != api.StatusSuccess || resp.Result != "sender@example.com" {
		t.Fatalf("%+v", resp)
	}
	if !strings.Contains(model.input, "From: Sender") {
		t.Errorf("email not sent to model: %q", model.input)
	}
	if got := readFile(t, env, "email-sender.txt"); got != "sender@example.com" {
		t.Errorf("file: %q", got)
	}
}

func TestExtractCreditCard(t *testing.T) {
	env, model := newTestEnv(t, "4111 1111 1111 1111")
	writeFile(t, env, "credit_card.png", "\x89PNG fake")

	resp := NewDispatcher(env, nil).RunID(context.Background(), "A8", "")
	if resp.Status != api.StatusSuccess || resp.Result != "4111111111111111" {
		t.Fatalf("%+v", resp)
	}
	if model.mimeType != "image/png" || string(model.image) != "\x89PNG fake" {
		t.Errorf("image not sent: %q %q", model.mimeType, model.image)
	}
	if got := readFile(t, env, "credit-card.txt"); got != "4111111111111111" {
		t.Errorf("file: %q", got)
	}
}

func TestSimilarComments(t *testing.T) {
	tests := []struct {
		reply string
		ok    bool
	}{
		{`["I love it", "I really love it"]`, true},
		{"```json\n[\"I love it\", \"I really love it\"]\n```", true},
		// trailing comma repaired
		{`["I love it", "I really love it",]`, true},
		{`["only one"]`, false},
	}

	for _, tt := range tests {
		env, model := newTestEnv(t, tt.reply)
		writeFile(t, env, "comments.txt", "I love it\n\nTerrible\nI really love it\n")

		resp := NewDispatcher(env, nil).RunID(context.Background(), "A9", "")
		if !tt.ok {
			if resp.Kind != api.KindExecution {
				t.Errorf("%q: expected execution error, got %+v", tt.reply, resp)
			}
			continue
		}
		if resp.Status != api.StatusSuccess {
			t.Fatalf("%q: %+v", tt.reply, resp)
		}
		if model.input != "I love it\nTerrible\nI really love it" {
			t.Errorf("input: %q", model.input)
		}
		if got := readFile(t, env, "comments-similar.txt"); got != "I love it\nI really love it" {
			t.Errorf("file: %q", got)
		}
	}
}

func TestSimilarCommentsTooFew(t *testing.T) {
	env, _ := newTestEnv(t, "")
	writeFile(t, env, "comments.txt", "lonely\n")
	resp := NewDispatcher(env, nil).RunID(context.Background(), "A9", "")
	if resp.Kind != api.KindBadRequest {
		t.Errorf("expected bad request, got %+v", resp)
	}
}

func TestTranscribeAudio(t *testing.T) {
	env, model := newTestEnv(t, "hello world")
	writeFile(t, env, "audio/talk.mp3", "ID3")

	resp := NewDispatcher(env, nil).RunID(context.Background(), "B8", "audio/talk.mp3 out/talk.txt")
	if resp.Status != api.StatusSuccess || resp.Result != "hello world" {
		t.Fatalf("%+v", resp)
	}
	if !strings.HasSuffix(model.input, "talk.mp3") {
		t.Errorf("file: %q", model.input)
	}
	if got := readFile(t, env, "out/talk.txt"); got != "hello world" {
		t.Errorf("file: %q", got)
	}
}

func TestLLMNotConfigured(t *testing.T) {
	env, _ := newTestEnv(t, "")
	env.LLM = nil
	writeFile(t, env, "email.txt", "From: a@b")

	d := NewDispatcher(env, nil)
	if resp := d.RunID(context.Background(), "A7", ""); resp.Kind != api.KindConfig {
		t.Errorf("expected config error, got %+v", resp)
	}
	if resp := d.RunText(context.Background(), "what is the meaning of life"); resp.Kind != api.KindConfig {
		t.Errorf("expected config error, got %+v", resp)
	}
}

func TestDryRunClient(t *testing.T) {
	client, err := llm.NewClient(&llm.Config{DryRun: true, DryRunContent: "extracted@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	env, _ := newTestEnv(t, "")
	env.LLM = client
	writeFile(t, env, "email.txt", "From: someone")

	resp := NewDispatcher(env, nil).RunID(context.Background(), "A7", "")
	if resp.Status != api.StatusSuccess || resp.Result != "extracted@example.com" {
		t.Errorf("%+v", resp)
	}
}
