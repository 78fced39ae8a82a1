package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/qiangli/dataworks/internal/api"
	"github.com/qiangli/dataworks/internal/log"
)

// https://github.com/openai/openai-go/tree/main/examples

// Client calls an OpenAI compatible endpoint.
type Client struct {
	cfg    *Config
	client openai.Client
}

// NewClient validates cfg and creates a client that never retries.
func NewClient(cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := openai.NewClient(
		option.WithAPIKey(cfg.ApiKey),
		option.WithBaseURL(cfg.BaseUrl),
		option.WithMaxRetries(0),
		option.WithMiddleware(Middleware(cfg.DryRun, cfg.DryRunContent)),
	)
	return &Client{
		cfg:    cfg,
		client: client,
	}, nil
}

// Send asks the chat model with an optional system instruction and returns the reply text.
func (r *Client) Send(ctx context.Context, instruction, input string) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if instruction != "" {
		messages = append(messages, openai.SystemMessage(instruction))
	}
	messages = append(messages, openai.UserMessage(input))

	log.Debugf(">>>SYSTEM:\n%s\n", instruction)
	log.Debugf(">>>USER:\n%s\n", input)

	return r.complete(ctx, messages)
}

// SendImage asks the chat model about an image passed inline as a data URL.
func (r *Client) SendImage(ctx context.Context, instruction, mimeType string, image []byte) (string, error) {
	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(instruction),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: dataURL(mimeType, image),
		}),
	}
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage(parts),
	}

	log.Debugf(">>>USER:\n%s [%s %v bytes]\n", instruction, mimeType, len(image))

	return r.complete(ctx, messages)
}

func (r *Client) complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: messages,
		Seed:     openai.Int(0),
		Model:    openai.ChatModel(r.cfg.Model),
	}

	completion, err := r.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", api.Wrap(api.KindExecution, err, "chat completion")
	}
	if len(completion.Choices) == 0 {
		return "", api.NewError(api.KindExecution, "chat completion: empty response from %s", r.cfg.Model)
	}
	content := completion.Choices[0].Message.Content

	log.Debugf("<<<OPENAI:\nmodel: %s, content length: %v\n\n", r.cfg.Model, len(content))
	return content, nil
}

// Transcribe converts the speech in file to text.
func (r *Client) Transcribe(ctx context.Context, file *os.File) (string, error) {
	log.Debugf(">>>AUDIO: %s model: %s\n", file.Name(), r.cfg.AudioModel)

	transcription, err := r.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: openai.AudioModel(r.cfg.AudioModel),
		File:  file,
	})
	if err != nil {
		return "", api.Wrap(api.KindExecution, err, "transcription")
	}

	log.Debugf("<<<AUDIO: text length: %v\n", len(transcription.Text))
	return transcription.Text, nil
}

// https://developer.mozilla.org/en-US/docs/Web/URI/Reference/Schemes/data
// data:[<media-type>][;base64],<data>
func dataURL(mime string, raw []byte) string {
	encoded := base64.StdEncoding.EncodeToString(raw)
	return fmt.Sprintf("data:%s;base64,%s", mime, encoded)
}

// Clean strips surrounding whitespace and a markdown code fence, if the model added one.
func Clean(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// drop the language tag line
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
