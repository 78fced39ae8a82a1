package task

import (
	"context"
	"strings"

	"github.com/qiangli/dataworks/internal/api"
	"github.com/qiangli/dataworks/internal/llm"
	"github.com/qiangli/dataworks/internal/util"
)

const (
	emailPrompt = `Extract the sender's email address from the email below.
Reply with the address only, nothing else.`

	cardPrompt = `The image contains a test credit card with synthetic data.
Extract the card number. Reply with the digits only, nothing else.`

	similarPrompt = `Find the two comments below that are most similar in meaning.
Reply with a JSON array containing exactly the two comments, copied verbatim.`
)

func requireLLM(env *Env) error {
	if env.LLM == nil {
		return api.NewConfigError("language model is not configured")
	}
	return nil
}

// A7
func extractEmail(ctx context.Context, env *Env, _ string) (any, error) {
	if err := requireLLM(env); err != nil {
		return nil, err
	}
	data, err := env.FS.ReadFile("email.txt")
	if err != nil {
		return nil, err
	}
	reply, err := env.LLM.Send(ctx, emailPrompt, string(data))
	if err != nil {
		return nil, err
	}
	sender := llm.Clean(reply)
	if err := env.FS.WriteFile("email-sender.txt", []byte(sender)); err != nil {
		return nil, err
	}
	return sender, nil
}

// A8
func extractCreditCard(ctx context.Context, env *Env, _ string) (any, error) {
	if err := requireLLM(env); err != nil {
		return nil, err
	}
	const input = "credit_card.png"
	data, err := env.FS.ReadFile(input)
	if err != nil {
		return nil, err
	}
	reply, err := env.LLM.SendImage(ctx, cardPrompt, util.MimeType(input), data)
	if err != nil {
		return nil, err
	}
	number := strings.Join(strings.Fields(llm.Clean(reply)), "")
	if err := env.FS.WriteFile("credit-card.txt", []byte(number)); err != nil {
		return nil, err
	}
	return number, nil
}

// A9
func similarComments(ctx context.Context, env *Env, _ string) (any, error) {
	if err := requireLLM(env); err != nil {
		return nil, err
	}
	data, err := env.FS.ReadFile("comments.txt")
	if err != nil {
		return nil, err
	}
	var comments []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			comments = append(comments, line)
		}
	}
	if len(comments) < 2 {
		return nil, api.NewBadRequestError("comments.txt needs at least two comments, found %d", len(comments))
	}

	reply, err := env.LLM.Send(ctx, similarPrompt, strings.Join(comments, "\n"))
	if err != nil {
		return nil, err
	}
	var pair []string
	if err := llm.TryUnmarshal(llm.Clean(reply), &pair); err != nil {
		return nil, api.Wrap(api.KindExecution, err, "unexpected reply %q", reply)
	}
	if len(pair) != 2 {
		return nil, api.NewError(api.KindExecution, "expected two comments, got %d", len(pair))
	}
	if err := env.FS.WriteFile("comments-similar.txt", []byte(strings.Join(pair, "\n"))); err != nil {
		return nil, err
	}
	return pair, nil
}

// B8
func transcribeAudio(ctx context.Context, env *Env, arg string) (any, error) {
	if err := requireLLM(env); err != nil {
		return nil, err
	}
	args, err := splitArgs(arg)
	if err != nil {
		return nil, err
	}
	input := argAt(args, 0, "audio.mp3")
	output := argAt(args, 1, "transcription.txt")

	f, err := env.FS.Open(input)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	text, err := env.LLM.Transcribe(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := env.FS.WriteFile(output, []byte(text)); err != nil {
		return nil, err
	}
	return text, nil
}
