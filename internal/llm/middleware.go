package llm

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httputil"
	"strings"
	"time"

	"github.com/openai/openai-go/option"

	"github.com/qiangli/dataworks/internal/log"
)

type stringReadCloser struct {
	io.Reader
}

func (stringReadCloser) Close() error {
	return nil
}

func NewStringReadCloser(s string) io.ReadCloser {
	return stringReadCloser{strings.NewReader(s)}
}

func Middleware(dryRun bool, dryRunContent string) option.Middleware {
	return func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		start := time.Now()

		if log.IsTrace() {
			reqData, _ := httputil.DumpRequest(req, true)
			log.Debugln(">>>REQUEST:\n", string(reqData))
		}

		var resp *http.Response
		var err error

		if dryRun {
			resp = fake(req, dryRunContent)
		} else {
			resp, err = next(req)
		}

		if log.IsTrace() && resp != nil {
			resData, _ := httputil.DumpResponse(resp, true)
			log.Debugln("<<<RESPONSE:\n", string(resData))
		}

		took := time.Since(start).Milliseconds()
		var status int
		if resp != nil {
			status = resp.StatusCode
		}
		log.Debugf("Status: %d, %s request for %s took %dms\n", status, req.Method, req.URL, took)

		return resp, err
	}
}

// fake answers chat and transcription calls with content without reaching the network.
func fake(req *http.Request, content string) *http.Response {
	var body any
	if strings.HasSuffix(req.URL.Path, "/audio/transcriptions") {
		body = map[string]any{
			"text": content,
		}
	} else {
		body = map[string]any{
			"id":      "dry-run",
			"object":  "chat.completion",
			"created": time.Now().Unix(),
			"model":   "dry-run",
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]any{
						"role":    "assistant",
						"content": content,
					},
				},
			},
		}
	}
	data, _ := json.Marshal(body)

	headers := make(http.Header)
	headers.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     headers,
		Body:       NewStringReadCloser(string(data)),
		Request:    req,
	}
}
