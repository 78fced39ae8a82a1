package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/qiangli/dataworks/internal/api"
	"github.com/qiangli/dataworks/internal/log"
)

const maxBodySize = 10 * 1024 * 1024

// Get fetches url and returns the response body.
// Non-2xx responses are errors.
func Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, api.Wrap(api.KindBadRequest, err, "invalid URL %q", url)
	}
	req.Header.Set("User-Agent", UserAgent())

	log.Infof("🌐 fetching url: %q\n", url)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching URL %q: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("error fetching URL %q: %s", url, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("error reading response for %q: %w", url, err)
	}
	return body, nil
}

// Select returns the text of every element matching selector, one per line.
func Select(html, selector string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("error parsing HTML: %v", err)
	}

	var lines []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			lines = append(lines, text)
		}
	})
	if len(lines) == 0 {
		return "", api.NewError(api.KindNotFound, "no element matches selector %q", selector)
	}
	return strings.Join(lines, "\n"), nil
}

func ExtractTextFromHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("error parsing HTML: %v", err)
	}
	return strings.TrimSpace(doc.Text()), nil
}
