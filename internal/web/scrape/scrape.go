// https://github.com/tmc/langchaingo/blob/main/tools/scraper/scraper.go
// https://github.com/tmc/langchaingo?tab=MIT-1-ov-file#readme
package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly"
	"github.com/weppos/publicsuffix-go/publicsuffix"

	"github.com/qiangli/dataworks/internal/web"
)

const (
	DefaultParallels = 2
	DefaultDelay     = 0
	DefaultAsync     = true
)

var ErrScrapingFailed = errors.New("scraper could not read URL, or scraping is not allowed for provided URL")

type Scraper struct {
	Parallels int
	Delay     time.Duration
	Async     bool
	UserAgent string
}

type Options func(*Scraper)

func WithDelay(d time.Duration) Options {
	return func(s *Scraper) {
		s.Delay = d
	}
}

func WithUserAgent(ua string) Options {
	return func(s *Scraper) {
		s.UserAgent = ua
	}
}

func New(options ...Options) *Scraper {
	scraper := &Scraper{
		Parallels: DefaultParallels,
		Delay:     DefaultDelay,
		Async:     DefaultAsync,
		UserAgent: web.UserAgent(),
	}
	for _, opt := range options {
		opt(scraper)
	}
	return scraper
}

// Fetch visits a single page and summarizes its title, description,
// headers and paragraphs as plain text.
func (s *Scraper) Fetch(ctx context.Context, input string) (string, error) {
	u, err := url.ParseRequestURI(input)
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrScrapingFailed, err)
	}

	allowedDomains := []string{u.Hostname(), u.Host}

	// Extract the effective second-level domain
	if domain, err := publicsuffix.Domain(u.Hostname()); err == nil {
		allowedDomains = append(allowedDomains, domain, fmt.Sprintf("*.%s", domain))
	}

	c := colly.NewCollector(
		colly.MaxDepth(1),
		colly.Async(s.Async),
		colly.UserAgent(s.UserAgent),
		colly.AllowedDomains(allowedDomains...),
	)

	err = c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: s.Parallels,
		Delay:       s.Delay,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrScrapingFailed, err)
	}

	var siteData strings.Builder
	var visitErr error

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		visitErr = err
	})

	c.OnHTML("html", func(e *colly.HTMLElement) {
		siteData.WriteString("Page URL: " + e.Request.URL.String())

		title := e.ChildText("title")
		if title != "" {
			siteData.WriteString("\nPage Title: " + title)
		}

		description := e.ChildAttr("meta[name=description]", "content")
		if description != "" {
			siteData.WriteString("\nPage Description: " + description)
		}

		siteData.WriteString("\nHeaders:")
		e.ForEach("h1, h2, h3, h4, h5, h6", func(_ int, el *colly.HTMLElement) {
			siteData.WriteString("\n" + strings.TrimSpace(el.Text))
		})

		siteData.WriteString("\nContent:")
		e.ForEach("p", func(_ int, el *colly.HTMLElement) {
			siteData.WriteString("\n" + strings.TrimSpace(el.Text))
		})
	})

	if err := c.Visit(u.String()); err != nil {
		return "", fmt.Errorf("%s: %w", ErrScrapingFailed, err)
	}

	c.Wait()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if visitErr != nil {
		return "", fmt.Errorf("%s: %w", ErrScrapingFailed, visitErr)
	}
	return siteData.String(), nil
}
