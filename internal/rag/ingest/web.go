package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/akolanti/AITutor/internal/config"
	"github.com/go-shiori/go-readability"
)

var (
	ErrEmptyURL   = errors.New("empty url")
	ErrInvalidURL = errors.New("invalid url format")
)

// ValidateURL accepts only absolute http(s) URLs with a host.
func ValidateURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyURL
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return nil, ErrInvalidURL
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, ErrInvalidURL
	}
	return u, nil
}

type WebPage struct {
	URL   string
	Title string
	Text  string
}

// Fetcher downloads a page and reduces it to its readable text.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL *url.URL) (WebPage, error)
}

type httpFetcher struct {
	client *http.Client
}

func NewHTTPFetcher(client *http.Client) Fetcher {
	return &httpFetcher{client: client}
}

func (f *httpFetcher) Fetch(ctx context.Context, pageURL *url.URL) (WebPage, error) {
	log := logger.WithTrace(ctx).With("url", pageURL.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return WebPage{}, err
	}
	req.Header.Set("User-Agent", config.WebUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		log.Error("fetch failed", "error", err)
		return WebPage{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return WebPage{}, fmt.Errorf("fetching %s: %s", pageURL, resp.Status)
	}

	article, err := readability.FromReader(io.LimitReader(resp.Body, config.WebMaxBodyBytes), pageURL)
	if err != nil {
		log.Error("readability failed", "error", err)
		return WebPage{}, fmt.Errorf("parsing %s: %w", pageURL, err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return WebPage{}, ErrNoText
	}
	log.Debug("page fetched", "title", article.Title, "length", len(text))
	return WebPage{
		URL:   pageURL.String(),
		Title: strings.TrimSpace(article.Title),
		Text:  text,
	}, nil
}
