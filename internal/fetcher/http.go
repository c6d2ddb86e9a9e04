package fetcher

import (
	"context"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/sales-lead/leadgen-cli/internal/model"
)

// Options configures the HTTP fetcher.
type Options struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	// PerHostRate limits requests per second against a single host, to keep
	// the crawl polite. Zero uses the default of 4 req/s.
	PerHostRate  rate.Limit
	PerHostBurst int
}

const maxBodyBytes = 2 * 1024 * 1024

// HTTPFetcher implements Fetcher using net/http with bounded retries and
// per-host rate limiting.
type HTTPFetcher struct {
	client *http.Client
	opts   Options

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHTTP creates an HTTPFetcher with the given options.
func NewHTTP(opts Options) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 2
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "leadgen-cli/1.0"
	}
	if opts.PerHostRate == 0 {
		opts.PerHostRate = 4
	}
	if opts.PerHostBurst == 0 {
		opts.PerHostBurst = 4
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:     opts,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (f *HTTPFetcher) limiterFor(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	lim, ok := f.limiters[host]
	if !ok {
		lim = rate.NewLimiter(f.opts.PerHostRate, f.opts.PerHostBurst)
		f.limiters[host] = lim
	}
	return lim
}

// Fetch retrieves the URL, following redirects, and returns the page with
// its final URL, raw HTML, and whitespace-normalized visible text.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*model.PageContent, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: parse url %s", rawURL)
	}

	resp, err := f.doWithRetry(ctx, rawURL, u.Host)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, eris.Errorf("fetch: status %d from %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: read body %s", rawURL)
	}

	rawHTML := string(body)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: parse html %s", rawURL)
	}

	return &model.PageContent{
		URL:  resp.Request.URL.String(),
		HTML: rawHTML,
		Text: visibleText(doc),
	}, nil
}

func (f *HTTPFetcher) doWithRetry(ctx context.Context, rawURL, host string) (*http.Response, error) {
	lim := f.limiterFor(host)

	var lastErr error
	for attempt := range f.opts.MaxRetries + 1 {
		if err := lim.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "fetch: rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "fetch: create request")
		}
		req.Header.Set("User-Agent", f.opts.UserAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			lastErr = err
			zap.L().Debug("fetch: request failed, retrying",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt+1),
				zap.Error(err),
			)
			f.backoff(ctx, attempt)
			continue
		}

		// Retry transient server-side failures; everything else is the
		// caller's to judge by status code.
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			_ = resp.Body.Close()
			lastErr = eris.Errorf("fetch: status %d from %s", resp.StatusCode, rawURL)
			zap.L().Debug("fetch: transient status, retrying",
				zap.String("url", rawURL),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt+1),
			)
			f.backoff(ctx, attempt)
			continue
		}

		return resp, nil
	}

	return nil, eris.Wrap(lastErr, "fetch: all retries exhausted")
}

func (f *HTTPFetcher) backoff(ctx context.Context, attempt int) {
	base := 500 * time.Millisecond
	maxBackoff := 10 * time.Second
	d := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	if d > maxBackoff {
		d = maxBackoff
	}
	d += time.Duration(rand.Int64N(int64(d) / 2))

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// visibleText extracts the document's visible text with scripts and styles
// removed, collapsing all whitespace runs to single spaces. Text nodes are
// joined with spaces so element boundaries never fuse adjacent tokens.
func visibleText(doc *goquery.Document) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
