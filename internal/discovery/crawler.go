package discovery

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sales-lead/leadgen-cli/internal/fetcher"
	"github.com/sales-lead/leadgen-cli/internal/model"
)

type crawlItem struct {
	url   string
	depth int
}

// deque is a double-ended queue of crawl items. Contact-looking links go
// to the front, everything else to the back, so the bounded crawl reaches
// contact pages before the page budget runs out.
type deque struct {
	items []crawlItem
}

func (d *deque) pushFront(it crawlItem) {
	d.items = append([]crawlItem{it}, d.items...)
}

func (d *deque) pushBack(it crawlItem) {
	d.items = append(d.items, it)
}

func (d *deque) popFront() (crawlItem, bool) {
	if len(d.items) == 0 {
		return crawlItem{}, false
	}
	it := d.items[0]
	d.items = d.items[1:]
	return it, true
}

func (d *deque) len() int {
	return len(d.items)
}

// Crawler performs a bounded, priority-ordered crawl of a single site.
type Crawler struct {
	fetcher  fetcher.Fetcher
	vocab    *Vocabulary
	maxPages int
	maxDepth int
}

// NewCrawler creates a Crawler bounded by maxPages collected and maxDepth
// link-following hops. A nil vocab uses the defaults.
func NewCrawler(f fetcher.Fetcher, vocab *Vocabulary, maxPages, maxDepth int) *Crawler {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	if maxPages <= 0 {
		maxPages = 6
	}
	if maxDepth < 0 {
		maxDepth = 0
	}
	return &Crawler{fetcher: f, vocab: vocab, maxPages: maxPages, maxDepth: maxDepth}
}

// Crawl fetches pages starting from startURL, strictly sequentially, in
// queue order. Fetch failures are skipped, never retried. Only same-host
// http(s) links are followed. The result reflects fetch order.
func (c *Crawler) Crawl(ctx context.Context, startURL string) []model.PageContent {
	visited := make(map[string]struct{})
	var results []model.PageContent

	queue := &deque{}
	queue.pushBack(crawlItem{url: startURL, depth: 0})

	baseHost := ""
	if u, err := url.Parse(startURL); err == nil {
		baseHost = u.Host
	}

	for queue.len() > 0 && len(results) < c.maxPages {
		if ctx.Err() != nil {
			break
		}

		item, ok := queue.popFront()
		if !ok {
			break
		}
		normalized := NormalizeURL(item.url)
		if _, seen := visited[normalized]; seen {
			continue
		}
		visited[normalized] = struct{}{}

		page, err := c.fetcher.Fetch(ctx, item.url)
		if err != nil {
			zap.L().Debug("crawler: fetch failed, skipping",
				zap.String("url", item.url),
				zap.Error(err),
			)
			continue
		}
		results = append(results, *page)

		if item.depth >= c.maxDepth {
			continue
		}
		c.discoverLinks(page, baseHost, item.depth+1, queue)
	}

	return results
}

// discoverLinks parses the page's anchors, resolves them against the
// page's final URL, and enqueues same-host http(s) links. Links whose href
// or anchor text contains a contact keyword jump the queue.
func (c *Crawler) discoverLinks(page *model.PageContent, baseHost string, depth int, queue *deque) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return
	}
	base, err := url.Parse(page.URL)
	if err != nil {
		return
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}
		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		if resolved.Host != baseHost {
			return
		}

		item := crawlItem{url: resolved.String(), depth: depth}
		haystack := strings.ToLower(href) + " " + strings.ToLower(sel.Text())
		if containsAny(haystack, c.vocab.Contact) {
			queue.pushFront(item)
		} else {
			queue.pushBack(item)
		}
	})
}

// NormalizeURL strips the fragment; the result is the crawl
// de-duplication key.
func NormalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.Fragment = ""
	return u.String()
}
