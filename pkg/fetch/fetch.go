// Package fetch renders target pages in headless Chrome and hands the
// detector ensemble the full HTML, the visible text, and a screenshot.
// A shared browser process is reused across pages; a rate limiter spaces
// out navigations so target sites are not hammered.
package fetch

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/dorkscan/dorkscan/pkg/defaults"
	"github.com/dorkscan/dorkscan/pkg/detect"
)

// Config controls browser behavior.
type Config struct {
	Headless  bool
	Timeout   time.Duration
	RateDelay time.Duration
}

// DefaultConfig returns a headless configuration with standard timeouts.
func DefaultConfig() *Config {
	return &Config{
		Headless:  true,
		Timeout:   defaults.FetchTimeout,
		RateDelay: defaults.RateLimitDelay,
	}
}

// Browser fetches pages through a persistent headless Chrome instance.
// The browser is started lazily on first Fetch. Safe for concurrent use:
// Fetch, Close, and the restart after Close may be called from any
// goroutine.
type Browser struct {
	config  *Config
	limiter *rate.Limiter

	mu          sync.Mutex
	allocCtx    context.Context
	allocCancel context.CancelFunc
	browserCtx  context.Context
	cancel      context.CancelFunc
}

// NewBrowser creates a fetcher. Pass nil for defaults.
func NewBrowser(config *Config) *Browser {
	if config == nil {
		config = DefaultConfig()
	}
	return &Browser{
		config:  config,
		limiter: rate.NewLimiter(rate.Every(config.RateDelay), 1),
	}
}

// acquire returns the shared browser context, starting the browser on
// first use or after a Close.
func (b *Browser) acquire() context.Context {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browserCtx == nil {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", b.config.Headless),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.WindowSize(defaults.ViewportWidth, defaults.ViewportHeight),
		)
		b.allocCtx, b.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
		b.browserCtx, b.cancel = chromedp.NewContext(b.allocCtx)
	}
	return b.browserCtx
}

// Fetch renders the URL and returns its content. Returns nil on any
// failure: an unreachable or slow page is skipped, not fatal. A failed
// screenshot still yields text content.
func (b *Browser) Fetch(ctx context.Context, url string) *detect.Content {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil
	}

	pageCtx, cancel := context.WithTimeout(b.acquire(), b.config.Timeout)
	defer cancel()

	var pageHTML string
	err := chromedp.Run(pageCtx,
		chromedp.Navigate(url),
		chromedp.OuterHTML("html", &pageHTML),
	)
	if err != nil {
		return nil
	}

	var screenshot []byte
	_ = chromedp.Run(pageCtx, chromedp.CaptureScreenshot(&screenshot))

	return &detect.Content{
		URL:        url,
		HTML:       pageHTML,
		Text:       ExtractText(pageHTML),
		Screenshot: screenshot,
	}
}

// Close shuts down the browser process. Safe to call without a prior Fetch
// and from any goroutine; a later Fetch restarts the browser.
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	if b.allocCancel != nil {
		b.allocCancel()
		b.allocCancel = nil
	}
	b.browserCtx = nil
	b.allocCtx = nil
}

// ExtractText returns the visible text of an HTML document: scripts,
// styles, and markup stripped, text nodes joined by single spaces.
func ExtractText(pageHTML string) string {
	root, err := html.Parse(strings.NewReader(pageHTML))
	if err != nil {
		return ""
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, strings.Join(strings.Fields(text), " "))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return strings.Join(parts, " ")
}
