package source

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
)

const (
	defaultTimeout = 15 * time.Second
	// maxParallelism caps concurrent requests in GetAll.
	maxParallelism = 5
)

// UserAgent identifies reelscout to the movie sources.
const UserAgent = "reelscout (+https://github.com/Gaurav-Gosain/reelscout)"

// Fetcher issues GET requests for JSON documents through colly.
type Fetcher struct {
	Timeout   time.Duration
	UserAgent string
}

// FetchResult is the outcome of one request made by GetAll.
type FetchResult struct {
	Body []byte
	Err  error
}

func (f *Fetcher) timeout() time.Duration {
	if f == nil || f.Timeout <= 0 {
		return defaultTimeout
	}
	return f.Timeout
}

func (f *Fetcher) newCollector(ctx context.Context, async bool) *colly.Collector {
	opts := []colly.CollectorOption{
		colly.AllowURLRevisit(),
		colly.StdlibContext(ctx),
	}
	if async {
		opts = append(opts, colly.Async())
	}
	if f != nil && f.UserAgent != "" {
		opts = append(opts, colly.UserAgent(f.UserAgent))
	}

	c := colly.NewCollector(opts...)
	c.SetRequestTimeout(f.timeout())
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "application/json")
	})
	return c
}

// requestError classifies a colly failure: a response with a status code
// is a bad status, anything else is a transport error.
func requestError(r *colly.Response, err error) error {
	if r != nil && r.StatusCode != 0 {
		return fmt.Errorf("%w: %d", ErrBadStatus, r.StatusCode)
	}
	return fmt.Errorf("request failed: %w", err)
}

// Get fetches rawURL and returns the response body.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	c := f.newCollector(ctx, false)

	var (
		body   []byte
		reqErr error
	)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		reqErr = requestError(r, err)
	})

	if err := c.Visit(rawURL); err != nil {
		if reqErr != nil {
			return nil, reqErr
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return body, nil
}

// GetAll fetches every URL concurrently, at most maxParallelism at a time.
// The returned slice is index-aligned with urls.
func (f *Fetcher) GetAll(ctx context.Context, urls []string) []FetchResult {
	results := make([]FetchResult, len(urls))
	if len(urls) == 0 {
		return results
	}

	c := f.newCollector(ctx, true)
	_ = c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: maxParallelism,
	})

	var mu sync.Mutex
	set := func(rctx *colly.Context, res FetchResult) {
		idx, ok := rctx.GetAny("idx").(int)
		if !ok {
			return
		}
		mu.Lock()
		results[idx] = res
		mu.Unlock()
	}

	c.OnResponse(func(r *colly.Response) {
		set(r.Ctx, FetchResult{Body: r.Body})
	})
	c.OnError(func(r *colly.Response, err error) {
		set(r.Ctx, FetchResult{Err: requestError(r, err)})
	})

	for i, u := range urls {
		rctx := colly.NewContext()
		rctx.Put("idx", i)
		if err := c.Request("GET", u, nil, rctx, nil); err != nil {
			mu.Lock()
			if results[i].Body == nil && results[i].Err == nil {
				results[i] = FetchResult{Err: fmt.Errorf("request failed: %w", err)}
			}
			mu.Unlock()
		}
	}
	c.Wait()

	return results
}
