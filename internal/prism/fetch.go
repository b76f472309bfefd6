package prism

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultPageSize is the page width used for entity enumeration.
const DefaultPageSize = 100

// fetchWorkers bounds the number of concurrent page fetches per listing.
const fetchWorkers = 10

// listEnvelope is the v4 list response wrapper.
type listEnvelope[T any] struct {
	Data     []T          `json:"data"`
	Metadata listMetadata `json:"metadata"`
}

type listMetadata struct {
	TotalAvailableResults int `json:"totalAvailableResults"`
}

// FetchAll enumerates every entity behind a v4 list endpoint. A count
// probe (one page of one result) establishes the total, pages are then
// fetched through a bounded pool and concatenated in page order. A page
// that fails is reported to onPageFailure, logged, and omitted; partial
// results are returned rather than a global failure.
func FetchAll[T any](ctx context.Context, c *Client, path string, query url.Values, pageSize int, onPageFailure func(page int, err error)) ([]T, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	total, err := fetchTotal[T](ctx, c, path, query)
	if err != nil {
		return nil, err
	}

	pageCount := (total + pageSize - 1) / pageSize
	if pageCount == 0 {
		c.logger.Warn("no entities of this kind available", slog.String("path", path))
		return nil, nil
	}

	pages := make([][]T, pageCount)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchWorkers)

	for page := 0; page < pageCount; page++ {
		g.Go(func() error {
			q := cloneQuery(query)
			q.Set("$page", strconv.Itoa(page))
			q.Set("$limit", strconv.Itoa(pageSize))

			var envelope listEnvelope[T]
			if err := c.Get(gctx, path, q, &envelope); err != nil {
				c.logger.Warn("page fetch failed",
					slog.String("path", path),
					slog.Int("page", page),
					slog.String("error", err.Error()))
				if onPageFailure != nil {
					onPageFailure(page, err)
				}
				return nil // One bad page never fails the listing.
			}

			mu.Lock()
			pages[page] = envelope.Data
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []T
	for _, page := range pages {
		all = append(all, page...)
	}
	return all, nil
}

// Count probes a list endpoint for its total result count without
// enumerating any entities.
func Count(ctx context.Context, c *Client, path string, query url.Values) (int, error) {
	return fetchTotal[json.RawMessage](ctx, c, path, query)
}

// fetchTotal probes the endpoint for the total result count.
func fetchTotal[T any](ctx context.Context, c *Client, path string, query url.Values) (int, error) {
	q := cloneQuery(query)
	q.Set("$page", "0")
	q.Set("$limit", "1")

	var envelope listEnvelope[T]
	if err := c.Get(ctx, path, q, &envelope); err != nil {
		return 0, err
	}
	return envelope.Metadata.TotalAvailableResults, nil
}

func cloneQuery(query url.Values) url.Values {
	q := url.Values{}
	for key, values := range query {
		for _, value := range values {
			q.Add(key, value)
		}
	}
	return q
}
