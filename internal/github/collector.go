package github

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/url"
	"strconv"
)

// DefaultPerPage is the page size used for list endpoints. 100 is the
// API maximum and minimises the request count.
const DefaultPerPage = 100

// Collect drives a list endpoint page by page and yields decoded items
// lazily, in server order. The sequence is finite: it ends at the first
// page shorter than perPage without issuing a further request, or when
// the consumer stops early. A fetch or decode failure is yielded as the
// final element's error and ends the sequence.
func Collect[T any](ctx context.Context, ex *Executor, rawurl string, perPage int) iter.Seq2[T, error] {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return func(yield func(T, error) bool) {
		next := withPerPage(rawurl, perPage)
		for next != "" {
			page, err := ex.Get(ctx, next)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			var items []T
			if err := json.Unmarshal(page.Body, &items); err != nil {
				var zero T
				yield(zero, fmt.Errorf("decode page %s: %w", next, err))
				return
			}
			for _, item := range items {
				if !yield(item, nil) {
					return
				}
			}
			// A short page is the last page.
			if len(items) < perPage {
				return
			}
			next = page.NextURL
		}
	}
}

// searchEnvelope is the wrapper the search API puts around its items.
type searchEnvelope[T any] struct {
	TotalCount int `json:"total_count"`
	Items      []T `json:"items"`
}

// CollectSearch is Collect for search endpoints, which wrap each page
// in a {total_count, items} envelope.
func CollectSearch[T any](ctx context.Context, ex *Executor, rawurl string, perPage int) iter.Seq2[T, error] {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return func(yield func(T, error) bool) {
		next := withPerPage(rawurl, perPage)
		for next != "" {
			page, err := ex.Get(ctx, next)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			var env searchEnvelope[T]
			if err := json.Unmarshal(page.Body, &env); err != nil {
				var zero T
				yield(zero, fmt.Errorf("decode search page %s: %w", next, err))
				return
			}
			for _, item := range env.Items {
				if !yield(item, nil) {
					return
				}
			}
			if len(env.Items) < perPage {
				return
			}
			next = page.NextURL
		}
	}
}

// Count drains a sequence and returns how many items it yielded.
func Count[T any](seq iter.Seq2[T, error]) (int, error) {
	n := 0
	for _, err := range seq {
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// withPerPage pins the per_page query parameter on a list URL.
func withPerPage(rawurl string, perPage int) string {
	u, err := url.Parse(rawurl)
	if err != nil {
		return rawurl
	}
	q := u.Query()
	q.Set("per_page", strconv.Itoa(perPage))
	u.RawQuery = q.Encode()
	return u.String()
}
