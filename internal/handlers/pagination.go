package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/Maheesh09/studio-full-stack/internal/models"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Pager describes one 0-based page of a backend list.
type Pager struct {
	Page       int
	Size       int
	Total      int
	TotalPages int
	BasePath   string
	Query      url.Values
}

// pageParams reads ?page and ?size. Bad values fall back to the first page
// and the default size; size is capped.
func pageParams(r *http.Request) (page, size int) {
	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 0 {
		page = 0
	}
	size, err = strconv.Atoi(q.Get("size"))
	if err != nil || size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

func newPager(r *http.Request, page, size, total, totalPages int) Pager {
	q := url.Values{}
	for k, v := range r.URL.Query() {
		if k != "page" && k != "edit" {
			q[k] = v
		}
	}
	return Pager{Page: page, Size: size, Total: total, TotalPages: totalPages, BasePath: r.URL.Path, Query: q}
}

// pagerFor builds the pager for a backend page. Once the backend has
// answered, the index it reports wins over the one asked for.
func pagerFor[T any](r *http.Request, requested, size int, p models.Page[T]) Pager {
	page := requested
	if p.TotalPages > 0 {
		page = p.Index()
	}
	return newPager(r, page, size, p.TotalElements, p.TotalPages)
}

func (p Pager) HasPrev() bool {
	return p.Page > 0
}

func (p Pager) HasNext() bool {
	return p.Page+1 < p.TotalPages
}

// Number is the 1-based page shown to people.
func (p Pager) Number() int {
	return p.Page + 1
}

// URL links to page n keeping the other query parameters.
func (p Pager) URL(n int) string {
	q := url.Values{}
	for k, v := range p.Query {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(n))
	q.Set("size", strconv.Itoa(p.Size))
	return p.BasePath + "?" + q.Encode()
}

func (p Pager) PrevURL() string {
	return p.URL(p.Page - 1)
}

func (p Pager) NextURL() string {
	return p.URL(p.Page + 1)
}

// totalPages for a locally counted list.
func totalPages(total, size int) int {
	if size < 1 {
		return 0
	}
	return (total + size - 1) / size
}
