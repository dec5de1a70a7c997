package common

import (
	"net/http"
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage keeps Offset well inside the range every driver accepts.
	MaxPage = 1_000_000
)

// PageRequest is a zero-based page window.
type PageRequest struct {
	Page int
	Size int
}

func NewPageRequest(page, size int) PageRequest {
	if page < 0 {
		page = 0
	}
	if page > MaxPage {
		page = MaxPage
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return PageRequest{Page: page, Size: size}
}

func ParsePageRequest(r *http.Request) PageRequest {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	return NewPageRequest(page, size)
}

func (p PageRequest) Offset() uint64 {
	return uint64(p.Page) * uint64(p.Size)
}

func (p PageRequest) Limit() uint64 {
	return uint64(p.Size)
}
