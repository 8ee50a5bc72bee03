package persistpager

import (
	"context"
	"fmt"
	"math"

	"github.com/samber/lo"
)

// PagerAdapter fetches slices of one backend result set.
type PagerAdapter interface {
	// GetNbResults returns the total number of results.
	GetNbResults(ctx context.Context) (int64, error)
	// GetSlice returns at most length results starting at offset.
	GetSlice(ctx context.Context, offset, length int) ([]any, error)
}

// Page is a fetched slice of the result set.
type Page struct {
	// Number is the 1-based page number.
	Number int
	// Size is the requested page size.
	Size int
	// Items fetched for the page. May be shorter than Size on the last page.
	Items []any
}

// PageListener is called after every page fetched through a Pager. A returned
// error aborts the fetch and is returned to the caller as is.
type PageListener func(ctx context.Context, page Page) error

// Pager is the backend-agnostic pagination facade over one PagerAdapter.
//
// Setters are not safe for concurrent use; fetching is as safe as the adapter.
type Pager struct {
	adapter     PagerAdapter
	maxPerPage  int
	currentPage int
	listeners   []PageListener
}

func NewPager(adapter PagerAdapter) *Pager {
	return &Pager{
		adapter:     adapter,
		maxPerPage:  DefaultMaxPerPage,
		currentPage: 1,
	}
}

// WithMaxPerPage sets the page size. NormalizeLimit is applied.
func (p *Pager) WithMaxPerPage(maxPerPage int) *Pager {
	if p == nil {
		p = new(Pager)
	}

	p.maxPerPage = NormalizeLimit(maxPerPage)

	return p
}

// WithCurrentPage sets the page GetCurrentPageResults and Walk start from.
// Values below 1 select the first page.
func (p *Pager) WithCurrentPage(page int) *Pager {
	if p == nil {
		p = new(Pager)
	}

	p.currentPage = max(page, 1)

	return p
}

// AddPageListener registers fn to run after each fetched page.
func (p *Pager) AddPageListener(fn PageListener) *Pager {
	if p == nil {
		p = new(Pager)
	}

	if fn != nil {
		p.listeners = append(p.listeners, fn)
	}

	return p
}

// GetAdapter returns the wrapped adapter.
func (p *Pager) GetAdapter() PagerAdapter {
	if p == nil {
		return nil
	}

	return p.adapter
}

// GetMaxPerPage returns the page size, DefaultMaxPerPage when unset.
func (p *Pager) GetMaxPerPage() int {
	if p == nil || p.maxPerPage <= 0 {
		return DefaultMaxPerPage
	}

	return p.maxPerPage
}

// GetCurrentPage returns the 1-based current page.
func (p *Pager) GetCurrentPage() int {
	if p == nil || p.currentPage < 1 {
		return 1
	}

	return p.currentPage
}

// GetNbResults returns the total number of results reported by the adapter.
func (p *Pager) GetNbResults(ctx context.Context) (int64, error) {
	if err := p.validate(); err != nil {
		return 0, err
	}

	total, err := p.adapter.GetNbResults(ctx)
	if err != nil {
		return 0, fmt.Errorf("cannot count results: %w", err)
	}

	return total, nil
}

// GetNbPages returns the number of pages of GetMaxPerPage results. An empty
// result set still has one (empty) page.
func (p *Pager) GetNbPages(ctx context.Context) (int, error) {
	total, err := p.GetNbResults(ctx)
	if err != nil {
		return 0, err
	}

	return nbPages(total, p.GetMaxPerPage()), nil
}

// GetSlice fetches page number page of size results. Pages start at 1.
func (p *Pager) GetSlice(ctx context.Context, page, size int) ([]any, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if page < 1 {
		return nil, fmt.Errorf("invalid page number %d", page)
	}

	size = NormalizeLimit(size)

	offset, err := pageOffset(page, size)
	if err != nil {
		return nil, err
	}

	return p.fetch(ctx, page, size, offset)
}

// GetCurrentPageResults fetches the current page with the configured page size.
func (p *Pager) GetCurrentPageResults(ctx context.Context) ([]any, error) {
	return p.GetSlice(ctx, p.GetCurrentPage(), p.GetMaxPerPage())
}

// Walk fetches pages from the current one to the last and hands each to fn.
// The page count is taken once, before the first fetch.
func (p *Pager) Walk(ctx context.Context, fn func(page Page) error) error {
	nb, err := p.GetNbPages(ctx)
	if err != nil {
		return err
	}

	size := p.GetMaxPerPage()
	for number := p.GetCurrentPage(); number <= nb; number++ {
		if err = ctx.Err(); err != nil {
			return err
		}

		offset, err := pageOffset(number, size)
		if err != nil {
			return err
		}

		items, err := p.fetch(ctx, number, size, offset)
		if err != nil {
			return err
		}

		if err = fn(Page{Number: number, Size: size, Items: items}); err != nil {
			return err
		}
	}

	return nil
}

// SliceFromToken fetches size results starting at the offset encoded in
// rawToken and returns the token of the next slice. The next token is nil when
// fewer than size results came back, which marks the end of the result set.
func (p *Pager) SliceFromToken(ctx context.Context, rawToken string, size int) ([]any, *OffsetToken, error) {
	if err := p.validate(); err != nil {
		return nil, nil, err
	}

	token, err := DecodeOffsetToken(rawToken)
	if err != nil {
		return nil, nil, err
	}

	size = NormalizeLimit(size)
	offset := token.GetOffset()
	if offset > math.MaxInt-size {
		return nil, nil, fmt.Errorf("offset token value %d is out of range", offset)
	}

	items, err := p.fetch(ctx, offset/size+1, size, offset)
	if err != nil {
		return nil, nil, err
	}

	if len(items) < size {
		return items, nil, nil
	}

	return items, NewOffsetToken(offset + len(items)), nil
}

func (p *Pager) fetch(ctx context.Context, number, size, offset int) ([]any, error) {
	items, err := p.adapter.GetSlice(ctx, offset, size)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch page %d: %w", number, err)
	}

	page := Page{Number: number, Size: size, Items: items}
	for _, listener := range p.listeners {
		if err = listener(ctx, page); err != nil {
			return nil, err
		}
	}

	return items, nil
}

func (p *Pager) validate() error {
	if p == nil {
		return fmt.Errorf("pager is nil")
	}

	if p.adapter == nil {
		return fmt.Errorf("pager has no adapter")
	}

	return nil
}

// pageOffset returns the offset of the first result of page.
func pageOffset(page, size int) (int, error) {
	if page-1 > math.MaxInt/size {
		return 0, fmt.Errorf("page number %d is out of range for page size %d", page, size)
	}

	return (page - 1) * size, nil
}

func nbPages(total int64, maxPerPage int) int {
	if total <= 0 {
		return 1
	}

	pages := total / int64(maxPerPage)

	return int(lo.Ternary(total%int64(maxPerPage) == 0, pages, pages+1))
}
