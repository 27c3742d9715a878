package domain

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest carries the pagination and ordering parameters shared by every
// list query. Ordering is a whitelisted field name, "-" prefixed for descending.
type PageRequest struct {
	Page     int
	PageSize int
	Ordering string
}

// Normalized clamps page to >= 1 and page size to [1, MaxPageSize], using
// defaultSize when none was requested.
func (p PageRequest) Normalized(defaultSize int) PageRequest {
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type Paged[T any] struct {
	Items      []*T
	TotalCount int64
	Page       int
	PageSize   int
	TotalPages int
}

func NewPaged[T any](items []*T, total int64, req PageRequest) *Paged[T] {
	pages := 0
	if req.PageSize > 0 {
		pages = int((total + int64(req.PageSize) - 1) / int64(req.PageSize))
	}
	if items == nil {
		items = []*T{}
	}
	return &Paged[T]{
		Items:      items,
		TotalCount: total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: pages,
	}
}

func (p *Paged[T]) HasNext() bool { return p.Page < p.TotalPages }

func (p *Paged[T]) HasPrev() bool { return p.Page > 1 }
