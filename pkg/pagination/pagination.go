package pagination

// Offset pagination matches the page/size query parameters the
// storefront clients already send.

const (
	// DefaultSize is the standard page size when one is not provided.
	DefaultSize = 20
	// MaxSize caps how many rows any page query can request.
	MaxSize = 100
)

// Params holds pagination inputs from controllers or services.
type Params struct {
	Page int
	Size int
}

// Page metadata returned alongside list payloads.
type Page struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

// Normalize enforces the configured defaults and maximums.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Size <= 0 {
		p.Size = DefaultSize
	}
	if p.Size > MaxSize {
		p.Size = MaxSize
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Size
}

// Limit returns the normalized page size.
func (p Params) Limit() int {
	return p.Normalize().Size
}

// PageFor assembles page metadata for a total row count.
func PageFor(params Params, total int64) Page {
	n := params.Normalize()
	pages := int((total + int64(n.Size) - 1) / int64(n.Size))
	if pages < 1 {
		pages = 1
	}
	return Page{
		Page:       n.Page,
		Size:       n.Size,
		TotalItems: total,
		TotalPages: pages,
	}
}
