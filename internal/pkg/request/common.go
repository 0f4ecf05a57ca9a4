package request

// ByIDRequest is a common struct for endpoints that require an ID path parameter.
// Seeded resources carry short ids such as "res1", so only presence is enforced.
type ByIDRequest struct {
	ID string `uri:"id" binding:"required,max=64"`
}

// ListParams holds the paging query parameters shared by list endpoints.
type ListParams struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Normalize fills in defaults for unset paging parameters.
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
}
