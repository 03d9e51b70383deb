package types

// PaginationResponse describes one page of a list.
type PaginationResponse struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// NewPaginationResponse builds pagination metadata.
func NewPaginationResponse(total, limit, offset int) *PaginationResponse {
	return &PaginationResponse{
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
}

// ListResponse is a page of items.
type ListResponse[T any] struct {
	Items      []T                 `json:"items"`
	Pagination *PaginationResponse `json:"pagination"`
}
