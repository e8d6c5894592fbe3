package requestdto

import "github.com/LavaJover/shvark-commission-service/internal/domain"

type Pagination struct {
	CurrentPage  int64 `json:"current_page"`
	TotalPages   int64 `json:"total_pages"`
	TotalItems   int64 `json:"total_items"`
	ItemsPerPage int64 `json:"items_per_page"`
}

type ListRequestsOutput struct {
	Requests   []*domain.Request
	Pagination Pagination
}
