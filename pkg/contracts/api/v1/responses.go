package api

import (
	"agridash/pkg/contracts/domain"
)

// PagesResponse lists the dashboard pages.
type PagesResponse struct {
	Pages []domain.PageInfo `json:"pages"`
}

// LiveError is the error payload of a live response.
type LiveError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// LiveResponse answers a LiveRequest with either a computed page or an
// error.
type LiveResponse struct {
	ID     string             `json:"id,omitempty"`
	Type   string             `json:"type"`
	Result *domain.PageResult `json:"result,omitempty"`
	Error  *LiveError         `json:"error,omitempty"`
}
