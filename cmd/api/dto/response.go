package dto

import "github.com/DavidPARK0417/draiger-sub002/models"

// ErrorResponseDTO는 공통 에러 응답 형식을 통일하기 위한 DTO이다.
type ErrorResponseDTO struct {
	Error string `json:"error" example:"content source configuration missing: NOTION_API_KEY is not set"`
}

// LatestDTO is the unpaginated most-recent list of one content type.
type LatestDTO struct {
	Items []models.ContentItem `json:"items"`
	Error string               `json:"error,omitempty"`
}

// HomeLatestDTO combines the latest posts and recipes for the landing page.
type HomeLatestDTO struct {
	Posts   []models.ContentItem `json:"posts"`
	Recipes []models.ContentItem `json:"recipes"`
	Error   string               `json:"error,omitempty"`
}

// SearchResultDTO is one hit of the site-wide search.
type SearchResultDTO struct {
	Type        models.ContentType `json:"type"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Href        string             `json:"href"`
	Category    string             `json:"category,omitempty"`
	Date        string             `json:"date,omitempty"`
}

// SearchResponseDTO wraps site-wide search hits; Total counts hits before the limit.
type SearchResponseDTO struct {
	Results []SearchResultDTO `json:"results"`
	Total   int               `json:"total"`
	Error   string            `json:"error,omitempty"`
}
