package services

import (
	"context"

	"github.com/DavidPARK0417/draiger-sub002/cmd/api/clients/notionclient"
	"github.com/DavidPARK0417/draiger-sub002/models"
)

// Source is the remote content store. *notionclient.Client implements it.
type Source interface {
	FetchAll(ctx context.Context, f notionclient.Filter) ([]models.ContentItem, error)
	Count(ctx context.Context, f notionclient.Filter) (int, error)
	FindBySlug(ctx context.Context, ct models.ContentType, slug string) (*models.ContentItem, error)
	// FetchContent returns the page body rendered as markdown.
	FetchContent(ctx context.Context, ct models.ContentType, pageID string) (string, error)
}

var _ Source = (*notionclient.Client)(nil)
