package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/DavidPARK0417/draiger-sub002/cmd/api/dto"
	"github.com/DavidPARK0417/draiger-sub002/config"
	"github.com/DavidPARK0417/draiger-sub002/models"
)

// 사이트 내 상세 페이지 경로. 포스트는 /insight, 레시피는 /menu 아래에 있다.
var detailPathPrefix = map[models.ContentType]string{
	models.ContentTypePosts:   "/insight/",
	models.ContentTypeRecipes: "/menu/",
}

// HomeService combines posts and recipes for the landing page and site-wide search.
type HomeService struct {
	content     *ContentService
	latestLimit int
	searchLimit int
}

func NewHomeService(content *ContentService, cfg config.AppConfig) *HomeService {
	return &HomeService{
		content:     content,
		latestLimit: cfg.Content.LatestLimit,
		searchLimit: cfg.Content.SearchLimit,
	}
}

// Latest fetches the n newest posts and recipes in parallel. A failing side yields an
// empty list; an error is returned only when both sides failed.
func (s *HomeService) Latest(ctx context.Context, n int) (dto.HomeLatestDTO, error) {
	if n <= 0 {
		n = s.latestLimit
	}
	var (
		out                 = dto.HomeLatestDTO{Posts: []models.ContentItem{}, Recipes: []models.ContentItem{}}
		postsErr, recipeErr error
		g                   errgroup.Group
	)
	g.Go(func() error {
		out.Posts, postsErr = s.content.Latest(ctx, models.ContentTypePosts, n)
		return nil
	})
	g.Go(func() error {
		out.Recipes, recipeErr = s.content.Latest(ctx, models.ContentTypeRecipes, n)
		return nil
	})
	_ = g.Wait()

	if postsErr != nil && recipeErr != nil {
		return out, errors.Join(postsErr, recipeErr)
	}
	return out, nil
}

// Search matches query against posts and recipes in parallel and returns at most limit
// hits, newest first. Total counts every hit before the limit.
func (s *HomeService) Search(ctx context.Context, query string, limit int) (dto.SearchResponseDTO, error) {
	out := dto.SearchResponseDTO{Results: []dto.SearchResultDTO{}}
	if limit <= 0 {
		limit = s.searchLimit
	}

	matched := make([][]models.ContentItem, len(models.ContentTypes))
	errs := make([]error, len(models.ContentTypes))
	var g errgroup.Group
	for i, ct := range models.ContentTypes {
		i, ct := i, ct
		g.Go(func() error {
			matched[i], errs[i] = s.content.Matches(ctx, ct, query)
			return nil
		})
	}
	_ = g.Wait()

	var all []models.ContentItem
	failed := 0
	for i, err := range errs {
		if err != nil {
			if errors.Is(err, ErrInvalidRequest) {
				return out, err
			}
			logFailure("Search", models.ContentTypes[i], err)
			failed++
			continue
		}
		all = append(all, matched[i]...)
	}
	if failed == len(errs) {
		return out, errors.Join(errs...)
	}

	models.SortByDateDesc(all)
	out.Total = len(all)
	for _, it := range all[:min(limit, len(all))] {
		out.Results = append(out.Results, toSearchResult(it))
	}
	return out, nil
}

func toSearchResult(it models.ContentItem) dto.SearchResultDTO {
	r := dto.SearchResultDTO{
		Type:        it.Type,
		Title:       it.Title,
		Description: it.MetaDescription,
		Href:        fmt.Sprintf("%s%s", detailPathPrefix[it.Type], it.Slug),
		Category:    it.Category,
	}
	if !it.Date.IsZero() {
		r.Date = it.Date.Format("2006-01-02")
	}
	return r
}
