package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/DavidPARK0417/draiger-sub002/cmd/api/cache"
	"github.com/DavidPARK0417/draiger-sub002/cmd/api/clients/notionclient"
	"github.com/DavidPARK0417/draiger-sub002/cmd/api/dto"
	"github.com/DavidPARK0417/draiger-sub002/cmd/api/pagination"
	"github.com/DavidPARK0417/draiger-sub002/cmd/api/search"
	"github.com/DavidPARK0417/draiger-sub002/internal/logger"
	"github.com/DavidPARK0417/draiger-sub002/config"
	"github.com/DavidPARK0417/draiger-sub002/models"
)

// cache scopes
const (
	scopeList    = "list"
	scopeSearch  = "search"
	scopeLatest  = "latest"
	scopeSlug    = "slug"
	scopeContent = "content"
	scopeCounts  = "counts"
	scopeTotal   = "total"
)

// Policies are the cache options per endpoint family.
type Policies struct {
	Listing cache.Options
	Search  cache.Options
	Latest  cache.Options
	Counts  cache.Options
	Content cache.Options
}

// PoliciesFromConfig maps config.yaml cache sections onto cache options.
func PoliciesFromConfig(c config.CacheConfig) Policies {
	opt := func(e config.EndpointCache) cache.Options {
		return cache.Options{TTL: e.TTL(), ForceFresh: e.ForceFresh}
	}
	return Policies{
		Listing: opt(c.Listing),
		Search:  opt(c.Search),
		Latest:  opt(c.Latest),
		Counts:  opt(c.Counts),
		Content: opt(c.Content),
	}
}

// ContentService serves paginated listings, category listings, search and latest items
// for one Source.
//
// - 원격 소스 결과(전체 목록)를 캐시에 두고, 페이지 자르기와 검색은 메모리에서 수행한다.
// - 모든 공개 메서드는 실패해도 형태가 온전한 결과와 에러를 함께 반환한다.
type ContentService struct {
	source      Source
	cache       *cache.Cache
	policies    Policies
	pageSize    int
	latestLimit int
	categories  map[string][]string
}

func NewContentService(source Source, c *cache.Cache, cfg config.AppConfig) *ContentService {
	return &ContentService{
		source:      source,
		cache:       c,
		policies:    PoliciesFromConfig(cfg.Cache),
		pageSize:    cfg.Content.PageSize,
		latestLimit: cfg.Content.LatestLimit,
		categories:  cfg.Content.Categories,
	}
}

// Categories returns the canonical category list of ct.
func (s *ContentService) Categories(ct models.ContentType) []string {
	return s.categories[string(ct)]
}

func (s *ContentService) request(page, pageSize int) pagination.Request {
	return pagination.NewRequest(page, pageSize, s.pageSize)
}

// all returns the published, date-ordered corpus of ct (optionally one category).
func (s *ContentService) all(ctx context.Context, ct models.ContentType, category string) ([]models.ContentItem, error) {
	key := cache.Key(string(ct), scopeList, category, "", 0, 0)
	return cache.GetOrFetch(ctx, s.cache, key, s.policies.Listing, func(ctx context.Context) ([]models.ContentItem, error) {
		return s.source.FetchAll(ctx, notionclient.Filter{ContentType: ct, Category: category})
	})
}

// ListPage returns one page of every published item of ct, newest first.
func (s *ContentService) ListPage(ctx context.Context, ct models.ContentType, page, pageSize int) (res dto.PageResult, err error) {
	defer fallbackPage(&res, &err)
	defer recoverInto("ListPage", &err)

	if err := validType(ct); err != nil {
		return res, err
	}
	items, err := s.all(ctx, ct, "")
	if err != nil {
		logFailure("ListPage", ct, err)
		return res, err
	}
	return pagination.Paginate(items, s.request(page, pageSize)), nil
}

// ListPageByCategory returns one page of the published items of ct in category.
func (s *ContentService) ListPageByCategory(ctx context.Context, ct models.ContentType, category string, page, pageSize int) (res dto.PageResult, err error) {
	defer fallbackPage(&res, &err)
	defer recoverInto("ListPageByCategory", &err)

	if err := validType(ct); err != nil {
		return res, err
	}
	category = strings.TrimSpace(category)
	if err := s.validCategory(ct, category); err != nil {
		return res, err
	}
	items, err := s.all(ctx, ct, category)
	if err != nil {
		logFailure("ListPageByCategory", ct, err)
		return res, err
	}
	return pagination.Paginate(items, s.request(page, pageSize)), nil
}

// Matches returns every item of ct matching query, newest first.
func (s *ContentService) Matches(ctx context.Context, ct models.ContentType, query string) ([]models.ContentItem, error) {
	if err := validType(ct); err != nil {
		return nil, err
	}
	if search.IsBlank(query) {
		return nil, ErrEmptyQuery
	}
	key := cache.Key(string(ct), scopeSearch, "", search.Normalize(query), 0, 0)
	return cache.GetOrFetch(ctx, s.cache, key, s.policies.Search, func(ctx context.Context) ([]models.ContentItem, error) {
		items, err := s.all(ctx, ct, "")
		if err != nil {
			return nil, err
		}
		return search.Match(items, query), nil
	})
}

// SearchPage returns one page of the items of ct matching query. totalCount counts matches.
func (s *ContentService) SearchPage(ctx context.Context, ct models.ContentType, query string, page, pageSize int) (res dto.PageResult, err error) {
	defer fallbackPage(&res, &err)
	defer recoverInto("SearchPage", &err)

	items, err := s.Matches(ctx, ct, query)
	if err != nil {
		logFailure("SearchPage", ct, err)
		return res, err
	}
	return pagination.Paginate(items, s.request(page, pageSize)), nil
}

// Latest returns the n newest published items of ct. n <= 0 uses the configured limit.
func (s *ContentService) Latest(ctx context.Context, ct models.ContentType, n int) (res []models.ContentItem, err error) {
	defer fallbackItems(&res, &err)
	defer recoverInto("Latest", &err)

	if err := validType(ct); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = s.latestLimit
	}
	key := cache.Key(string(ct), scopeLatest, "", "", 0, n)
	res, err = cache.GetOrFetch(ctx, s.cache, key, s.policies.Latest, func(ctx context.Context) ([]models.ContentItem, error) {
		items, err := s.source.FetchAll(ctx, notionclient.Filter{ContentType: ct})
		if err != nil {
			return nil, err
		}
		return slices.Clone(items[:min(n, len(items))]), nil
	})
	if err != nil {
		logFailure("Latest", ct, err)
	}
	return res, err
}

// GetBySlug returns the published item of ct with slug, or ErrNotFound.
// Body holds the page content rendered as markdown; when that cannot be fetched the
// inline body property is kept.
func (s *ContentService) GetBySlug(ctx context.Context, ct models.ContentType, slug string) (res *models.ContentItem, err error) {
	defer recoverInto("GetBySlug", &err)

	if err := validType(ct); err != nil {
		return nil, err
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, fmt.Errorf("%w: slug is empty", ErrInvalidRequest)
	}
	key := cache.Key(string(ct), scopeSlug, "", slug, 0, 0)
	item, err := cache.GetOrFetch(ctx, s.cache, key, s.policies.Listing, func(ctx context.Context) (*models.ContentItem, error) {
		return s.source.FindBySlug(ctx, ct, slug)
	})
	if err != nil {
		logFailure("GetBySlug", ct, err)
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, ct, slug)
	}

	// 캐시된 포인터를 건드리지 않도록 복사본에 본문을 싣는다.
	out := *item
	body, err := s.Content(ctx, ct, item.ID)
	if err != nil {
		logFailure("GetBySlug.Content", ct, err)
		return &out, nil
	}
	if strings.TrimSpace(body) != "" {
		out.Body = body
	}
	return &out, nil
}

// Content returns the markdown body of the page pageID.
func (s *ContentService) Content(ctx context.Context, ct models.ContentType, pageID string) (body string, err error) {
	defer recoverInto("Content", &err)

	if err := validType(ct); err != nil {
		return "", err
	}
	pageID = strings.TrimSpace(pageID)
	if pageID == "" {
		return "", fmt.Errorf("%w: page id is empty", ErrInvalidRequest)
	}
	key := cache.Key(string(ct), scopeContent, "", pageID, 0, 0)
	return cache.GetOrFetch(ctx, s.cache, key, s.policies.Content, func(ctx context.Context) (string, error) {
		return s.source.FetchContent(ctx, ct, pageID)
	})
}

// Invalidate drops every cached result of ct, including stored snapshots.
func (s *ContentService) Invalidate(ctx context.Context, ct models.ContentType) int {
	return s.cache.Purge(ctx, cache.TypePrefix(string(ct)))
}

func (s *ContentService) validCategory(ct models.ContentType, category string) error {
	if category == "" {
		return fmt.Errorf("%w: category is empty", ErrInvalidCategory)
	}
	known := s.Categories(ct)
	// 카테고리 목록이 설정되지 않은 타입은 임의 값을 허용한다.
	if len(known) == 0 || slices.Contains(known, category) {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidCategory, category)
}

func validType(ct models.ContentType) error {
	if _, ok := models.ParseContentType(string(ct)); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownContentType, ct)
	}
	return nil
}

func logFailure(op string, ct models.ContentType, err error) {
	if errors.Is(err, ErrInvalidRequest) {
		return
	}
	logger.WarnWithFields("content operation failed", logger.Fields{
		"operation":    op,
		"content_type": string(ct),
		"error":        err.Error(),
	})
}
