package router_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DavidPARK0417/draiger-sub002/cmd/api/cache"
	"github.com/DavidPARK0417/draiger-sub002/cmd/api/clients/notionclient"
	"github.com/DavidPARK0417/draiger-sub002/cmd/api/dto"
	"github.com/DavidPARK0417/draiger-sub002/cmd/api/router"
	"github.com/DavidPARK0417/draiger-sub002/cmd/api/services"
	"github.com/DavidPARK0417/draiger-sub002/config"
	"github.com/DavidPARK0417/draiger-sub002/models"
)

type stubSource struct {
	items map[models.ContentType][]models.ContentItem
	err   error
}

func (s stubSource) filtered(f notionclient.Filter) []models.ContentItem {
	out := []models.ContentItem{}
	for _, it := range s.items[f.ContentType] {
		if f.Category == "" || it.Category == f.Category {
			out = append(out, it)
		}
	}
	models.SortByDateDesc(out)
	return out
}

func (s stubSource) FetchAll(_ context.Context, f notionclient.Filter) ([]models.ContentItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.filtered(f), nil
}

func (s stubSource) Count(_ context.Context, f notionclient.Filter) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	return len(s.filtered(f)), nil
}

func (s stubSource) FindBySlug(_ context.Context, ct models.ContentType, slug string) (*models.ContentItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, it := range s.filtered(notionclient.Filter{ContentType: ct}) {
		if it.Slug == slug {
			return &it, nil
		}
	}
	return nil, nil
}

func (s stubSource) FetchContent(_ context.Context, _ models.ContentType, _ string) (string, error) {
	return "", s.err
}

func newEngine(src services.Source) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	c := cache.New()
	content := services.NewContentService(src, c, cfg)
	return router.New(router.Deps{
		Content:    content,
		Categories: services.NewCategoryService(src, c, cfg),
		Home:       services.NewHomeService(content, cfg),
	})
}

func seed() stubSource {
	cats := config.Default().Content.Categories["posts"]
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var posts []models.ContentItem
	for i := 0; i < 25; i++ {
		posts = append(posts, models.ContentItem{
			ID:        fmt.Sprintf("p%02d", i),
			Type:      models.ContentTypePosts,
			Slug:      fmt.Sprintf("post-%d", i),
			Title:     fmt.Sprintf("Post %d", i),
			Category:  cats[i%len(cats)],
			Date:      base.Add(time.Duration(i) * time.Hour),
			Tags:      []string{},
			Published: true,
		})
	}
	recipes := []models.ContentItem{{
		ID: "r1", Type: models.ContentTypeRecipes, Slug: "kimchi-stew", Title: "Kimchi stew",
		Date: base, Tags: []string{}, Published: true,
	}}
	return stubSource{items: map[models.ContentType][]models.ContentItem{
		models.ContentTypePosts:   posts,
		models.ContentTypeRecipes: recipes,
	}}
}

func get(t *testing.T, r http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestListRoutes(t *testing.T) {
	r := newEngine(seed())

	type testCase struct {
		name       string
		target     string
		wantItems  int
		wantPage   int
		wantNext   bool
		wantPrev   bool
		wantTotal  int
		wantStatus int
	}
	testCases := []testCase{
		{name: "first page", target: "/api/v1/posts", wantItems: 12, wantPage: 1, wantNext: true, wantTotal: 25, wantStatus: http.StatusOK},
		{name: "last page", target: "/api/v1/posts?page=3", wantItems: 1, wantPage: 3, wantPrev: true, wantTotal: 25, wantStatus: http.StatusOK},
		{name: "past the end", target: "/api/v1/posts?page=9", wantItems: 0, wantPage: 3, wantPrev: true, wantTotal: 25, wantStatus: http.StatusOK},
		{name: "garbage page", target: "/api/v1/posts?page=abc", wantItems: 12, wantPage: 1, wantNext: true, wantTotal: 25, wantStatus: http.StatusOK},
		{name: "page size", target: "/api/v1/posts?page=2&page_size=10", wantItems: 10, wantPage: 2, wantNext: true, wantPrev: true, wantTotal: 25, wantStatus: http.StatusOK},
		{name: "huge page", target: "/api/v1/posts?page=768614336404564652", wantItems: 0, wantPage: 3, wantPrev: true, wantTotal: 25, wantStatus: http.StatusOK},
		{name: "huge page size", target: "/api/v1/posts?page=1&page_size=9223372036854775800", wantItems: 25, wantPage: 1, wantTotal: 25, wantStatus: http.StatusOK},
		{name: "huge page size past the end", target: "/api/v1/posts?page=2&page_size=9223372036854775800", wantItems: 0, wantPage: 1, wantTotal: 25, wantStatus: http.StatusOK},
		{name: "recipes search", target: "/api/v1/recipes/search?q=KIMCHI", wantItems: 1, wantPage: 1, wantTotal: 1, wantStatus: http.StatusOK},
		{name: "search without hits", target: "/api/v1/posts/search?q=nothing", wantItems: 0, wantPage: 1, wantTotal: 0, wantStatus: http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := get(t, r, tc.target)
			require.Equal(t, tc.wantStatus, w.Code)

			page := decode[dto.PageResult](t, w)
			assert.Len(t, page.Items, tc.wantItems)
			assert.Equal(t, tc.wantPage, page.CurrentPage)
			assert.Equal(t, tc.wantNext, page.HasNextPage)
			assert.Equal(t, tc.wantPrev, page.HasPrevPage)
			assert.Equal(t, tc.wantTotal, page.TotalCount)
			assert.Empty(t, page.Error)
		})
	}
}

func TestListRoute_HugePageSizeKeepsPageCount(t *testing.T) {
	r := newEngine(seed())

	w := get(t, r, "/api/v1/posts?page=2&page_size=9223372036854775800")
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[dto.PageResult](t, w)
	assert.Equal(t, 25, page.TotalCount)
	assert.Equal(t, 1, page.TotalPages)
	assert.Empty(t, page.Error)
}

func TestCategoryRoute(t *testing.T) {
	r := newEngine(seed())
	cat := config.Default().Content.Categories["posts"][0]

	w := get(t, r, "/api/v1/posts/categories/"+url.PathEscape(cat))
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[dto.PageResult](t, w)
	assert.Equal(t, 4, page.TotalCount)
	for _, it := range page.Items {
		assert.Equal(t, cat, it.Category)
	}

	w = get(t, r, "/api/v1/posts/categories/"+url.PathEscape("없는 카테고리"))
	require.Equal(t, http.StatusBadRequest, w.Code)
	page = decode[dto.PageResult](t, w)
	assert.NotEmpty(t, page.Error)
	assert.NotNil(t, page.Items)
	assert.Equal(t, 1, page.CurrentPage)
}

func TestCategoryCountsRoute(t *testing.T) {
	r := newEngine(seed())

	w := get(t, r, "/api/v1/posts/category-counts")
	require.Equal(t, http.StatusOK, w.Code)

	var raw struct {
		Total       int             `json:"total"`
		Categorized int             `json:"categorized"`
		Categories  json.RawMessage `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.Equal(t, 25, raw.Total)
	assert.Equal(t, 25, raw.Categorized)

	counts := decode[dto.CategoryCountsDTO](t, w)
	cats := config.Default().Content.Categories["posts"]
	require.Len(t, counts.Categories, len(cats))
	for i, item := range counts.Categories {
		assert.Equal(t, cats[i], item.Name)
	}
	assert.Equal(t, 4, counts.Categories[0].Count)
	assert.Equal(t, 3, counts.Categories[6].Count)
}

func TestSearchRequiresQuery(t *testing.T) {
	r := newEngine(seed())

	for _, target := range []string{"/api/v1/posts/search", "/api/v1/posts/search?q=%20%20", "/api/v1/search?q="} {
		w := get(t, r, target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		body := decode[map[string]any](t, w)
		assert.NotEmpty(t, body["error"], target)
	}
}

func TestSourceFailure(t *testing.T) {
	r := newEngine(stubSource{err: fmt.Errorf("%w: boom", notionclient.ErrSourceUnavailable)})

	w := get(t, r, "/api/v1/posts?page=2")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	page := decode[dto.PageResult](t, w)
	assert.Equal(t, []models.ContentItem{}, page.Items)
	assert.Equal(t, 0, page.TotalCount)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 0, page.TotalPages)
	assert.Contains(t, page.Error, "boom")

	w = get(t, r, "/api/v1/posts/category-counts")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	counts := decode[dto.CategoryCountsDTO](t, w)
	assert.Len(t, counts.Categories, 7)
	assert.Zero(t, counts.Categories.Sum())
	assert.NotEmpty(t, counts.Error)

	w = get(t, r, "/api/v1/home/latest")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	latest := decode[dto.HomeLatestDTO](t, w)
	assert.NotNil(t, latest.Posts)
	assert.NotNil(t, latest.Recipes)
}

func TestMissingConfiguration(t *testing.T) {
	client := notionclient.New(notionclient.Options{
		BaseURL: "http://127.0.0.1:1",
		Secret:  func(string) string { return "" },
	})
	r := newEngine(client)

	w := get(t, r, "/api/v1/recipes")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	page := decode[dto.PageResult](t, w)
	assert.Contains(t, page.Error, config.EnvRecipesAPIKey)
	assert.Empty(t, page.Items)
}

func TestItemRoute(t *testing.T) {
	r := newEngine(seed())

	w := get(t, r, "/api/v1/recipes/items/kimchi-stew")
	require.Equal(t, http.StatusOK, w.Code)
	item := decode[models.ContentItem](t, w)
	assert.Equal(t, "r1", item.ID)

	w = get(t, r, "/api/v1/recipes/items/unknown")
	require.Equal(t, http.StatusNotFound, w.Code)
	body := decode[dto.ErrorResponseDTO](t, w)
	assert.NotEmpty(t, body.Error)
}

func TestHomeRoutes(t *testing.T) {
	r := newEngine(seed())

	w := get(t, r, "/api/v1/home/latest?limit=2")
	require.Equal(t, http.StatusOK, w.Code)
	latest := decode[dto.HomeLatestDTO](t, w)
	assert.Len(t, latest.Posts, 2)
	assert.Len(t, latest.Recipes, 1)
	assert.Equal(t, "p24", latest.Posts[0].ID)

	w = get(t, r, "/api/v1/search?q=kimchi")
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[dto.SearchResponseDTO](t, w)
	assert.Equal(t, 1, res.Total)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "/menu/kimchi-stew", res.Results[0].Href)
	assert.Equal(t, "2024-03-01", res.Results[0].Date)

	w = get(t, r, "/api/v1/posts/latest?limit=1")
	require.Equal(t, http.StatusOK, w.Code)
	one := decode[dto.LatestDTO](t, w)
	require.Len(t, one.Items, 1)
	assert.Equal(t, "p24", one.Items[0].ID)
}

func TestHealthAndTraceHeaders(t *testing.T) {
	r := newEngine(seed())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-123", w.Header().Get("X-Request-Id"))
	assert.Equal(t, "0", w.Header().Get("X-Span-Id"))
}

func TestCORSPreflight(t *testing.T) {
	r := newEngine(seed())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/posts", nil)
	req.Header.Set("Origin", "https://draiger.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
