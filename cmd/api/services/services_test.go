package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DavidPARK0417/draiger-sub002/cmd/api/cache"
	"github.com/DavidPARK0417/draiger-sub002/cmd/api/clients/notionclient"
	"github.com/DavidPARK0417/draiger-sub002/cmd/api/dto"
	"github.com/DavidPARK0417/draiger-sub002/cmd/internal/eventbus"
	"github.com/DavidPARK0417/draiger-sub002/config"
	"github.com/DavidPARK0417/draiger-sub002/events"
	"github.com/DavidPARK0417/draiger-sub002/models"
)

var errDown = fmt.Errorf("%w: connection refused", notionclient.ErrSourceUnavailable)

// fakeSource counts calls and can fail per content type or category.
type fakeSource struct {
	mu        sync.Mutex
	items     map[models.ContentType][]models.ContentItem
	failAll   bool
	failTypes map[models.ContentType]bool
	failCats  map[string]bool
	bodies    map[string]string
	bodyErr   error
	fetches   int32
	counts    int32
	contents  int32
}

func (f *fakeSource) fail(filter notionclient.Filter) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failAll || f.failTypes[filter.ContentType] || (filter.Category != "" && f.failCats[filter.Category])
}

func (f *fakeSource) matching(filter notionclient.Filter) []models.ContentItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.ContentItem{}
	for _, it := range f.items[filter.ContentType] {
		if filter.Category == "" || it.Category == filter.Category {
			out = append(out, it)
		}
	}
	models.SortByDateDesc(out)
	return out
}

func (f *fakeSource) FetchAll(_ context.Context, filter notionclient.Filter) ([]models.ContentItem, error) {
	atomic.AddInt32(&f.fetches, 1)
	if f.fail(filter) {
		return nil, errDown
	}
	return f.matching(filter), nil
}

func (f *fakeSource) Count(_ context.Context, filter notionclient.Filter) (int, error) {
	atomic.AddInt32(&f.counts, 1)
	if f.fail(filter) {
		return 0, errDown
	}
	return len(f.matching(filter)), nil
}

func (f *fakeSource) FindBySlug(_ context.Context, ct models.ContentType, slug string) (*models.ContentItem, error) {
	if f.fail(notionclient.Filter{ContentType: ct}) {
		return nil, errDown
	}
	for _, it := range f.matching(notionclient.Filter{ContentType: ct}) {
		if it.Slug == slug {
			return &it, nil
		}
	}
	return nil, nil
}

func (f *fakeSource) FetchContent(_ context.Context, ct models.ContentType, pageID string) (string, error) {
	atomic.AddInt32(&f.contents, 1)
	if f.fail(notionclient.Filter{ContentType: ct}) {
		return "", errDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.bodyErr != nil {
		return "", f.bodyErr
	}
	return f.bodies[pageID], nil
}

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func makeItems(ct models.ContentType, n int, categories []string) []models.ContentItem {
	out := make([]models.ContentItem, n)
	for i := range out {
		cat := ""
		if len(categories) > 0 {
			cat = categories[i%len(categories)]
		}
		out[i] = models.ContentItem{
			ID:        fmt.Sprintf("%s-%03d", ct, i),
			Type:      ct,
			Slug:      fmt.Sprintf("%s-slug-%d", ct, i),
			Title:     fmt.Sprintf("%s title %d", ct, i),
			Category:  cat,
			Date:      base.Add(time.Duration(i) * time.Hour),
			Tags:      []string{},
			Published: true,
		}
	}
	return out
}

func testConfig() config.AppConfig {
	return config.Default()
}

func newServices(src Source, opts ...cache.Option) (*ContentService, *CategoryService, *HomeService) {
	cfg := testConfig()
	c := cache.New(opts...)
	content := NewContentService(src, c, cfg)
	return content, NewCategoryService(src, c, cfg), NewHomeService(content, cfg)
}

func postCategories() []string {
	return config.Default().Content.Categories["posts"]
}

func TestListPage_TwentyFiveItems(t *testing.T) {
	src := &fakeSource{items: map[models.ContentType][]models.ContentItem{
		models.ContentTypePosts: makeItems(models.ContentTypePosts, 25, postCategories()),
	}}
	content, _, _ := newServices(src)
	ctx := context.Background()

	page1, err := content.ListPage(ctx, models.ContentTypePosts, 1, 12)
	require.NoError(t, err)
	assert.Len(t, page1.Items, 12)
	assert.Equal(t, 25, page1.TotalCount)
	assert.Equal(t, 3, page1.TotalPages)
	assert.True(t, page1.HasNextPage)
	assert.False(t, page1.HasPrevPage)
	assert.Equal(t, "posts-024", page1.Items[0].ID, "newest first")

	page3, err := content.ListPage(ctx, models.ContentTypePosts, 3, 12)
	require.NoError(t, err)
	assert.Len(t, page3.Items, 1)
	assert.False(t, page3.HasNextPage)
	assert.True(t, page3.HasPrevPage)

	page4, err := content.ListPage(ctx, models.ContentTypePosts, 4, 12)
	require.NoError(t, err)
	assert.Empty(t, page4.Items)
	assert.Equal(t, 25, page4.TotalCount)
	assert.Equal(t, 3, page4.CurrentPage)
}

func TestListPage_CachedWithinTTL(t *testing.T) {
	src := &fakeSource{items: map[models.ContentType][]models.ContentItem{
		models.ContentTypePosts: makeItems(models.ContentTypePosts, 5, nil),
	}}
	content, _, _ := newServices(src)
	ctx := context.Background()

	first, err := content.ListPage(ctx, models.ContentTypePosts, 1, 12)
	require.NoError(t, err)
	second, err := content.ListPage(ctx, models.ContentTypePosts, 1, 12)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&src.fetches))
}

func TestListPage_AlwaysFailingSource(t *testing.T) {
	src := &fakeSource{failAll: true}
	content, categories, _ := newServices(src)
	ctx := context.Background()

	page, err := content.ListPage(ctx, models.ContentTypePosts, 2, 12)
	require.ErrorIs(t, err, notionclient.ErrSourceUnavailable)
	assert.Equal(t, dto.EmptyPage[models.ContentItem](), page)

	search, err := content.SearchPage(ctx, models.ContentTypeRecipes, "kimchi", 1, 12)
	require.Error(t, err)
	assert.Equal(t, dto.EmptyPage[models.ContentItem](), search)

	counts, err := categories.CountsByCategory(ctx, models.ContentTypePosts)
	require.Error(t, err)
	assert.Equal(t, 0, counts.Total)
	assert.Equal(t, 0, counts.Categorized)
	require.Len(t, counts.Categories, len(postCategories()))
	for i, item := range counts.Categories {
		assert.Equal(t, postCategories()[i], item.Name)
		assert.Equal(t, 0, item.Count)
	}

	latest, err := content.Latest(ctx, models.ContentTypePosts, 3)
	require.Error(t, err)
	assert.NotNil(t, latest)
	assert.Empty(t, latest)
}

func TestListPage_StaleOnError(t *testing.T) {
	now := base
	var mu sync.Mutex
	clock := func() time.Time { mu.Lock(); defer mu.Unlock(); return now }

	src := &fakeSource{items: map[models.ContentType][]models.ContentItem{
		models.ContentTypePosts: makeItems(models.ContentTypePosts, 3, nil),
	}}
	content, _, _ := newServices(src, cache.WithClock(clock))
	ctx := context.Background()

	fresh, err := content.ListPage(ctx, models.ContentTypePosts, 1, 12)
	require.NoError(t, err)

	mu.Lock()
	now = now.Add(time.Hour)
	mu.Unlock()
	src.mu.Lock()
	src.failAll = true
	src.mu.Unlock()

	stale, err := content.ListPage(ctx, models.ContentTypePosts, 1, 12)
	require.NoError(t, err)
	assert.Equal(t, fresh, stale)
}

func TestListPageByCategory(t *testing.T) {
	cats := postCategories()
	src := &fakeSource{items: map[models.ContentType][]models.ContentItem{
		models.ContentTypePosts: makeItems(models.ContentTypePosts, 14, cats),
	}}
	content, _, _ := newServices(src)
	ctx := context.Background()

	page, err := content.ListPageByCategory(ctx, models.ContentTypePosts, cats[0], 1, 12)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalCount)
	for _, it := range page.Items {
		assert.Equal(t, cats[0], it.Category)
	}

	_, err = content.ListPageByCategory(ctx, models.ContentTypePosts, "없는 카테고리", 1, 12)
	assert.ErrorIs(t, err, ErrInvalidCategory)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	// 레시피는 카테고리 목록이 없어 임의 값을 허용한다.
	_, err = content.ListPageByCategory(ctx, models.ContentTypeRecipes, "찌개", 1, 12)
	assert.NoError(t, err)
}

func TestSearchPage(t *testing.T) {
	items := makeItems(models.ContentTypeRecipes, 4, nil)
	items[1].Title = "Kimchi stew"
	items[3].MetaDescription = "with kimchi"
	src := &fakeSource{items: map[models.ContentType][]models.ContentItem{models.ContentTypeRecipes: items}}
	content, _, _ := newServices(src)
	ctx := context.Background()

	page, err := content.SearchPage(ctx, models.ContentTypeRecipes, "KIMCHI", 1, 12)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalCount)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "recipes-003", page.Items[0].ID)
	assert.Equal(t, "recipes-001", page.Items[1].ID)

	for _, q := range []string{"", "   "} {
		res, err := content.SearchPage(ctx, models.ContentTypeRecipes, q, 1, 12)
		assert.ErrorIs(t, err, ErrEmptyQuery)
		assert.ErrorIs(t, err, ErrInvalidRequest)
		assert.Equal(t, dto.EmptyPage[models.ContentItem](), res)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&src.fetches), "blank queries never reach the source")
}

func TestUnknownContentType(t *testing.T) {
	src := &fakeSource{}
	content, categories, _ := newServices(src)

	_, err := content.ListPage(context.Background(), models.ContentType("videos"), 1, 12)
	assert.ErrorIs(t, err, ErrUnknownContentType)
	_, err = categories.CountsByCategory(context.Background(), models.ContentType("videos"))
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestCountsByCategory_OneCategoryFails(t *testing.T) {
	cats := postCategories()
	src := &fakeSource{
		items:    map[models.ContentType][]models.ContentItem{models.ContentTypePosts: makeItems(models.ContentTypePosts, 21, cats)},
		failCats: map[string]bool{cats[2]: true},
	}
	_, categories, _ := newServices(src)

	counts, err := categories.CountsByCategory(context.Background(), models.ContentTypePosts)
	require.NoError(t, err)

	require.Len(t, counts.Categories, 7)
	for i, item := range counts.Categories {
		assert.Equal(t, cats[i], item.Name, "canonical order")
		if i == 2 {
			assert.Equal(t, 0, item.Count)
			continue
		}
		assert.Equal(t, 3, item.Count)
	}
	assert.Equal(t, 18, counts.Categorized)
	assert.Equal(t, 21, counts.Total)
}

func TestCountsByCategory_RoundTrip(t *testing.T) {
	cats := postCategories()
	items := makeItems(models.ContentTypePosts, 10, cats)
	items = append(items, models.ContentItem{ID: "uncategorized", Type: models.ContentTypePosts, Published: true, Date: base})
	src := &fakeSource{items: map[models.ContentType][]models.ContentItem{models.ContentTypePosts: items}}
	content, categories, _ := newServices(src)
	ctx := context.Background()

	counts, err := categories.CountsByCategory(ctx, models.ContentTypePosts)
	require.NoError(t, err)
	assert.Equal(t, 11, counts.Total)
	assert.Equal(t, 10, counts.Categorized)

	for _, c := range counts.Categories {
		page, err := content.ListPageByCategory(ctx, models.ContentTypePosts, c.Name, 1, 12)
		require.NoError(t, err)
		assert.Equal(t, c.Count, page.TotalCount, c.Name)
	}

	total, err := categories.TotalCount(ctx, models.ContentTypePosts)
	require.NoError(t, err)
	assert.Equal(t, counts.Total, total)

	data, err := json.Marshal(counts)
	require.NoError(t, err)
	var decoded dto.CategoryCountsDTO
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, counts, decoded)
}

func TestCountsByCategory_Cached(t *testing.T) {
	src := &fakeSource{items: map[models.ContentType][]models.ContentItem{
		models.ContentTypePosts: makeItems(models.ContentTypePosts, 3, postCategories()),
	}}
	_, categories, _ := newServices(src)

	_, err := categories.CountsByCategory(context.Background(), models.ContentTypePosts)
	require.NoError(t, err)
	calls := atomic.LoadInt32(&src.counts)
	_, err = categories.CountsByCategory(context.Background(), models.ContentTypePosts)
	require.NoError(t, err)

	assert.Equal(t, int32(len(postCategories())+1), calls)
	assert.Equal(t, calls, atomic.LoadInt32(&src.counts))
}

func TestLatest(t *testing.T) {
	src := &fakeSource{items: map[models.ContentType][]models.ContentItem{
		models.ContentTypePosts: makeItems(models.ContentTypePosts, 5, nil),
	}}
	content, _, _ := newServices(src)

	items, err := content.Latest(context.Background(), models.ContentTypePosts, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "posts-004", items[0].ID)

	items, err = content.Latest(context.Background(), models.ContentTypePosts, 0)
	require.NoError(t, err)
	assert.Len(t, items, testConfig().Content.LatestLimit)
}

func TestGetBySlug(t *testing.T) {
	src := &fakeSource{items: map[models.ContentType][]models.ContentItem{
		models.ContentTypeRecipes: makeItems(models.ContentTypeRecipes, 2, nil),
	}}
	content, _, _ := newServices(src)

	item, err := content.GetBySlug(context.Background(), models.ContentTypeRecipes, "recipes-slug-1")
	require.NoError(t, err)
	assert.Equal(t, "recipes-001", item.ID)

	_, err = content.GetBySlug(context.Background(), models.ContentTypeRecipes, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = content.GetBySlug(context.Background(), models.ContentTypeRecipes, " ")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestHomeLatest_OneSideFails(t *testing.T) {
	src := &fakeSource{
		items:     map[models.ContentType][]models.ContentItem{models.ContentTypePosts: makeItems(models.ContentTypePosts, 5, nil)},
		failTypes: map[models.ContentType]bool{models.ContentTypeRecipes: true},
	}
	_, _, home := newServices(src)

	res, err := home.Latest(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, res.Posts, 3)
	assert.NotNil(t, res.Recipes)
	assert.Empty(t, res.Recipes)

	src.mu.Lock()
	src.failAll = true
	src.mu.Unlock()
	_, _, home = newServices(src)
	res, err = home.Latest(context.Background(), 3)
	require.Error(t, err)
	assert.Empty(t, res.Posts)
	assert.Empty(t, res.Recipes)
}

func TestHomeSearch(t *testing.T) {
	posts := makeItems(models.ContentTypePosts, 3, nil)
	posts[0].Title = "Kimchi economics"
	recipes := makeItems(models.ContentTypeRecipes, 3, nil)
	recipes[2].Title = "Kimchi stew"
	src := &fakeSource{items: map[models.ContentType][]models.ContentItem{
		models.ContentTypePosts:   posts,
		models.ContentTypeRecipes: recipes,
	}}
	_, _, home := newServices(src)

	res, err := home.Search(context.Background(), "kimchi", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "/menu/recipes-slug-2", res.Results[0].Href)
	assert.Equal(t, models.ContentTypeRecipes, res.Results[0].Type)

	res, err = home.Search(context.Background(), "kimchi", 0)
	require.NoError(t, err)
	require.Len(t, res.Results, 2)
	assert.Equal(t, "/insight/posts-slug-0", res.Results[1].Href)

	_, err = home.Search(context.Background(), " ", 5)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestHandleInvalidation(t *testing.T) {
	src := &fakeSource{items: map[models.ContentType][]models.ContentItem{
		models.ContentTypePosts: makeItems(models.ContentTypePosts, 2, nil),
	}}
	content, _, _ := newServices(src)
	ctx := context.Background()

	_, err := content.ListPage(ctx, models.ContentTypePosts, 1, 12)
	require.NoError(t, err)

	typed := events.NewContentInvalidated("test", models.ContentTypePosts, "edited")
	evt, err := eventbus.NewEvent(typed.ID, typed)
	require.NoError(t, err)
	require.NoError(t, content.HandleInvalidation(ctx, evt))

	_, err = content.ListPage(ctx, models.ContentTypePosts, 1, 12)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&src.fetches))

	bad := eventbus.Event{ID: "x", Type: events.EventType("unknown"), Payload: []byte(`{}`)}
	assert.Error(t, content.HandleInvalidation(ctx, bad))
}

func TestRecoverInto(t *testing.T) {
	run := func() (err error) {
		defer recoverInto("op", &err)
		panic(errors.New("kaboom"))
	}
	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestCountsByCategory_PartialResultNotCached(t *testing.T) {
	cats := postCategories()
	src := &fakeSource{
		items:    map[models.ContentType][]models.ContentItem{models.ContentTypePosts: makeItems(models.ContentTypePosts, 21, cats)},
		failCats: map[string]bool{cats[0]: true},
	}
	_, categories, _ := newServices(src)
	ctx := context.Background()

	partial, err := categories.CountsByCategory(ctx, models.ContentTypePosts)
	require.NoError(t, err)
	assert.Equal(t, 0, partial.Categories[0].Count)
	calls := atomic.LoadInt32(&src.counts)

	src.mu.Lock()
	src.failCats = nil
	src.mu.Unlock()

	recovered, err := categories.CountsByCategory(ctx, models.ContentTypePosts)
	require.NoError(t, err)
	assert.Equal(t, 3, recovered.Categories[0].Count)
	assert.Equal(t, 21, recovered.Categorized)
	assert.Equal(t, 2*calls, atomic.LoadInt32(&src.counts), "partial result triggers a refetch")
}

func TestCountsByCategory_PartialFailurePrefersStale(t *testing.T) {
	now := base
	var mu sync.Mutex
	clock := func() time.Time { mu.Lock(); defer mu.Unlock(); return now }

	cats := postCategories()
	src := &fakeSource{items: map[models.ContentType][]models.ContentItem{
		models.ContentTypePosts: makeItems(models.ContentTypePosts, 21, cats),
	}}
	_, categories, _ := newServices(src, cache.WithClock(clock))
	ctx := context.Background()

	complete, err := categories.CountsByCategory(ctx, models.ContentTypePosts)
	require.NoError(t, err)

	mu.Lock()
	now = now.Add(time.Hour)
	mu.Unlock()
	src.mu.Lock()
	src.failCats = map[string]bool{cats[1]: true}
	src.mu.Unlock()

	counts, err := categories.CountsByCategory(ctx, models.ContentTypePosts)
	require.NoError(t, err)
	assert.Equal(t, complete, counts)
	assert.Equal(t, 3, counts.Categories[1].Count)
}

func TestGetBySlug_BodyFromContent(t *testing.T) {
	items := makeItems(models.ContentTypePosts, 2, nil)
	items[1].Body = "inline body"
	src := &fakeSource{
		items:  map[models.ContentType][]models.ContentItem{models.ContentTypePosts: items},
		bodies: map[string]string{"posts-001": "# Heading\n\nblock body"},
	}
	content, _, _ := newServices(src)
	ctx := context.Background()

	item, err := content.GetBySlug(ctx, models.ContentTypePosts, "posts-slug-1")
	require.NoError(t, err)
	assert.Equal(t, "# Heading\n\nblock body", item.Body)

	again, err := content.GetBySlug(ctx, models.ContentTypePosts, "posts-slug-1")
	require.NoError(t, err)
	assert.Equal(t, item.Body, again.Body)
	assert.Equal(t, int32(1), atomic.LoadInt32(&src.contents), "content is cached")

	item.Body = "changed by caller"
	again, err = content.GetBySlug(ctx, models.ContentTypePosts, "posts-slug-1")
	require.NoError(t, err)
	assert.Equal(t, "# Heading\n\nblock body", again.Body)
}

func TestGetBySlug_ContentFailureKeepsInlineBody(t *testing.T) {
	items := makeItems(models.ContentTypePosts, 2, nil)
	items[0].Body = "inline body"
	src := &fakeSource{
		items:   map[models.ContentType][]models.ContentItem{models.ContentTypePosts: items},
		bodyErr: errDown,
	}
	content, _, _ := newServices(src)

	item, err := content.GetBySlug(context.Background(), models.ContentTypePosts, "posts-slug-0")
	require.NoError(t, err)
	assert.Equal(t, "posts-000", item.ID)
	assert.Equal(t, "inline body", item.Body)
}

func TestContent(t *testing.T) {
	testCases := []struct {
		name    string
		ct      models.ContentType
		pageID  string
		want    string
		wantErr error
	}{
		{name: "known page", ct: models.ContentTypeRecipes, pageID: "recipes-000", want: "- step"},
		{name: "unknown page is empty", ct: models.ContentTypeRecipes, pageID: "missing", want: ""},
		{name: "blank id", ct: models.ContentTypeRecipes, pageID: "  ", wantErr: ErrInvalidRequest},
		{name: "unknown type", ct: models.ContentType("videos"), pageID: "x", wantErr: ErrUnknownContentType},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			src := &fakeSource{bodies: map[string]string{"recipes-000": "- step"}}
			content, _, _ := newServices(src)

			body, err := content.Content(context.Background(), testCase.ct, testCase.pageID)
			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
				assert.Equal(t, int32(0), atomic.LoadInt32(&src.contents))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.want, body)
		})
	}
}
