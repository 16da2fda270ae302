package notionclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/DavidPARK0417/draiger-sub002/cmd/api/httpclient"
	"github.com/DavidPARK0417/draiger-sub002/config"
	"github.com/DavidPARK0417/draiger-sub002/models"
)

// Client는 Notion 호환 데이터베이스 쿼리 API를 호출하는 얇은 클라이언트다.
//
// - 콘텐츠 타입마다 별도의 자격 증명(API 키 + 데이터베이스 ID)을 사용한다.
// - 자격 증명은 호출 시점에 환경변수에서 읽는다. 누락되면 MissingConfigError 를 반환한다.
// - 재시도는 하지 않는다. 실패는 ErrSourceUnavailable 로 감싸서 돌려준다.
// - 요청 간격 제한은 레시피 데이터베이스에만 적용된다.
type Client struct {
	base            *httpclient.BaseClient
	version         string
	recipePublished string
	secret          func(string) string
	throttles       map[models.ContentType]*throttle
}

// Options configures a Client. Zero values fall back to config.Default().
type Options struct {
	BaseURL                 string
	NotionVersion           string
	Timeout                 time.Duration
	// MinRequestInterval spaces consecutive recipe database requests.
	MinRequestInterval      time.Duration
	RecipePublishedProperty string
	Transport               http.RoundTripper
	// Secret resolves credentials by environment key. Defaults to config.Secret.
	Secret func(string) string
}

// Filter selects the records of one fetch.
type Filter struct {
	ContentType models.ContentType
	Category    string
}

const queryPageSize = 100

func New(opts Options) *Client {
	d := config.Default().Source
	if opts.BaseURL == "" {
		opts.BaseURL = d.BaseURL
	}
	if opts.NotionVersion == "" {
		opts.NotionVersion = d.NotionVersion
	}
	if opts.RecipePublishedProperty == "" {
		opts.RecipePublishedProperty = d.RecipePublishedProperty
	}
	if opts.Secret == nil {
		opts.Secret = config.Secret
	}
	if opts.Timeout <= 0 {
		opts.Timeout = httpclient.DefaultTimeout
	}
	return &Client{
		base: httpclient.NewBaseClient(opts.BaseURL, httpclient.Config{
			Timeout:   opts.Timeout,
			Transport: opts.Transport,
		}),
		version:         opts.NotionVersion,
		recipePublished: opts.RecipePublishedProperty,
		secret:          opts.Secret,
		throttles: map[models.ContentType]*throttle{
			// 대기열이 호출 타임아웃보다 길어지면 기다리지 않고 실패한다.
			models.ContentTypeRecipes: {interval: opts.MinRequestInterval, maxWait: opts.Timeout},
		},
	}
}

// NewFromConfig builds a Client from the application config.
func NewFromConfig(cfg config.AppConfig) *Client {
	return New(Options{
		BaseURL:                 cfg.Source.BaseURL,
		NotionVersion:           cfg.Source.NotionVersion,
		Timeout:                 config.ParseDuration(cfg.Source.Timeout, httpclient.DefaultTimeout),
		MinRequestInterval:      config.ParseDuration(cfg.Source.MinRequestInterval, 0),
		RecipePublishedProperty: cfg.Source.RecipePublishedProperty,
	})
}

type credentials struct {
	contentType models.ContentType
	apiKey      string
	databaseID  string
}

func (c *Client) credentials(ct models.ContentType) (credentials, error) {
	var keyEnv, dbEnv string
	switch ct {
	case models.ContentTypePosts:
		keyEnv, dbEnv = config.EnvPostsAPIKey, config.EnvPostsDatabaseID
	case models.ContentTypeRecipes:
		keyEnv, dbEnv = config.EnvRecipesAPIKey, config.EnvRecipesDatabaseID
	default:
		return credentials{}, unavailable("unsupported content type %q", ct)
	}
	creds := credentials{contentType: ct, apiKey: c.secret(keyEnv), databaseID: c.secret(dbEnv)}
	if creds.apiKey == "" {
		return credentials{}, &MissingConfigError{Key: keyEnv}
	}
	if creds.databaseID == "" {
		return credentials{}, &MissingConfigError{Key: dbEnv}
	}
	return creds, nil
}

// publishedProperty returns the checkbox property gating publication.
func (c *Client) publishedProperty(ct models.ContentType) string {
	if ct == models.ContentTypeRecipes {
		if p := c.secret(config.EnvRecipePublished); p != "" {
			return p
		}
		return c.recipePublished
	}
	return "Published"
}

// FetchAll returns every published record matching f, newest first.
func (c *Client) FetchAll(ctx context.Context, f Filter) ([]models.ContentItem, error) {
	creds, err := c.credentials(f.ContentType)
	if err != nil {
		return nil, err
	}

	published := c.publishedProperty(f.ContentType)
	conditions := []map[string]any{checkboxEquals(published, true)}
	if f.Category != "" {
		conditions = append(conditions, categoryEquals(f.ContentType, f.Category))
	}

	raws, err := c.queryAll(ctx, creds, combine(conditions))
	if errors.Is(err, errUnknownProperty) {
		// 속성이 없는 스키마: 필터 없이 전부 가져온 뒤 아래에서 걸러낸다.
		raws, err = c.queryAll(ctx, creds, nil)
	}
	if err != nil {
		return nil, err
	}

	items := normalizeAll(f.ContentType, raws, normalizeOptions{publishedProperty: published})
	items = models.OnlyPublished(items)
	if f.Category != "" {
		items = filterCategory(items, f.Category)
	}
	models.SortByDateDesc(items)
	return items, nil
}

// Count returns the number of published records matching f.
func (c *Client) Count(ctx context.Context, f Filter) (int, error) {
	items, err := c.FetchAll(ctx, f)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// FindBySlug returns the published record with the given slug, or nil when absent.
func (c *Client) FindBySlug(ctx context.Context, ct models.ContentType, slug string) (*models.ContentItem, error) {
	creds, err := c.credentials(ct)
	if err != nil {
		return nil, err
	}
	published := c.publishedProperty(ct)
	filter := combine([]map[string]any{
		richTextEquals("slug", slug),
		checkboxEquals(published, true),
	})

	raws, err := c.queryAll(ctx, creds, filter)
	if errors.Is(err, errUnknownProperty) {
		raws, err = c.queryAll(ctx, creds, combine([]map[string]any{richTextEquals("slug", slug)}))
	}
	if err != nil {
		return nil, err
	}
	for _, it := range models.OnlyPublished(normalizeAll(ct, raws, normalizeOptions{publishedProperty: published})) {
		if it.Slug == slug {
			return &it, nil
		}
	}
	return nil, nil
}

type sortSpec struct {
	Timestamp string `json:"timestamp,omitempty"`
	Property  string `json:"property,omitempty"`
	Direction string `json:"direction"`
}

type queryBody struct {
	Filter      map[string]any `json:"filter,omitempty"`
	Sorts       []sortSpec     `json:"sorts,omitempty"`
	PageSize    int            `json:"page_size,omitempty"`
	StartCursor string         `json:"start_cursor,omitempty"`
}

type queryResponse struct {
	Results    []json.RawMessage `json:"results"`
	NextCursor *string           `json:"next_cursor"`
	HasMore    bool              `json:"has_more"`
}

// queryAll follows the cursor until the source reports no more results.
func (c *Client) queryAll(ctx context.Context, creds credentials, filter map[string]any) ([]json.RawMessage, error) {
	var all []json.RawMessage
	body := queryBody{
		Filter:   filter,
		Sorts:    []sortSpec{{Timestamp: "created_time", Direction: "descending"}},
		PageSize: queryPageSize,
	}
	for {
		resp, err := c.queryPage(ctx, creds, body)
		if err != nil {
			return nil, err
		}
		all = append(all, resp.Results...)
		if !resp.HasMore || resp.NextCursor == nil || *resp.NextCursor == "" {
			return all, nil
		}
		if *resp.NextCursor == body.StartCursor {
			return nil, unavailable("cursor did not advance (%s)", body.StartCursor)
		}
		body.StartCursor = *resp.NextCursor
	}
}

func (c *Client) queryPage(ctx context.Context, creds credentials, body queryBody) (queryResponse, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return queryResponse{}, err
	}
	relPath := path.Join("/v1/databases", creds.databaseID, "query")
	out, status, errBody, err := c.send(ctx, creds, http.MethodPost, relPath, nil, bytes.NewReader(buf))
	if err != nil {
		return queryResponse{}, err
	}
	if status != http.StatusOK {
		if status == http.StatusBadRequest && isUnknownProperty(errBody) && body.Filter != nil {
			return queryResponse{}, errUnknownProperty
		}
		return queryResponse{}, unavailable("database query: status=%d body=%s", status, errBody)
	}
	return out, nil
}

// send issues one request against the source. A non-200 answer is returned as status
// and a truncated body so callers can classify it.
func (c *Client) send(ctx context.Context, creds credentials, method, relPath string, query url.Values, body io.Reader) (queryResponse, int, string, error) {
	if err := c.throttles[creds.contentType].wait(ctx); err != nil {
		return queryResponse{}, 0, "", unavailable("%v", err)
	}

	req, err := c.base.NewRequest(ctx, method, relPath, query, body)
	if err != nil {
		return queryResponse{}, 0, "", unavailable("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.apiKey)
	req.Header.Set("Notion-Version", c.version)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return queryResponse{}, 0, "", unavailable("%v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return queryResponse{}, resp.StatusCode, string(b), nil
	}

	var out queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return queryResponse{}, resp.StatusCode, "", unavailable("decode response: %v", err)
	}
	return out, resp.StatusCode, "", nil
}

func isUnknownProperty(body string) bool {
	return strings.Contains(body, "Could not find property") ||
		(strings.Contains(body, "validation_error") && strings.Contains(body, "property"))
}

func checkboxEquals(property string, v bool) map[string]any {
	return map[string]any{"property": property, "checkbox": map[string]any{"equals": v}}
}

func richTextEquals(property, v string) map[string]any {
	return map[string]any{"property": property, "rich_text": map[string]any{"equals": v}}
}

// categoryEquals reflects the schemas in use: posts keep the category in a select,
// recipes in a rich text property.
func categoryEquals(ct models.ContentType, category string) map[string]any {
	if ct == models.ContentTypeRecipes {
		return richTextEquals("category", category)
	}
	return map[string]any{"property": "category", "select": map[string]any{"equals": category}}
}

func combine(conditions []map[string]any) map[string]any {
	switch len(conditions) {
	case 0:
		return nil
	case 1:
		return conditions[0]
	}
	and := make([]any, len(conditions))
	for i, c := range conditions {
		and[i] = c
	}
	return map[string]any{"and": and}
}

func filterCategory(items []models.ContentItem, category string) []models.ContentItem {
	out := items[:0]
	for _, it := range items {
		if it.Category == category {
			out = append(out, it)
		}
	}
	return out
}

// errThrottleBusy is returned when the next free slot is further away than maxWait.
var errThrottleBusy = errors.New("request queue is full")

// throttle spaces consecutive requests by at least interval. Each caller reserves a
// slot under the lock and sleeps outside it.
type throttle struct {
	mu       sync.Mutex
	interval time.Duration
	// maxWait caps how long a caller may wait for its slot. 0 means no cap.
	maxWait time.Duration
	next    time.Time
}

func (t *throttle) wait(ctx context.Context) error {
	if t == nil || t.interval <= 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	now := time.Now()
	slot := t.next
	if slot.Before(now) {
		slot = now
	}
	d := slot.Sub(now)
	if t.maxWait > 0 && d > t.maxWait {
		t.mu.Unlock()
		return fmt.Errorf("%w: next slot in %s", errThrottleBusy, d.Round(time.Millisecond))
	}
	t.next = slot.Add(t.interval)
	t.mu.Unlock()

	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
