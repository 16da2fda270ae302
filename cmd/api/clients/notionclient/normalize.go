package notionclient

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/DavidPARK0417/draiger-sub002/internal/logger"
	"github.com/DavidPARK0417/draiger-sub002/models"
)

type annotations struct {
	Bold          bool `json:"bold"`
	Italic        bool `json:"italic"`
	Strikethrough bool `json:"strikethrough"`
	Code          bool `json:"code"`
}

type richText struct {
	PlainText   string      `json:"plain_text"`
	Href        *string     `json:"href"`
	Annotations annotations `json:"annotations"`
}

type selectOption struct {
	Name string `json:"name"`
}

type dateValue struct {
	Start string `json:"start"`
}

type fileURL struct {
	URL string `json:"url"`
}

type fileValue struct {
	Name     string   `json:"name"`
	File     *fileURL `json:"file"`
	External *fileURL `json:"external"`
}

// property holds every shape a database property can take. Only the field named by
// Type is populated by the source; all others stay nil.
type property struct {
	Type        string         `json:"type"`
	Title       []richText     `json:"title"`
	RichText    []richText     `json:"rich_text"`
	Select      *selectOption  `json:"select"`
	MultiSelect []selectOption `json:"multi_select"`
	Checkbox    *bool          `json:"checkbox"`
	Date        *dateValue     `json:"date"`
	Files       []fileValue    `json:"files"`
	URL         *string        `json:"url"`
	Number      *float64       `json:"number"`
}

type rawPage struct {
	ID          string                     `json:"id"`
	CreatedTime string                     `json:"created_time"`
	Properties  map[string]json.RawMessage `json:"properties"`

	props map[string]property
}

// decodeProperties decodes each property on its own so one odd value only blanks that field.
func (p *rawPage) decodeProperties() {
	p.props = make(map[string]property, len(p.Properties))
	for name, raw := range p.Properties {
		var prop property
		if err := json.Unmarshal(raw, &prop); err != nil {
			logger.DebugWithFields("skip undecodable property", logger.Fields{
				"record_id": p.ID,
				"property":  name,
				"error":     err.Error(),
			})
			continue
		}
		p.props[name] = prop
	}
}

func (p *rawPage) text(names ...string) string {
	for _, name := range names {
		prop, ok := p.props[name]
		if !ok {
			continue
		}
		parts := prop.Title
		if len(parts) == 0 {
			parts = prop.RichText
		}
		var sb strings.Builder
		for _, rt := range parts {
			sb.WriteString(rt.PlainText)
		}
		if s := strings.TrimSpace(sb.String()); s != "" {
			return s
		}
	}
	return ""
}

func (p *rawPage) selectName(name string) string {
	if prop, ok := p.props[name]; ok && prop.Select != nil {
		return strings.TrimSpace(prop.Select.Name)
	}
	return ""
}

func (p *rawPage) multiSelect(name string) []string {
	prop, ok := p.props[name]
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(prop.MultiSelect))
	for _, opt := range prop.MultiSelect {
		if n := strings.TrimSpace(opt.Name); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func (p *rawPage) checkbox(names ...string) (bool, bool) {
	for _, name := range names {
		if prop, ok := p.props[name]; ok && prop.Checkbox != nil {
			return *prop.Checkbox, true
		}
	}
	return false, false
}

func (p *rawPage) date(name string) (time.Time, bool) {
	prop, ok := p.props[name]
	if !ok || prop.Date == nil {
		return time.Time{}, false
	}
	return parseTime(prop.Date.Start)
}

// imageURL reads files (uploaded or external) or url properties.
func (p *rawPage) imageURL(names ...string) string {
	for _, name := range names {
		prop, ok := p.props[name]
		if !ok {
			continue
		}
		for _, f := range prop.Files {
			if f.File != nil && f.File.URL != "" {
				return f.File.URL
			}
			if f.External != nil && f.External.URL != "" {
				return f.External.URL
			}
		}
		if prop.URL != nil && *prop.URL != "" {
			return *prop.URL
		}
	}
	return ""
}

// textOrNumber reads a property stored either as rich text or as a number.
func (p *rawPage) textOrNumber(name string) string {
	if s := p.text(name); s != "" {
		return s
	}
	if prop, ok := p.props[name]; ok && prop.Number != nil {
		return strconv.FormatFloat(*prop.Number, 'f', -1, 64)
	}
	return ""
}

func (p *rawPage) publishDate() time.Time {
	if t, ok := p.date("date"); ok {
		return t
	}
	t, _ := parseTime(p.CreatedTime)
	return t
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000Z07:00", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// rawRecord is one undecoded database row of a known content type.
type rawRecord interface {
	normalize() (models.ContentItem, error)
}

type postRecord struct {
	page rawPage
}

type recipeRecord struct {
	page              rawPage
	publishedProperty string
}

type normalizeOptions struct {
	publishedProperty string
}

var errMissingID = errors.New("record has no id")

func newRawRecord(ct models.ContentType, data json.RawMessage, opts normalizeOptions) (rawRecord, error) {
	var page rawPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, err
	}
	if strings.TrimSpace(page.ID) == "" {
		return nil, errMissingID
	}
	page.decodeProperties()

	switch ct {
	case models.ContentTypeRecipes:
		return recipeRecord{page: page, publishedProperty: opts.publishedProperty}, nil
	default:
		return postRecord{page: page}, nil
	}
}

func (r postRecord) normalize() (models.ContentItem, error) {
	p := r.page
	body := p.text("blogPost")
	published, _ := p.checkbox("Published", "published")

	item := models.ContentItem{
		ID:              p.ID,
		Type:            models.ContentTypePosts,
		Slug:            p.text("slug"),
		Title:           orDefault(p.text("title", "Title", "Name"), "Untitled"),
		Category:        p.selectName("category"),
		Date:            p.publishDate(),
		MetaDescription: p.text("metaDescription"),
		Tags:            p.multiSelect("tags"),
		Published:       published,
		Body:            body,
	}
	item.FeaturedImage = p.imageURL("featuredImage", "image")
	if item.FeaturedImage == "" {
		item.FeaturedImage = firstImageURL(body)
	}
	return item, nil
}

func (r recipeRecord) normalize() (models.ContentItem, error) {
	p := r.page
	body := p.text("blogPost")

	// 공개 여부: 설정된 속성 → published → Published, 속성이 없으면 공개로 본다.
	published, ok := p.checkbox(r.publishedProperty, "published", "Published")
	if !ok {
		published = true
	}

	category := p.text("category")
	if category == "" {
		category = p.selectName("category")
	}

	item := models.ContentItem{
		ID:              p.ID,
		Type:            models.ContentTypeRecipes,
		Slug:            p.text("slug"),
		Title:           orDefault(p.text("title", "Title", "Name"), "Untitled"),
		Category:        category,
		Date:            p.publishDate(),
		MetaDescription: p.text("description", "metaDescription"),
		Tags:            p.multiSelect("tags"),
		Published:       published,
		Body:            body,
		Difficulty:      p.selectName("difficulty"),
		CookingTime:     p.textOrNumber("cookingtime"),
	}
	item.FeaturedImage = p.imageURL("image", "featuredImage")
	if item.FeaturedImage == "" {
		item.FeaturedImage = firstImageURL(body)
	}
	return item, nil
}

// normalizeAll converts raw rows, logging and skipping the ones that cannot be read.
func normalizeAll(ct models.ContentType, raws []json.RawMessage, opts normalizeOptions) []models.ContentItem {
	items := make([]models.ContentItem, 0, len(raws))
	for i, data := range raws {
		item, err := normalizeOne(ct, data, opts)
		if err != nil {
			perr := &PartialRecordError{Index: i, Err: err}
			var head struct {
				ID string `json:"id"`
			}
			if json.Unmarshal(data, &head) == nil {
				perr.ID = head.ID
			}
			logger.WarnWithFields("skip malformed record", logger.Fields{
				"content_type": string(ct),
				"error":        perr.Error(),
			})
			continue
		}
		items = append(items, item)
	}
	return items
}

func normalizeOne(ct models.ContentType, data json.RawMessage, opts normalizeOptions) (models.ContentItem, error) {
	rec, err := newRawRecord(ct, data, opts)
	if err != nil {
		return models.ContentItem{}, err
	}
	return rec.normalize()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
