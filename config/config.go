package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Server   ServerConfig   `yaml:"server"`
	Source   SourceConfig   `yaml:"source"`
	Content  ContentConfig  `yaml:"content"`
	Cache    CacheConfig    `yaml:"cache"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Events   EventsConfig   `yaml:"events"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// SlowRequest 보다 오래 걸린 요청은 경고 로그를 남긴다. (예: "2s", 비우면 끔)
	SlowRequest string `yaml:"slow_request"`
}

// SourceConfig 는 원격 콘텐츠 소스(Notion 호환 API) 호출 설정이다.
// 자격 증명(API 키, 데이터베이스 ID)은 여기에 두지 않고 환경변수에서만 읽는다.
type SourceConfig struct {
	BaseURL       string `yaml:"base_url"`
	NotionVersion string `yaml:"notion_version"`
	// Timeout 은 소스 호출 1회의 최대 대기 시간이다. (예: "5s")
	Timeout string `yaml:"timeout"`
	// MinRequestInterval 은 레시피 데이터베이스 연속 요청 사이의 최소 간격이다.
	// 대기 시간이 Timeout 을 넘으면 요청하지 않고 실패한다.
	MinRequestInterval string `yaml:"min_request_interval"`
	// RecipePublishedProperty 는 레시피 DB의 공개 여부 체크박스 속성 이름이다.
	RecipePublishedProperty string `yaml:"recipe_published_property"`
}

type ContentConfig struct {
	PageSize    int                 `yaml:"page_size"`
	LatestLimit int                 `yaml:"latest_limit"`
	SearchLimit int                 `yaml:"search_limit"`
	Categories  map[string][]string `yaml:"categories"`
}

// EndpointCache is the cache policy of one endpoint family.
type EndpointCache struct {
	TTLSeconds int  `yaml:"ttl_seconds"`
	ForceFresh bool `yaml:"force_fresh"`
}

func (e EndpointCache) TTL() time.Duration {
	return time.Duration(e.TTLSeconds) * time.Second
}

type CacheConfig struct {
	Listing         EndpointCache `yaml:"listing"`
	Search          EndpointCache `yaml:"search"`
	Latest          EndpointCache `yaml:"latest"`
	Counts          EndpointCache `yaml:"counts"`
	// Content 는 상세 페이지 본문(블록 → 마크다운) 캐시 정책이다.
	Content         EndpointCache `yaml:"content"`
	CleanupInterval string        `yaml:"cleanup_interval"`
	// FetchTimeout 은 여러 요청이 공유하는 소스 조회 1건의 상한이다. (예: "30s")
	FetchTimeout    string        `yaml:"fetch_timeout"`
}

// SnapshotConfig 는 stale-on-error 용 영속 스냅샷(MongoDB) 설정이다.
// MONGO_URI 가 비어 있으면 스냅샷 저장소를 사용하지 않는다.
type SnapshotConfig struct {
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

type EventsConfig struct {
	Topic   string `yaml:"topic"`
	GroupID string `yaml:"group_id"`
}

// Environment variables holding secrets and connection strings.
const (
	EnvPostsAPIKey       = "NOTION_API_KEY"
	EnvPostsDatabaseID   = "NOTION_DATABASE_ID"
	EnvRecipesAPIKey     = "NOTION_RECIPE_API_KEY"
	EnvRecipesDatabaseID = "NOTION_RECIPE_DATABASE_ID"
	EnvRecipePublished   = "NOTION_RECIPE_PUBLISHED_PROPERTY"
	EnvMongoURI          = "MONGO_URI"
	EnvKafkaBrokers      = "KAFKA_BOOTSTRAP_SERVERS"
	EnvLogLevel          = "LOG_LEVEL"
)

var (
	mu     sync.Mutex
	config *AppConfig
)

// Default returns the configuration used when config.yaml is absent.
func Default() AppConfig {
	return AppConfig{
		Logging: LoggingConfig{Level: "info"},
		Server:  ServerConfig{Addr: ":8080"},
		Source: SourceConfig{
			BaseURL:                 "https://api.notion.com",
			NotionVersion:           "2022-06-28",
			Timeout:                 "5s",
			RecipePublishedProperty: "published",
		},
		Content: ContentConfig{
			PageSize:    12,
			LatestLimit: 3,
			SearchLimit: 10,
			Categories: map[string][]string{
				"posts": {
					"내일의 AI",
					"돈이 되는 소식",
					"궁금한 세상 이야기",
					"슬기로운 생활",
					"오늘보다 건강하게",
					"마음 채우기",
					"기타",
				},
			},
		},
		Cache: CacheConfig{
			Listing:         EndpointCache{TTLSeconds: 60},
			Search:          EndpointCache{TTLSeconds: 60},
			Latest:          EndpointCache{TTLSeconds: 15},
			Counts:          EndpointCache{TTLSeconds: 300},
			Content:         EndpointCache{TTLSeconds: 60},
			CleanupInterval: "5m",
			FetchTimeout:    "30s",
		},
		Snapshot: SnapshotConfig{Database: "draiger", Collection: "content_snapshots"},
		Events:   EventsConfig{Topic: "draiger.content.events", GroupID: "draiger-api"},
	}
}

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	c, err := Load(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}
	mu.Lock()
	config = &c
	mu.Unlock()
}

// Load reads a YAML config file on top of Default. A missing file is not an error.
func Load(path string) (AppConfig, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, err
	}
	c.fillDefaults()
	return c, nil
}

// fillDefaults restores zero values a partial config.yaml left behind.
func (c *AppConfig) fillDefaults() {
	d := Default()
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Source.BaseURL == "" {
		c.Source.BaseURL = d.Source.BaseURL
	}
	if c.Source.NotionVersion == "" {
		c.Source.NotionVersion = d.Source.NotionVersion
	}
	if c.Source.Timeout == "" {
		c.Source.Timeout = d.Source.Timeout
	}
	if c.Source.RecipePublishedProperty == "" {
		c.Source.RecipePublishedProperty = d.Source.RecipePublishedProperty
	}
	if c.Content.PageSize <= 0 {
		c.Content.PageSize = d.Content.PageSize
	}
	if c.Content.LatestLimit <= 0 {
		c.Content.LatestLimit = d.Content.LatestLimit
	}
	if c.Content.SearchLimit <= 0 {
		c.Content.SearchLimit = d.Content.SearchLimit
	}
	if c.Snapshot.Database == "" {
		c.Snapshot.Database = d.Snapshot.Database
	}
	if c.Snapshot.Collection == "" {
		c.Snapshot.Collection = d.Snapshot.Collection
	}
	if c.Events.Topic == "" {
		c.Events.Topic = d.Events.Topic
	}
	if c.Events.GroupID == "" {
		c.Events.GroupID = d.Events.GroupID
	}
}

func GetConfig() AppConfig {
	mu.Lock()
	loaded := config != nil
	mu.Unlock()
	if !loaded {
		InitApp()
	}

	mu.Lock()
	defer mu.Unlock()
	return *config
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// ParseDuration parses s, returning fallback when s is empty or invalid.
func ParseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

// Secret reads an environment variable and strips whitespace and wrapping quotes,
// which .env files written by hand frequently carry.
func Secret(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if len(v) >= 2 {
		first, last := v[0], v[len(v)-1]
		if (first == '"' || first == '\'') && first == last {
			v = v[1 : len(v)-1]
		}
	}
	return strings.TrimSpace(v)
}

// CategoriesFor returns the canonical category list of a content type.
func (c AppConfig) CategoriesFor(contentType string) []string {
	return c.Content.Categories[contentType]
}
