// Package config loads runtime settings from the environment and the
// section list from a YAML file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Section describes one newsletter section: where its anchor items come
// from and which query corroborates them on the search side.
type Section struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Feed  string `yaml:"feed"`
	Query string `yaml:"query"`
}

type Config struct {
	// Sections in render order
	Sections []Section

	// Selection settings
	FeedTopN       int
	SearchTopN     int
	MatchThreshold float64
	ExtrasCap      int

	// Naver open API credentials; both empty means search side is skipped
	NaverClientID     string
	NaverClientSecret string

	// OpenAI rewriting
	OpenAIAPIKey       string
	OpenAIModel        string
	MaxRewriteRequests int // 0 = unlimited

	// Retry settings
	RetryMaxAttempts int
	RetryInterval    time.Duration

	// Mail delivery
	Recipients []string
	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string

	// Paths
	SectionsConfigPath string
	StateDBPath        string
	OutputDir          string

	// App settings
	Debug          bool
	RequestTimeout time.Duration
}

// Title formats; {date} expanded with the localized run date.
const (
	MailSubjectFmt = "[DH 뉴스레터] %s 주요 이슈 요약 (한국경제 RSS + 네이버 뉴스)"
	BlogTitleFmt   = "[뉴스레터] %s 주요 이슈 요약 (한국경제 RSS + 네이버 뉴스)"
	BlogTags       = "경제, 한국경제, 미국경제, IT, Tech, 뉴스, 네이버, 미국, 엔비디아, 구글"

	TopNote = `<div style="line-height:1.3; font-size:12px; color:#666;">` +
		`※ 본 내용은 "한국경제"신문의 RSS 기사 및 네이버 뉴스 검색 결과를 토대로 제작하였습니다.<br>` +
		`※ 한국경제, 세계 경제, IT 분야의 데일리 주요 뉴스를 요약합니다.` +
		`</div>`
)

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		SectionsConfigPath: getEnvOrDefault("SECTIONS_CONFIG_PATH", "configs/sections.yaml"),
		StateDBPath:        getEnvOrDefault("STATE_DB_PATH", "data/state.db"),
		OutputDir:          getEnvOrDefault("OUTPUT_DIR", "output"),
		FeedTopN:           getEnvIntOrDefault("FEED_TOP_N", 3),
		SearchTopN:         getEnvIntOrDefault("SEARCH_TOP_N", 3),
		ExtrasCap:          getEnvIntOrDefault("EXTRAS_CAP", 2),
		MatchThreshold:     0.35,
		RetryMaxAttempts:   getEnvIntOrDefault("RETRY_MAX_ATTEMPTS", 3),
		RetryInterval:      time.Duration(getEnvIntOrDefault("RETRY_INTERVAL_SEC", 60)) * time.Second,
		MaxRewriteRequests: getEnvIntOrDefault("MAX_REWRITE_REQUESTS", 0),
		RequestTimeout:     time.Duration(getEnvIntOrDefault("REQUEST_TIMEOUT_SEC", 10)) * time.Second,
		OpenAIModel:        getEnvOrDefault("OPENAI_MODEL", "gpt-4.1-mini"),
	}

	if v := strings.TrimSpace(os.Getenv("MATCH_THRESHOLD")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f <= 1 {
			cfg.MatchThreshold = f
		}
	}

	cfg.NaverClientID = strings.TrimSpace(os.Getenv("NAVER_CLIENT_ID"))
	cfg.NaverClientSecret = strings.TrimSpace(os.Getenv("NAVER_CLIENT_SECRET"))
	cfg.OpenAIAPIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))

	for _, r := range strings.Split(os.Getenv("RECIPIENTS"), ",") {
		if r = strings.TrimSpace(r); r != "" {
			cfg.Recipients = append(cfg.Recipients, r)
		}
	}
	cfg.SMTPHost = getEnvOrDefault("SMTP_HOST", "smtp.office365.com")
	cfg.SMTPPort = getEnvIntOrDefault("SMTP_PORT", 587)
	cfg.SMTPUser = strings.TrimSpace(os.Getenv("SMTP_USER"))
	cfg.SMTPPass = strings.TrimSpace(os.Getenv("SMTP_PASS"))

	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	sections, err := LoadSections(cfg.SectionsConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load sections config: %w", err)
	}
	cfg.Sections = sections

	return cfg, cfg.Validate()
}

// LoadSections reads the ordered section list from a YAML file.
func LoadSections(path string) ([]Section, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var doc struct {
		Sections []Section `yaml:"sections"`
	}
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc.Sections, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if len(c.Sections) == 0 {
		return fmt.Errorf("no sections configured")
	}
	for _, s := range c.Sections {
		if s.ID == "" || s.Name == "" || s.Feed == "" {
			return fmt.Errorf("section %q is missing id, name or feed", s.ID)
		}
	}
	if c.FeedTopN <= 0 || c.SearchTopN <= 0 {
		return fmt.Errorf("FEED_TOP_N and SEARCH_TOP_N must be positive")
	}
	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}

// SearchEnabled reports whether the Naver credential pair is present.
// A missing pair is a degradation, not an error: the pipeline runs on the
// feed source alone.
func (c *Config) SearchEnabled() bool {
	return c.NaverClientID != "" && c.NaverClientSecret != ""
}

// QueryFor returns the search query for a section, falling back to the
// section name when none is configured.
func (s Section) QueryFor() string {
	if s.Query != "" {
		return s.Query
	}
	return s.Name
}
