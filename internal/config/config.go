package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nikbrunner/tidymark/internal/model"
)

const (
	DefaultMaxTokens        = 4096
	DefaultAIBatchSize      = 120
	MinAIBatchSize          = 20
	DefaultAIConcurrency    = 3
	MaxAIConcurrency        = 5
	DefaultAIMaxRetries     = 2
	DefaultAIRetryDelayMs   = 1000
	DefaultAITimeoutSeconds = 60
	DefaultServerAddr       = "127.0.0.1:7788"
)

// Settings is the read-only configuration handed to every organizer call.
type Settings struct {
	ClassificationRules    []model.Rule   `yaml:"classificationRules"`
	ClassificationLanguage model.Language `yaml:"classificationLanguage"`

	EnableAI         bool   `yaml:"enableAI"`
	AIProvider       string `yaml:"aiProvider"`
	AIAPIKey         string `yaml:"aiApiKey"`
	AIAPIURL         string `yaml:"aiApiUrl"`
	AIModel          string `yaml:"aiModel"`
	MaxTokens        int    `yaml:"maxTokens"`
	AIBatchSize      int    `yaml:"aiBatchSize"`
	AIConcurrency    int    `yaml:"aiConcurrency"`
	AIMaxRetries     int    `yaml:"aiMaxRetries"`
	AIRetryDelayMs   int    `yaml:"aiRetryDelayMs"`
	AITimeoutSeconds int    `yaml:"aiTimeoutSeconds"`
	AIPromptOrganize string `yaml:"aiPromptOrganize"`
	AIPromptInfer    string `yaml:"aiPromptInfer"`

	StoragePath string `yaml:"storagePath"`
	ServerAddr  string `yaml:"serverAddr"`
}

// Default returns settings with every default applied.
func Default() Settings {
	return Settings{
		ClassificationLanguage: model.LanguageAuto,
		AIProvider:             "openai",
		MaxTokens:              DefaultMaxTokens,
		AIBatchSize:            DefaultAIBatchSize,
		AIConcurrency:          DefaultAIConcurrency,
		AIMaxRetries:           DefaultAIMaxRetries,
		AIRetryDelayMs:         DefaultAIRetryDelayMs,
		AITimeoutSeconds:       DefaultAITimeoutSeconds,
		ServerAddr:             DefaultServerAddr,
	}
}

// Normalize fills unset numeric fields with defaults and clamps the batch
// tuning knobs into their supported ranges.
func (s Settings) Normalize() Settings {
	if s.ClassificationLanguage == "" {
		s.ClassificationLanguage = model.LanguageAuto
	}
	s.AIProvider = strings.ToLower(strings.TrimSpace(s.AIProvider))
	if s.MaxTokens <= 0 {
		s.MaxTokens = DefaultMaxTokens
	}

	switch {
	case s.AIBatchSize <= 0:
		s.AIBatchSize = DefaultAIBatchSize
	case s.AIBatchSize < MinAIBatchSize:
		s.AIBatchSize = MinAIBatchSize
	}

	switch {
	case s.AIConcurrency <= 0:
		s.AIConcurrency = DefaultAIConcurrency
	case s.AIConcurrency > MaxAIConcurrency:
		s.AIConcurrency = MaxAIConcurrency
	}

	if s.AIMaxRetries < 0 {
		s.AIMaxRetries = 0
	}
	if s.AIRetryDelayMs <= 0 {
		s.AIRetryDelayMs = DefaultAIRetryDelayMs
	}
	if s.AITimeoutSeconds <= 0 {
		s.AITimeoutSeconds = DefaultAITimeoutSeconds
	}
	if s.ServerAddr == "" {
		s.ServerAddr = DefaultServerAddr
	}
	return s
}

// Language resolves "auto" against $LC_ALL / $LANG.
func (s Settings) Language() model.Language {
	locale := os.Getenv("LC_ALL")
	if locale == "" {
		locale = os.Getenv("LANG")
	}
	return model.ResolveLanguage(s.ClassificationLanguage, locale)
}

// Other returns the catch-all category for the configured language.
func (s Settings) Other() string {
	return model.OtherCategory(s.Language())
}

// Load reads settings from path (or the default location when empty) and
// applies environment overrides. A missing file is not an error.
func Load(path string) (Settings, error) {
	cfg := Default()

	if path == "" {
		path = Path()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Settings{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return Settings{}, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	cfg.loadFromEnv()
	cfg.StoragePath = expandHome(cfg.StoragePath)
	return cfg.Normalize(), nil
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}

func (s *Settings) loadFromEnv() {
	if provider := os.Getenv("TIDYMARK_AI_PROVIDER"); provider != "" {
		s.AIProvider = provider
	}
	if enable := os.Getenv("TIDYMARK_ENABLE_AI"); enable != "" {
		if v, err := strconv.ParseBool(enable); err == nil {
			s.EnableAI = v
		}
	}
	if key := os.Getenv("TIDYMARK_AI_API_KEY"); key != "" {
		s.AIAPIKey = key
	}
	if apiURL := os.Getenv("TIDYMARK_AI_API_URL"); apiURL != "" {
		s.AIAPIURL = apiURL
	}
	if m := os.Getenv("TIDYMARK_AI_MODEL"); m != "" {
		s.AIModel = m
	}
	if lang := os.Getenv("TIDYMARK_LANGUAGE"); lang != "" {
		s.ClassificationLanguage = model.Language(strings.ToLower(lang))
	}
}

// Path returns the config file location.
// Priority: $TIDYMARK_CONFIG > ~/.config/tidymark/config.yaml
func Path() string {
	if p := os.Getenv("TIDYMARK_CONFIG"); p != "" {
		return p
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "tidymark", "config.yaml")
}

// SaveExample writes a commented example config to path unless a file is
// already there.
func SaveExample(path string) error {
	if path == "" {
		path = Path()
	}
	if path == "" {
		return fmt.Errorf("cannot determine config path")
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	example := `# TidyMark configuration
# Environment variables TIDYMARK_ENABLE_AI, TIDYMARK_AI_PROVIDER, TIDYMARK_AI_API_KEY,
# TIDYMARK_AI_API_URL, TIDYMARK_AI_MODEL and TIDYMARK_LANGUAGE override this file.

# auto, zh or en
classificationLanguage: auto

# Leave empty to use the built-in rules for the selected language.
# classificationRules:
#   - category: Dev
#     keywords: [github, stackoverflow, golang]

enableAI: false
aiProvider: openai      # openai, deepseek, claude, gemini, ollama, ernie, custom
aiApiKey: ""            # not needed for ollama
# aiApiUrl: ""          # defaults per provider
# aiModel: ""           # defaults per provider
maxTokens: 4096
aiBatchSize: 120        # raised to 20 when smaller
aiConcurrency: 3        # 1-5
aiMaxRetries: 2
aiRetryDelayMs: 1000
aiTimeoutSeconds: 60

# Custom prompt templates. Placeholders: {{language}} {{categoriesJson}} {{itemsJson}}
# aiPromptOrganize: ""
# aiPromptInfer: ""

# storagePath: ~/.config/tidymark/bookmarks.json
# serverAddr: 127.0.0.1:7788
`
	return os.WriteFile(path, []byte(example), 0600)
}
