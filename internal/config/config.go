package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "COMPLAINT_CLASSIFIER_CONFIG"
	logLevelEnv       = "LOG_LEVEL"
	listenAddrEnv     = "COMPLAINT_LISTEN_ADDR"
	modelPathEnv      = "COMPLAINT_MODEL_PATH"
	corpusPathEnv     = "COMPLAINT_CORPUS_PATH"
	runsDSNEnv        = "COMPLAINT_RUNS_DSN"
	serviceURLEnv     = "COMPLAINT_SERVICE_URL"
	llmProviderEnv    = "LLM_PROVIDER"
	llmModelEnv       = "LLM_MODEL"
	llmAPIKeyEnv      = "LLM_API_KEY"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	seedEnv           = "COMPLAINT_TRAIN_SEED"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Server        ServerConfig       `yaml:"server"`
	Model         ModelConfig        `yaml:"model"`
	Corpus        CorpusConfig       `yaml:"corpus"`
	Training      TrainingConfig     `yaml:"training"`
	Synth         SynthConfig        `yaml:"synth"`
	Runs          RunsConfig         `yaml:"runs"`
	Notifications NotificationConfig `yaml:"notifications"`
	LLM           LLMConfig          `yaml:"llm"`
	Client        ClientConfig       `yaml:"client"`
}

// LoggingConfig selects the slog level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	ShutdownPeriod time.Duration `yaml:"shutdownPeriod"`
}

// ModelConfig points at the serialized pipeline.
type ModelConfig struct {
	ArtifactPath string `yaml:"artifactPath"`
}

// CorpusConfig points at the labeled CSV.
type CorpusConfig struct {
	Path string `yaml:"path"`
}

// TrainingConfig tunes the vectorizer, classifier and holdout split.
type TrainingConfig struct {
	Seed         uint64  `yaml:"seed"`
	TestFraction float64 `yaml:"testFraction"`
	MaxFeatures  int     `yaml:"maxFeatures"`
	MaxIter      int     `yaml:"maxIter"`
	C            float64 `yaml:"c"`
	// Schedule is a cron expression for repeated retraining; empty trains once.
	Schedule string `yaml:"schedule"`
}

// SynthConfig controls synthetic corpus generation.
type SynthConfig struct {
	Records int   `yaml:"records"`
	Seed    int64 `yaml:"seed"`
}

// RunsConfig locates the training-run ledger; an empty DSN disables it.
type RunsConfig struct {
	DSN string `yaml:"dsn"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// LLMConfig defines how to contact the external categorization model.
type LLMConfig struct {
	Provider     string `yaml:"provider"`
	Endpoint     string `yaml:"endpoint"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	SystemPrompt string `yaml:"systemPrompt"`
}

// ClientConfig describes how the CLI reaches a running classifier service.
type ClientConfig struct {
	ServiceURL string        `yaml:"serviceUrl"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			var seeds fileSeeds
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else if err := yaml.Unmarshal(raw, &seeds); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
				seeds.apply(&cfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	envOverride(&c.Logging.Level, logLevelEnv)
	envOverride(&c.Server.Addr, listenAddrEnv)
	envOverride(&c.Model.ArtifactPath, modelPathEnv)
	envOverride(&c.Corpus.Path, corpusPathEnv)
	envOverride(&c.Runs.DSN, runsDSNEnv)
	envOverride(&c.Client.ServiceURL, serviceURLEnv)
	envOverride(&c.LLM.Provider, llmProviderEnv)
	envOverride(&c.LLM.Model, llmModelEnv)
	envOverride(&c.LLM.APIKey, llmAPIKeyEnv)
	envOverride(&c.Notifications.Telegram.BotToken, telegramTokenEnv)
	envOverride(&c.Notifications.Telegram.ChatID, telegramChatIDEnv)

	if v := os.Getenv(seedEnv); v != "" {
		if seed, err := strconv.ParseUint(v, 10, 64); err != nil {
			log.Printf("config: invalid %s=%q: %v", seedEnv, v, err)
		} else {
			c.Training.Seed = seed
		}
	}
}

func envOverride(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

// fileSeeds records which seeds a file sets explicitly, since 0 is a
// meaningful seed and cannot signal absence.
type fileSeeds struct {
	Training struct {
		Seed *uint64 `yaml:"seed"`
	} `yaml:"training"`
	Synth struct {
		Seed *int64 `yaml:"seed"`
	} `yaml:"synth"`
}

func (s fileSeeds) apply(c *Config) {
	if s.Training.Seed != nil {
		c.Training.Seed = *s.Training.Seed
	}
	if s.Synth.Seed != nil {
		c.Synth.Seed = *s.Synth.Seed
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}
	if override.Server.ShutdownPeriod > 0 {
		base.Server.ShutdownPeriod = override.Server.ShutdownPeriod
	}

	if override.Model.ArtifactPath != "" {
		base.Model.ArtifactPath = override.Model.ArtifactPath
	}
	if override.Corpus.Path != "" {
		base.Corpus.Path = override.Corpus.Path
	}

	if override.Training.TestFraction > 0 {
		base.Training.TestFraction = override.Training.TestFraction
	}
	if override.Training.MaxFeatures > 0 {
		base.Training.MaxFeatures = override.Training.MaxFeatures
	}
	if override.Training.MaxIter > 0 {
		base.Training.MaxIter = override.Training.MaxIter
	}
	if override.Training.C > 0 {
		base.Training.C = override.Training.C
	}
	if override.Training.Schedule != "" {
		base.Training.Schedule = override.Training.Schedule
	}

	if override.Synth.Records > 0 {
		base.Synth.Records = override.Synth.Records
	}

	if override.Runs.DSN != "" {
		base.Runs.DSN = override.Runs.DSN
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.LLM.Provider != "" {
		base.LLM.Provider = override.LLM.Provider
	}
	if override.LLM.Endpoint != "" {
		base.LLM.Endpoint = override.LLM.Endpoint
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}
	if override.LLM.SystemPrompt != "" {
		base.LLM.SystemPrompt = override.LLM.SystemPrompt
	}

	if override.Client.ServiceURL != "" {
		base.Client.ServiceURL = override.Client.ServiceURL
	}
	if override.Client.Timeout > 0 {
		base.Client.Timeout = override.Client.Timeout
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Server:  ServerConfig{Addr: ":8000", ShutdownPeriod: 10 * time.Second},
		Model:   ModelConfig{ArtifactPath: "department_classifier.json"},
		Corpus:  CorpusConfig{Path: "complaints.csv"},
		Training: TrainingConfig{
			Seed:         42,
			TestFraction: 0.2,
			MaxFeatures:  5000,
			MaxIter:      1000,
			C:            1.0,
		},
		Synth:  SynthConfig{Records: 1000},
		LLM:    LLMConfig{Provider: "openai"},
		Client: ClientConfig{ServiceURL: "http://localhost:8000", Timeout: 5 * time.Second},
	}
}
