package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Supported response languages.
var Languages = map[string]string{
	"en": "English",
	"ur": "Urdu",
	"sd": "Sindhi",
}

const (
	DefaultLanguage = "en"

	defaultGroqBaseURL = "https://api.groq.com/openai/v1/chat/completions"
	defaultGroqModel   = "openai/gpt-oss-120b"
	defaultMaxTokens   = 1500
	defaultTemperature = 0.3
	defaultRunTimeout  = 120 * time.Second
	defaultOutputDir   = "outputs"
	defaultAddress     = ":8080"
)

type Config struct {
	GroqAPIKey   string
	GroqBaseURL  string
	GroqModel    string
	TavilyAPIKey string
	MongoURI     string

	OCRServiceURL       string
	ASRServiceURL       string
	TranslateServiceURL string
	TTSServiceURL       string

	MaxTokens   int
	Temperature float64
	RunTimeout  time.Duration

	OutputDir     string
	ServerAddress string

	logger *zap.Logger
}

var (
	configInstance *Config
	once           sync.Once
)

// InitConfig loads configuration from the environment (with .env support)
// exactly once. A missing GROQ_API_KEY is a construction-time failure so
// no run ever starts without model credentials; TAVILY_API_KEY is
// optional and only gates the web-search tool.
func InitConfig() (*Config, error) {
	var initErr error

	once.Do(func() {
		zcfg := zap.NewDevelopmentConfig()
		zcfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		logger, err := zcfg.Build()
		if err != nil {
			logger = zap.NewNop()
			initErr = fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logger.Sync()

		// Load .env file
		if err := godotenv.Load(); err != nil {
			if os.IsNotExist(err) {
				logger.Warn("No .env file found; falling back to system environment variables")
			} else {
				initErr = fmt.Errorf("failed to load .env file: %w", err)
				logger.Error("Config file load error", zap.Error(err))
				return
			}
		} else {
			logger.Debug("Successfully loaded .env file")
		}

		groqKey := os.Getenv("GROQ_API_KEY")
		if groqKey == "" {
			initErr = fmt.Errorf("GROQ_API_KEY not set in environment variables")
			return
		}

		tavilyKey := os.Getenv("TAVILY_API_KEY")
		if tavilyKey == "" {
			logger.Warn("TAVILY_API_KEY not set; web search tool will be disabled")
		}

		cfg := &Config{
			GroqAPIKey:          groqKey,
			GroqBaseURL:         envOrDefault("GROQ_BASE_URL", defaultGroqBaseURL),
			GroqModel:           envOrDefault("GROQ_MODEL", defaultGroqModel),
			TavilyAPIKey:        tavilyKey,
			MongoURI:            os.Getenv("MONGO_URI"),
			OCRServiceURL:       os.Getenv("OCR_SERVICE_URL"),
			ASRServiceURL:       os.Getenv("ASR_SERVICE_URL"),
			TranslateServiceURL: os.Getenv("TRANSLATE_SERVICE_URL"),
			TTSServiceURL:       os.Getenv("TTS_SERVICE_URL"),
			MaxTokens:           envOrDefaultInt("MAX_TOKENS", defaultMaxTokens, logger),
			Temperature:         defaultTemperature,
			RunTimeout:          defaultRunTimeout,
			OutputDir:           envOrDefault("OUTPUT_DIR", defaultOutputDir),
			ServerAddress:       envOrDefault("SERVER_ADDRESS", defaultAddress),
			logger:              logger,
		}

		if err := cfg.ensureOutputDirs(); err != nil {
			initErr = err
			return
		}

		configInstance = cfg
	})

	if initErr != nil {
		return nil, initErr
	}
	if configInstance == nil {
		return nil, fmt.Errorf("configuration initialization failed unexpectedly")
	}

	return configInstance, nil
}

// SupportedLanguage reports whether code is a valid response language.
func SupportedLanguage(code string) bool {
	_, ok := Languages[code]
	return ok
}

// VoiceOutputDir is where synthesized responses are written.
func (c *Config) VoiceOutputDir() string {
	return filepath.Join(c.OutputDir, "voice_outputs")
}

// RecordingDir is where uploaded voice recordings are staged.
func (c *Config) RecordingDir() string {
	return filepath.Join(c.OutputDir, "recordings")
}

// TranscriptDir is where ASR transcripts are kept.
func (c *Config) TranscriptDir() string {
	return filepath.Join(c.OutputDir, "transcripts")
}

// OCRDir is where extracted label text is kept.
func (c *Config) OCRDir() string {
	return filepath.Join(c.OutputDir, "ocr")
}

func (c *Config) ensureOutputDirs() error {
	for _, dir := range []string{c.VoiceOutputDir(), c.RecordingDir(), c.TranscriptDir(), c.OCRDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	return nil
}

func envOrDefault(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(name string, fallback int, logger *zap.Logger) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn("Invalid integer in environment variable; using default",
			zap.String("var_name", name),
			zap.String("value", v))
		return fallback
	}
	return parsed
}
