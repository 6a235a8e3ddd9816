// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/knodemy/lecture-server/internal/domain"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Server    ServerConfig
	Source    SourceConfig
	Synthesis SynthesisConfig
	Speech    SpeechConfig
	Storage   StorageConfig
	Store     StoreConfig
	Inbox     InboxConfig
	Retry     RetryConfig
	Schedule  ScheduleConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// SourceConfig holds document fetching and extraction configuration.
type SourceConfig struct {
	// FetchTimeout bounds the source document download (default: 30s)
	FetchTimeout time.Duration
	// UserAgent sent with document fetches
	UserAgent string
	// MinTextChars is the minimum extracted text length worth synthesizing (default: 100)
	MinTextChars int
}

// SynthesisConfig holds script synthesis configuration.
type SynthesisConfig struct {
	// APIKey authenticates against the completion provider
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	// ExcerptChars caps how much extracted text enters the prompt (default: 8000)
	ExcerptChars int
	// Defaults applied when a request does not specify them
	Audience        string
	Language        string
	DurationMinLow  int
	DurationMinHigh int
}

// SpeechConfig holds TTS and audio assembly configuration.
type SpeechConfig struct {
	// Provider selects the TTS backend: "openai" or "elevenlabs"
	Provider string
	// APIKey authenticates against the active provider
	APIKey string
	Model  string
	Voice  domain.Voice
	// ChunkChars is the per-request character budget (default: 4000)
	ChunkChars int
	// MinChunkChars discards noise chunks below this length (default: 10)
	MinChunkChars int
	// SampleRate for assembled audio (default: 24000, OpenAI TTS WAV output)
	SampleRate int
	// GapSeconds is the fixed inter-segment silence for the gapped policy (default: 30s)
	GapSeconds float64
	// Policy is the default assembly policy (default: padded)
	Policy domain.AssemblyPolicy
	// RequestsPerSecond paces TTS calls (default: 1)
	RequestsPerSecond float64
	// ElevenLabsAPIKey and ElevenLabsVoiceID apply when the elevenlabs
	// provider is active
	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string
}

// StorageConfig holds object storage configuration.
type StorageConfig struct {
	// BasePath is the root directory of the local bucket store
	BasePath      string
	ScriptsBucket string
	AudioBucket   string
	SignURLs      bool
	SignExpiry    time.Duration
	// GenerateAudio toggles the audio half of the pipeline (default: true)
	GenerateAudio bool
}

// StoreConfig holds relational store configuration.
type StoreConfig struct {
	// Path to the SQLite database file
	Path string
}

// InboxConfig holds the PDF drop-directory watcher configuration.
type InboxConfig struct {
	// Enabled toggles the inbox watcher (default: false)
	Enabled bool
	// Path is the watched directory
	Path string
	// CourseID receives lessons created from dropped files
	CourseID string
}

// RetryConfig holds the external-call retry policy.
// MaxAttempts of 1 means a single attempt and no retries.
type RetryConfig struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// ScheduleConfig holds the daily generation schedule.
type ScheduleConfig struct {
	// Enabled toggles the daily run (default: true)
	Enabled bool
	// HourUTC is the hour of day the daily batch runs (default: 5)
	HourUTC int
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	serverPort := flag.String("port", "", "Server port (default: 8080)")

	dataPath := flag.String("data-path", "", "Base path for buckets and database")
	dbPath := flag.String("db-path", "", "Path to SQLite database file")

	fetchTimeout := flag.String("fetch-timeout", "", "Source document fetch timeout (default: 30s)")
	synthModel := flag.String("synthesis-model", "", "LLM model for script synthesis")
	speechProvider := flag.String("speech-provider", "", "TTS provider: openai or elevenlabs")
	speechVoice := flag.String("voice", "", "TTS voice (alloy, echo, fable, onyx, nova, shimmer)")
	assemblyPolicy := flag.String("assembly-policy", "", "Audio assembly policy: padded or gapped")

	inboxEnabled := flag.String("inbox-enabled", "", "Watch a drop directory for lesson PDFs (default: false)")
	inboxPath := flag.String("inbox-path", "", "Drop directory for lesson PDFs")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Source: SourceConfig{
			UserAgent:    getConfigValue("", "SOURCE_USER_AGENT", defaultUserAgent),
			MinTextChars: getIntConfigValue("", "SOURCE_MIN_TEXT_CHARS", 100),
		},
		Synthesis: SynthesisConfig{
			APIKey:          getConfigValue("", "OPENAI_API_KEY", ""),
			Model:           getConfigValue(*synthModel, "SYNTHESIS_MODEL", "gpt-4o-mini"),
			MaxTokens:       getIntConfigValue("", "SYNTHESIS_MAX_TOKENS", 3500),
			Temperature:     0.7,
			ExcerptChars:    getIntConfigValue("", "SYNTHESIS_EXCERPT_CHARS", 8000),
			Audience:        getConfigValue("", "SYNTHESIS_AUDIENCE", "middle school (ages 11-14)"),
			Language:        getConfigValue("", "SYNTHESIS_LANGUAGE", "English"),
			DurationMinLow:  getIntConfigValue("", "SYNTHESIS_DURATION_LOW", 20),
			DurationMinHigh: getIntConfigValue("", "SYNTHESIS_DURATION_HIGH", 30),
		},
		Speech: SpeechConfig{
			Provider:          getConfigValue(*speechProvider, "SPEECH_PROVIDER", "openai"),
			APIKey:            getConfigValue("", "OPENAI_API_KEY", ""),
			Model:             getConfigValue("", "SPEECH_MODEL", "tts-1-hd"),
			Voice:             domain.Voice(getConfigValue(*speechVoice, "SPEECH_VOICE", string(domain.VoiceAlloy))),
			ChunkChars:        getIntConfigValue("", "SPEECH_CHUNK_CHARS", 4000),
			MinChunkChars:     getIntConfigValue("", "SPEECH_MIN_CHUNK_CHARS", 10),
			SampleRate:        getIntConfigValue("", "SPEECH_SAMPLE_RATE", 24000),
			GapSeconds:        getFloatConfigValue("", "SPEECH_GAP_SECONDS", 30),
			Policy:            domain.AssemblyPolicy(getConfigValue(*assemblyPolicy, "ASSEMBLY_POLICY", string(domain.AssemblyPadded))),
			RequestsPerSecond: getFloatConfigValue("", "SPEECH_RPS", 1),
			ElevenLabsAPIKey:  getConfigValue("", "ELEVENLABS_API_KEY", ""),
			ElevenLabsVoiceID: getConfigValue("", "ELEVENLABS_VOICE_ID", "21m00Tcm4TlvDq8ikWAM"),
		},
		Storage: StorageConfig{
			BasePath:      getConfigValue(*dataPath, "DATA_PATH", ""),
			ScriptsBucket: getConfigValue("", "SCRIPTS_BUCKET", "lecture-scripts"),
			AudioBucket:   getConfigValue("", "AUDIO_BUCKET", "lecture-audios"),
			SignURLs:      getBoolConfigValue("", "SIGN_URLS", true),
			GenerateAudio: getBoolConfigValue("", "GENERATE_TIMED_AUDIO", true),
		},
		Store: StoreConfig{
			Path: getConfigValue(*dbPath, "DB_PATH", ""),
		},
		Inbox: InboxConfig{
			Enabled:  getBoolConfigValue(*inboxEnabled, "INBOX_ENABLED", false),
			Path:     getConfigValue(*inboxPath, "INBOX_PATH", ""),
			CourseID: getConfigValue("", "INBOX_COURSE_ID", ""),
		},
		Retry: RetryConfig{
			MaxAttempts: getIntConfigValue("", "RETRY_MAX_ATTEMPTS", 3),
		},
		Schedule: ScheduleConfig{
			Enabled: getBoolConfigValue("", "SCHEDULE_ENABLED", true),
			HourUTC: getIntConfigValue("", "SCHEDULE_HOUR_UTC", 5),
		},
	}

	var err error
	if cfg.Source.FetchTimeout, err = parseDurationValue(*fetchTimeout, "SOURCE_FETCH_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.Server.ReadTimeout, err = parseDurationValue("", "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = parseDurationValue("", "SERVER_WRITE_TIMEOUT", "5m"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = parseDurationValue("", "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Storage.SignExpiry, err = parseDurationValue("", "SIGN_EXPIRES", "1h"); err != nil {
		return nil, err
	}
	if cfg.Retry.InitialInterval, err = parseDurationValue("", "RETRY_INITIAL_INTERVAL", "1s"); err != nil {
		return nil, err
	}
	if cfg.Retry.MaxInterval, err = parseDurationValue("", "RETRY_MAX_INTERVAL", "30s"); err != nil {
		return nil, err
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if !c.Speech.Voice.Valid() {
		return fmt.Errorf("invalid voice: %s", c.Speech.Voice)
	}
	if !c.Speech.Policy.Valid() {
		return fmt.Errorf("invalid assembly policy: %s (must be padded or gapped)", c.Speech.Policy)
	}
	if c.Speech.Provider != "openai" && c.Speech.Provider != "elevenlabs" {
		return fmt.Errorf("invalid speech provider: %s (must be openai or elevenlabs)", c.Speech.Provider)
	}
	if c.Speech.ChunkChars <= 0 {
		return errors.New("speech chunk budget must be positive")
	}
	if c.Speech.SampleRate <= 0 {
		return errors.New("sample rate must be positive")
	}
	if c.Synthesis.DurationMinLow <= 0 || c.Synthesis.DurationMinHigh < c.Synthesis.DurationMinLow {
		return errors.New("invalid synthesis duration range")
	}
	if c.Retry.MaxAttempts < 1 {
		return errors.New("retry max attempts must be at least 1")
	}
	if c.Schedule.HourUTC < 0 || c.Schedule.HourUTC > 23 {
		return fmt.Errorf("invalid schedule hour: %d", c.Schedule.HourUTC)
	}
	if c.Inbox.Enabled && c.Inbox.Path == "" {
		return errors.New("inbox enabled but no inbox path configured")
	}

	return nil
}

// expandPaths resolves the data directory and derives dependent defaults.
func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultBase := filepath.Join(homeDir, "LectureServer", "data")

	base, err := expandPath(c.Storage.BasePath, defaultBase)
	if err != nil {
		return err
	}
	c.Storage.BasePath = base

	if c.Store.Path == "" {
		c.Store.Path = filepath.Join(base, "lectures.db")
	} else if c.Store.Path, err = expandPath(c.Store.Path, ""); err != nil {
		return err
	}

	if c.Inbox.Path != "" {
		if c.Inbox.Path, err = expandPath(c.Inbox.Path, ""); err != nil {
			return err
		}
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float64 from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		return defaultValue
	}
	return result
}

// parseDurationValue resolves a duration from flag, env var, or default string.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), strValue, err)
	}
	return d, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Env vars take precedence over .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
