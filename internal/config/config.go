package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	ErrEmptyEnvironmentVariable = errors.New("empty environment variable")
	ErrInvalidTrunkID           = errors.New("SIP_OUTBOUND_TRUNK_ID is not set or invalid")
	ErrUnsupportedLLMProvider   = errors.New("unsupported LLM provider")
)

// TrunkIDPrefix is the prefix LiveKit assigns to SIP trunk ids.
const TrunkIDPrefix = "ST_"

const (
	LLMProviderOpenAI = "openai"
	LLMProviderGemini = "gemini"
)

// Config holds all application configuration
type Config struct {
	LiveKit    LiveKitConfig
	SIP        SIPConfig
	Agent      AgentConfig
	Services   ServicesConfig
	Kafka      KafkaConfig
	WorkerPool WorkerPoolConfig
	Server     ServerConfig
	Monitor    MonitorConfig
}

// LiveKitConfig holds the media platform credentials
type LiveKitConfig struct {
	URL       string
	APIKey    string
	APISecret string
}

// SIPConfig holds outbound telephony settings
type SIPConfig struct {
	OutboundTrunkID     string
	ParticipantIdentity string
}

// AgentConfig selects the persona and the name the worker is dispatched under
type AgentConfig struct {
	Persona string
	Name    string
}

// ServicesConfig holds external service API keys and model selection
type ServicesConfig struct {
	OpenAIAPIKey   string
	GoogleAIAPIKey string
	LLMProvider    string
	LLMModel       string
	TTSVoice       string
	STTModel       string
}

// KafkaConfig holds call job queue configuration
type KafkaConfig struct {
	Brokers       []string
	Topic         string
	ConsumerGroup string
}

// WorkerPoolConfig holds worker pool configuration for call processing
type WorkerPoolConfig struct {
	CallWorkers int // Number of calls handled concurrently
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int
	// JWTSecret signs bearer tokens for /api. Empty leaves the API open.
	JWTSecret string
}

// MonitorConfig holds the call status polling settings
type MonitorConfig struct {
	Timeout      time.Duration
	PollInterval time.Duration
}

// Load reads and validates all required environment variables
func Load() (*Config, error) {
	// Load .env.local in non-production environments
	if os.Getenv("GO_ENV") != "production" {
		if err := godotenv.Load(".env.local"); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env.local: %w", err)
		}
	}

	cfg := &Config{}

	var err error
	cfg.SIP.OutboundTrunkID, err = ValidateTrunkID(os.Getenv("SIP_OUTBOUND_TRUNK_ID"))
	if err != nil {
		return nil, err
	}
	cfg.SIP.ParticipantIdentity = getEnvWithDefault("SIP_PARTICIPANT_IDENTITY", "phone_user")

	// LiveKit configuration
	if cfg.LiveKit.URL, err = requireEnv("LIVEKIT_URL"); err != nil {
		return nil, err
	}
	if cfg.LiveKit.APIKey, err = requireEnv("LIVEKIT_API_KEY"); err != nil {
		return nil, err
	}
	if cfg.LiveKit.APISecret, err = requireEnv("LIVEKIT_API_SECRET"); err != nil {
		return nil, err
	}

	// Agent configuration
	cfg.Agent.Persona = getEnvWithDefault("AGENT_PERSONA", "facilitator-onboarding")
	cfg.Agent.Name = os.Getenv("AGENT_NAME")

	// Services configuration
	if cfg.Services.OpenAIAPIKey, err = requireEnv("OPENAI_API_KEY"); err != nil {
		return nil, err
	}
	cfg.Services.LLMProvider = strings.ToLower(getEnvWithDefault("LLM_PROVIDER", LLMProviderOpenAI))
	switch cfg.Services.LLMProvider {
	case LLMProviderOpenAI:
		cfg.Services.LLMModel = getEnvWithDefault("LLM_MODEL", "gpt-4o-mini")
	case LLMProviderGemini:
		if cfg.Services.GoogleAIAPIKey, err = requireEnv("GOOGLE_AI_API_KEY"); err != nil {
			return nil, err
		}
		cfg.Services.LLMModel = getEnvWithDefault("LLM_MODEL", "gemini-2.0-flash")
	default:
		return nil, fmt.Errorf("%s: %w", cfg.Services.LLMProvider, ErrUnsupportedLLMProvider)
	}
	cfg.Services.TTSVoice = getEnvWithDefault("TTS_VOICE", "alloy")
	cfg.Services.STTModel = getEnvWithDefault("STT_MODEL", "gpt-4o-transcribe")

	// Kafka configuration
	cfg.Kafka.Brokers = strings.Split(getEnvWithDefault("KAFKA_BROKERS", "localhost:9092"), ",")
	cfg.Kafka.Topic = getEnvWithDefault("KAFKA_CALL_TOPIC", "outbound.calls")
	cfg.Kafka.ConsumerGroup = getEnvWithDefault("KAFKA_CONSUMER_GROUP", "outbound-callers")

	// Worker pool configuration
	callWorkers := getEnvWithDefault("CALL_WORKERS", "4")
	cfg.WorkerPool.CallWorkers, err = strconv.Atoi(callWorkers)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CALL_WORKERS: %w", err)
	}

	// Server configuration
	serverPort := getEnvWithDefault("SERVER_PORT", "8080")
	cfg.Server.Port, err = strconv.Atoi(serverPort)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SERVER_PORT: %w", err)
	}
	cfg.Server.JWTSecret = os.Getenv("API_JWT_SECRET")

	// Call status monitor configuration
	cfg.Monitor.Timeout, err = time.ParseDuration(getEnvWithDefault("CALL_STATUS_TIMEOUT", "60s"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse CALL_STATUS_TIMEOUT: %w", err)
	}
	cfg.Monitor.PollInterval, err = time.ParseDuration(getEnvWithDefault("CALL_STATUS_POLL_INTERVAL", "500ms"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse CALL_STATUS_POLL_INTERVAL: %w", err)
	}

	return cfg, nil
}

// ValidateTrunkID checks that id names a LiveKit outbound SIP trunk.
func ValidateTrunkID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || !strings.HasPrefix(id, TrunkIDPrefix) {
		return "", ErrInvalidTrunkID
	}
	return id, nil
}

// requireEnv retrieves an environment variable or returns an error if empty
func requireEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set: %w", key, ErrEmptyEnvironmentVariable)
	}
	return value, nil
}

// getEnvWithDefault retrieves an environment variable or returns a default value
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
