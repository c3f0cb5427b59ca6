package bootstrap

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/eleven-am/auteur/internal/lens"
)

const (
	TransportWS    = "ws"
	TransportRedis = "redis"
)

type Config struct {
	ServerAddr string
	GRPCAddr   string

	LogLevel  string
	LogFormat string
	LogFile   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	DatabaseDSN string

	OllamaURL     string
	VisionModel   string
	VisionTimeout time.Duration
	FrameTTL      time.Duration

	CameraSource  string
	CaptureFPS    float64
	SamplingRatio float64
	ClipLength    time.Duration
	ClipDelay     time.Duration
	InitialLens   lens.Mode
	AutoStart     bool

	RoomTransport    string
	RoomURL          string
	RoomName         string
	RoomIdentity     string
	AgentIdentity    string
	LiveKitAPIKey    string
	LiveKitAPISecret string

	RelayMaxPendingAge time.Duration
	FrameRateLimit     float64
}

func LoadConfig() *Config {
	serverAddr := getEnv("SERVER_ADDR", ":8080")
	roomName := getEnv("ROOM_NAME", "studio")

	initial, err := lens.Parse(getEnv("INITIAL_LENS", string(lens.Geometry)))
	if err != nil {
		initial = lens.Geometry
	}

	return &Config{
		ServerAddr: serverAddr,
		GRPCAddr:   getEnv("GRPC_ADDR", ":50051"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		LogFile:   getEnv("LOG_FILE", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		DatabaseDSN: getEnv("DATABASE_DSN", ""),

		OllamaURL:     getEnv("OLLAMA_URL", "http://localhost:11434"),
		VisionModel:   getEnv("VISION_MODEL", "llava"),
		VisionTimeout: getEnvDuration("VISION_TIMEOUT", 30*time.Second),
		FrameTTL:      getEnvDuration("FRAME_TTL", time.Minute),

		CameraSource:  getEnv("CAMERA_SOURCE", "camera-0"),
		CaptureFPS:    getEnvFloat("CAPTURE_FPS", 1),
		SamplingRatio: getEnvFloat("SAMPLING_RATIO", 1),
		ClipLength:    getEnvDuration("CLIP_LENGTH", 3*time.Second),
		ClipDelay:     getEnvDuration("CLIP_DELAY", time.Second),
		InitialLens:   initial,
		AutoStart:     getEnv("VISION_AUTOSTART", "false") == "true",

		RoomTransport:    strings.ToLower(getEnv("ROOM_TRANSPORT", TransportWS)),
		RoomURL:          getEnv("ROOM_URL", defaultRoomURL(serverAddr, roomName)),
		RoomName:         roomName,
		RoomIdentity:     getEnv("ROOM_IDENTITY", "camera"),
		AgentIdentity:    getEnv("AGENT_IDENTITY", "agent"),
		LiveKitAPIKey:    getEnv("LIVEKIT_API_KEY", ""),
		LiveKitAPISecret: getEnv("LIVEKIT_API_SECRET", ""),

		RelayMaxPendingAge: getEnvDuration("RELAY_MAX_PENDING_AGE", 0),
		FrameRateLimit:     getEnvFloat("FRAME_RATE_LIMIT", 30),
	}
}

func defaultRoomURL(serverAddr, room string) string {
	host := serverAddr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	return "ws://" + host + "/v1/rooms/" + room
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
