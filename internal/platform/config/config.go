package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JudgeBaseURL     string
	JudgeAccessToken string
	JudgeMasterID    int
	JudgeTypeID      int
	JudgeTestID      int

	PollCeiling      time.Duration
	CompilerCacheTTL time.Duration

	NotificationQueueName string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	LogLevel  string
	LogFormat string
}

// Load reads .env (if present) and the environment and returns the full
// configuration. Collaborators receive this struct explicitly; nothing else
// reads the environment after startup.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		APIPort:    getEnv("API_PORT", "8080"),
		JWTKey:     []byte(getEnv("JWT_SECRET", "defaultsecret")),
		JWTExp:     time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 24)) * time.Hour,
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "user"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "codejudge_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		JudgeBaseURL:     getEnv("JUDGE_BASE_URL", "https://problems.sphere-engine.com/api/v3/"),
		JudgeAccessToken: getEnv("JUDGE_ACCESS_TOKEN", ""),
		JudgeMasterID:    getEnvAsInt("JUDGE_MASTER_JUDGE_ID", 1001),
		JudgeTypeID:      getEnvAsInt("JUDGE_TYPE_ID", 1),
		JudgeTestID:      getEnvAsInt("JUDGE_TESTCASE_JUDGE_ID", 1),

		PollCeiling:      time.Duration(getEnvAsInt("SUBMIT_POLL_CEILING_SECONDS", 120)) * time.Second,
		CompilerCacheTTL: time.Duration(getEnvAsInt("COMPILER_CACHE_TTL_SECONDS", 600)) * time.Second,

		NotificationQueueName: getEnv("NOTIFICATION_QUEUE_NAME", "verdict_notifications_queue"),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@codejudge.local"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	cfg.DBConnStr = "host=" + cfg.DBHost +
		" port=" + cfg.DBPort +
		" user=" + cfg.DBUser +
		" password=" + cfg.DBPassword +
		" dbname=" + cfg.DBName +
		" sslmode=" + cfg.DBSslMode

	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
