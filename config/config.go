package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where LoadConfig looks for the YAML file.
const DefaultConfigPath = "config/config.yaml"

// Config application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Redis     RedisConfig     `yaml:"redis"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Upload    UploadConfig    `yaml:"upload"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port            string        `yaml:"port"`            // listen port
	ReadTimeout     time.Duration `yaml:"readTimeout"`     // read timeout
	WriteTimeout    time.Duration `yaml:"writeTimeout"`    // write timeout
	IdleTimeout     time.Duration `yaml:"idleTimeout"`     // keep-alive idle timeout
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"` // graceful shutdown budget
	AllowedOrigins  []string      `yaml:"allowedOrigins"`  // CORS origins, "*" allows any
}

// DatabaseConfig relational store settings
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`   // sqlite, mysql or postgres
	Path     string `yaml:"path"`     // sqlite file path
	Host     string `yaml:"host"`     // database host
	Port     int    `yaml:"port"`     // database port
	Username string `yaml:"username"` // database user
	Password string `yaml:"password"` // database password
	Database string `yaml:"database"` // database name
	Charset  string `yaml:"charset"`  // mysql charset
	MaxIdle  int    `yaml:"maxIdle"`  // max idle connections
	MaxOpen  int    `yaml:"maxOpen"`  // max open connections
	LogLevel string `yaml:"logLevel"` // SQL log level: silent, error, warn, info
}

// JWTConfig token settings
type JWTConfig struct {
	Secret     string        `yaml:"secret"`     // HMAC secret
	ExpireTime time.Duration `yaml:"expireTime"` // token lifetime
	Issuer     string        `yaml:"issuer"`     // token issuer
}

// LogConfig logging settings
type LogConfig struct {
	Level      string `yaml:"level"`      // log level
	Filename   string `yaml:"filename"`   // log file
	MaxSize    int    `yaml:"maxSize"`    // max size per file (MB)
	MaxBackups int    `yaml:"maxBackups"` // rotated files kept
	MaxAge     int    `yaml:"maxAge"`     // days kept
	Compress   bool   `yaml:"compress"`   // gzip rotated files
	Console    bool   `yaml:"console"`    // also write to stdout
}

// RedisConfig shared presence store settings
type RedisConfig struct {
	Enabled     bool          `yaml:"enabled"`     // use redis for presence
	Host        string        `yaml:"host"`        // redis host
	Port        int           `yaml:"port"`        // redis port
	Password    string        `yaml:"password"`    // redis password
	DB          int           `yaml:"db"`          // redis db index
	PresenceTTL time.Duration `yaml:"presenceTTL"` // expiry of a presence entry without heartbeat
}

// WebSocketConfig messaging gateway settings
type WebSocketConfig struct {
	PingInterval   time.Duration `yaml:"pingInterval"`   // server ping period
	ReadTimeout    time.Duration `yaml:"readTimeout"`    // disconnect after this long without any frame
	WriteTimeout   time.Duration `yaml:"writeTimeout"`   // per-frame write deadline
	MaxMessageSize int64         `yaml:"maxMessageSize"` // max inbound frame size (bytes)
	SendBuffer     int           `yaml:"sendBuffer"`     // outbound queue per connection
	HistoryLimit   int           `yaml:"historyLimit"`   // messages replayed on join, at most 50
}

// UploadConfig file upload settings
type UploadConfig struct {
	Backend   string   `yaml:"backend"`   // local or s3
	Dir       string   `yaml:"dir"`       // local directory
	URLPrefix string   `yaml:"urlPrefix"` // public prefix of local files
	MaxSize   int64    `yaml:"maxSize"`   // max upload size (bytes)
	S3        S3Config `yaml:"s3"`
}

// S3Config object storage settings for the s3 upload backend
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"accessKeyId"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	PublicBaseURL   string `yaml:"publicBaseUrl"`
}

// RateLimitConfig per-IP token bucket
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
}

// LoadConfig loads config/config.yaml and applies environment overrides.
func LoadConfig() *Config {
	return LoadConfigFrom(DefaultConfigPath)
}

// LoadConfigFrom loads the YAML file at path, then applies environment overrides.
func LoadConfigFrom(path string) *Config {
	config := loadFromYAML(path)
	overrideWithEnvVars(config)
	return config
}

// loadFromYAML reads the file over the defaults so omitted keys keep their default value.
func loadFromYAML(filePath string) *Config {
	config := getDefaultConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return config
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return getDefaultConfig()
	}

	return config
}

// overrideWithEnvVars environment variables take precedence over the file
func overrideWithEnvVars(config *Config) {
	// server
	if port := getEnv("SERVER_PORT", ""); port != "" {
		config.Server.Port = port
	}
	if timeout := getEnvDuration("SERVER_READ_TIMEOUT", 0); timeout > 0 {
		config.Server.ReadTimeout = timeout
	}
	if timeout := getEnvDuration("SERVER_WRITE_TIMEOUT", 0); timeout > 0 {
		config.Server.WriteTimeout = timeout
	}
	if timeout := getEnvDuration("SERVER_IDLE_TIMEOUT", 0); timeout > 0 {
		config.Server.IdleTimeout = timeout
	}
	if timeout := getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 0); timeout > 0 {
		config.Server.ShutdownTimeout = timeout
	}
	if origins := getEnvList("SERVER_ALLOWED_ORIGINS"); len(origins) > 0 {
		config.Server.AllowedOrigins = origins
	}

	// database
	if driver := getEnv("DB_DRIVER", ""); driver != "" {
		config.Database.Driver = driver
	}
	if path := getEnv("DB_PATH", ""); path != "" {
		config.Database.Path = path
	}
	if host := getEnv("DB_HOST", ""); host != "" {
		config.Database.Host = host
	}
	if port := getEnvInt("DB_PORT", 0); port > 0 {
		config.Database.Port = port
	}
	if username := getEnv("DB_USERNAME", ""); username != "" {
		config.Database.Username = username
	}
	if password := getEnv("DB_PASSWORD", ""); password != "" {
		config.Database.Password = password
	}
	if database := getEnv("DB_DATABASE", ""); database != "" {
		config.Database.Database = database
	}
	if charset := getEnv("DB_CHARSET", ""); charset != "" {
		config.Database.Charset = charset
	}
	if maxIdle := getEnvInt("DB_MAX_IDLE", 0); maxIdle > 0 {
		config.Database.MaxIdle = maxIdle
	}
	if maxOpen := getEnvInt("DB_MAX_OPEN", 0); maxOpen > 0 {
		config.Database.MaxOpen = maxOpen
	}
	if level := getEnv("DB_LOG_LEVEL", ""); level != "" {
		config.Database.LogLevel = level
	}

	// jwt
	if secret := getEnv("JWT_SECRET", ""); secret != "" {
		config.JWT.Secret = secret
	}
	if expireTime := getEnvDuration("JWT_EXPIRE_TIME", 0); expireTime > 0 {
		config.JWT.ExpireTime = expireTime
	}
	if issuer := getEnv("JWT_ISSUER", ""); issuer != "" {
		config.JWT.Issuer = issuer
	}

	// log
	if level := getEnv("LOG_LEVEL", ""); level != "" {
		config.Log.Level = level
	}
	if filename := getEnv("LOG_FILENAME", ""); filename != "" {
		config.Log.Filename = filename
	}
	if maxSize := getEnvInt("LOG_MAX_SIZE", 0); maxSize > 0 {
		config.Log.MaxSize = maxSize
	}
	if maxBackups := getEnvInt("LOG_MAX_BACKUPS", 0); maxBackups > 0 {
		config.Log.MaxBackups = maxBackups
	}
	if maxAge := getEnvInt("LOG_MAX_AGE", 0); maxAge > 0 {
		config.Log.MaxAge = maxAge
	}
	config.Log.Console = getEnvBool("LOG_CONSOLE", config.Log.Console)

	// redis
	config.Redis.Enabled = getEnvBool("REDIS_ENABLED", config.Redis.Enabled)
	if host := getEnv("REDIS_HOST", ""); host != "" {
		config.Redis.Host = host
	}
	if port := getEnvInt("REDIS_PORT", 0); port > 0 {
		config.Redis.Port = port
	}
	if password := getEnv("REDIS_PASSWORD", ""); password != "" {
		config.Redis.Password = password
	}
	if db := getEnvInt("REDIS_DB", -1); db >= 0 {
		config.Redis.DB = db
	}
	if ttl := getEnvDuration("REDIS_PRESENCE_TTL", 0); ttl > 0 {
		config.Redis.PresenceTTL = ttl
	}

	// websocket
	if d := getEnvDuration("WS_PING_INTERVAL", 0); d > 0 {
		config.WebSocket.PingInterval = d
	}
	if d := getEnvDuration("WS_READ_TIMEOUT", 0); d > 0 {
		config.WebSocket.ReadTimeout = d
	}
	if d := getEnvDuration("WS_WRITE_TIMEOUT", 0); d > 0 {
		config.WebSocket.WriteTimeout = d
	}
	if n := getEnvInt("WS_HISTORY_LIMIT", 0); n > 0 {
		config.WebSocket.HistoryLimit = n
	}

	// upload
	if backend := getEnv("UPLOAD_BACKEND", ""); backend != "" {
		config.Upload.Backend = backend
	}
	if dir := getEnv("UPLOAD_DIR", ""); dir != "" {
		config.Upload.Dir = dir
	}
	if bucket := getEnv("UPLOAD_S3_BUCKET", ""); bucket != "" {
		config.Upload.S3.Bucket = bucket
	}
	if region := getEnv("UPLOAD_S3_REGION", ""); region != "" {
		config.Upload.S3.Region = region
	}
	if endpoint := getEnv("UPLOAD_S3_ENDPOINT", ""); endpoint != "" {
		config.Upload.S3.Endpoint = endpoint
	}
	if key := getEnv("UPLOAD_S3_ACCESS_KEY_ID", ""); key != "" {
		config.Upload.S3.AccessKeyID = key
	}
	if secret := getEnv("UPLOAD_S3_SECRET_ACCESS_KEY", ""); secret != "" {
		config.Upload.S3.SecretAccessKey = secret
	}

	// rate limit
	if rps := getEnvFloat("RATE_LIMIT_RPS", 0); rps > 0 {
		config.RateLimit.RequestsPerSecond = rps
	}
	if burst := getEnvInt("RATE_LIMIT_BURST", 0); burst > 0 {
		config.RateLimit.Burst = burst
	}
}

// getDefaultConfig built-in defaults
func getDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "3001",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Database: DatabaseConfig{
			Driver:   "sqlite",
			Path:     "data/connectsphere.db",
			Host:     "localhost",
			Port:     3306,
			Username: "connectsphere",
			Database: "connectsphere",
			Charset:  "utf8mb4",
			MaxIdle:  10,
			MaxOpen:  100,
			LogLevel: "warn",
		},
		JWT: JWTConfig{
			Secret:     "change-me-in-production",
			ExpireTime: 24 * time.Hour,
			Issuer:     "connectsphere",
		},
		Log: LogConfig{
			Level:      "info",
			Filename:   "logs/app.log",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
			Console:    true,
		},
		Redis: RedisConfig{
			Enabled:     false,
			Host:        "localhost",
			Port:        6379,
			DB:          0,
			PresenceTTL: 2 * time.Minute,
		},
		WebSocket: WebSocketConfig{
			PingInterval:   30 * time.Second,
			ReadTimeout:    90 * time.Second,
			WriteTimeout:   10 * time.Second,
			MaxMessageSize: 64 * 1024,
			SendBuffer:     256,
			HistoryLimit:   50,
		},
		Upload: UploadConfig{
			Backend:   "local",
			Dir:       "uploads",
			URLPrefix: "/uploads",
			MaxSize:   10 * 1024 * 1024,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 20,
			Burst:             40,
		},
	}
}

// getEnv returns the variable or defaultValue when unset
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated variable
func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
