package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

const (
	ProviderOpenAI    = "openai"
	ProviderGroq      = "groq"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
)

var DefaultAllowedMIMETypes = []string{
	"application/pdf",
	"image/jpeg",
	"image/png",
	"image/gif",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"text/plain",
}

type Config struct {
	Env      string
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	AI       AIConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Log      LogConfig
	Sales    SalesConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	JWTSecret          string
	JWTIssuer          string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	RateLimitPerMinute int
	RateLimitBurst     int
}

type AIConfig struct {
	Provider           string
	APIKey             string
	BaseURL            string
	Model              string
	Timeout            time.Duration
	RateLimitPerMinute int
	RateLimitBurst     int
	MaxOutputTokens    int
}

// CacheConfig описывает Redis кэш рекомендаций. Пустой адрес отключает кэш.
type CacheConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type StorageConfig struct {
	UploadDir        string
	MaxUploadBytes   int64
	AllowedMIMETypes []string
}

type LogConfig struct {
	Level  string
	Format string
}

type SalesConfig struct {
	Emails []string
}

// Enabled сообщает, настроен ли Redis.
func (c CacheConfig) Enabled() bool {
	return strings.TrimSpace(c.Addr) != ""
}

// Load загружает конфигурацию приложения из окружения и .env.
func Load() (Config, error) {
	cfg := Config{}

	if err := loadEnv(); err != nil {
		return cfg, err
	}

	v := newViper()

	cfg.Env = v.GetString("APP_ENV")

	serverPort, err := parseIntEnv(v, "SERVER_PORT")
	if err != nil {
		return cfg, err
	}

	readTimeout, err := parseDurationEnv(v, "SERVER_READ_TIMEOUT")
	if err != nil {
		return cfg, err
	}

	writeTimeout, err := parseDurationEnv(v, "SERVER_WRITE_TIMEOUT")
	if err != nil {
		return cfg, err
	}

	idleTimeout, err := parseDurationEnv(v, "SERVER_IDLE_TIMEOUT")
	if err != nil {
		return cfg, err
	}

	cfg.Server = ServerConfig{
		Host:         v.GetString("SERVER_HOST"),
		Port:         serverPort,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	dbPort, err := parseIntEnv(v, "DB_PORT")
	if err != nil {
		return cfg, err
	}

	maxOpenConns, err := parseIntEnv(v, "DB_MAX_OPEN_CONNS")
	if err != nil {
		return cfg, err
	}

	maxIdleConns, err := parseIntEnv(v, "DB_MAX_IDLE_CONNS")
	if err != nil {
		return cfg, err
	}

	connMaxIdleTime, err := parseDurationEnv(v, "DB_CONN_MAX_IDLE_TIME")
	if err != nil {
		return cfg, err
	}

	connMaxLifetime, err := parseDurationEnv(v, "DB_CONN_MAX_LIFETIME")
	if err != nil {
		return cfg, err
	}

	cfg.Database = DatabaseConfig{
		Host:            v.GetString("DB_HOST"),
		Port:            dbPort,
		User:            v.GetString("DB_USER"),
		Password:        v.GetString("DB_PASSWORD"),
		Name:            v.GetString("DB_NAME"),
		SSLMode:         v.GetString("DB_SSLMODE"),
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		ConnMaxIdleTime: connMaxIdleTime,
		ConnMaxLifetime: connMaxLifetime,
	}

	accessTTL, err := parseDurationEnv(v, "JWT_ACCESS_TTL")
	if err != nil {
		return cfg, err
	}

	refreshTTL, err := parseDurationEnv(v, "JWT_REFRESH_TTL")
	if err != nil {
		return cfg, err
	}

	rateLimitPerMinute, err := parseIntEnv(v, "AUTH_RATE_LIMIT_PER_MINUTE")
	if err != nil {
		return cfg, err
	}

	rateLimitBurst, err := parseIntEnv(v, "AUTH_RATE_LIMIT_BURST")
	if err != nil {
		return cfg, err
	}

	cfg.Auth = AuthConfig{
		JWTSecret:          v.GetString("JWT_SECRET"),
		JWTIssuer:          v.GetString("JWT_ISSUER"),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
		RateLimitPerMinute: rateLimitPerMinute,
		RateLimitBurst:     rateLimitBurst,
	}

	if cfg.AI, err = loadAI(v); err != nil {
		return cfg, err
	}

	cacheDB, err := parseNonNegativeIntEnv(v, "REDIS_DB")
	if err != nil {
		return cfg, err
	}

	cacheTTL, err := parseDurationEnv(v, "QUOTE_CACHE_TTL")
	if err != nil {
		return cfg, err
	}

	cfg.Cache = CacheConfig{
		Addr:     v.GetString("REDIS_ADDR"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       cacheDB,
		TTL:      cacheTTL,
	}

	maxUploadBytes, err := parseIntEnv(v, "STORAGE_MAX_UPLOAD_BYTES")
	if err != nil {
		return cfg, err
	}

	allowedTypes := parseCSVEnv(v, "STORAGE_ALLOWED_MIME_TYPES")
	if len(allowedTypes) == 0 {
		allowedTypes = append([]string(nil), DefaultAllowedMIMETypes...)
	}

	cfg.Storage = StorageConfig{
		UploadDir:        v.GetString("STORAGE_UPLOAD_DIR"),
		MaxUploadBytes:   int64(maxUploadBytes),
		AllowedMIMETypes: allowedTypes,
	}

	cfg.Log = LogConfig{
		Level:  strings.ToLower(v.GetString("LOG_LEVEL")),
		Format: strings.ToLower(v.GetString("LOG_FORMAT")),
	}

	cfg.Sales = SalesConfig{
		Emails: parseCSVEnv(v, "SALES_EMAILS"),
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func loadAI(v *viper.Viper) (AIConfig, error) {
	aiTimeout, err := parseDurationEnv(v, "AI_TIMEOUT")
	if err != nil {
		return AIConfig{}, err
	}

	aiRateLimitPerMinute, err := parseIntEnv(v, "AI_RATE_LIMIT_PER_MINUTE")
	if err != nil {
		return AIConfig{}, err
	}

	aiRateLimitBurst, err := parseIntEnv(v, "AI_RATE_LIMIT_BURST")
	if err != nil {
		return AIConfig{}, err
	}

	aiMaxOutputTokens, err := parseIntEnv(v, "AI_MAX_OUTPUT_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	provider := strings.ToLower(strings.TrimSpace(v.GetString("AI_PROVIDER")))
	defaultBaseURL, defaultModel := providerDefaults(provider)

	apiKey := v.GetString("AI_API_KEY")
	if apiKey == "" {
		switch provider {
		case ProviderOpenAI:
			apiKey = v.GetString("OPENAI_API_KEY")
		case ProviderGemini:
			apiKey = v.GetString("GEMINI_API_KEY")
		case ProviderAnthropic:
			apiKey = v.GetString("ANTHROPIC_API_KEY")
		case ProviderGroq:
			apiKey = v.GetString("GROQ_API_KEY")
		}
	}

	baseURL := v.GetString("AI_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	model := v.GetString("AI_MODEL")
	if model == "" {
		model = defaultModel
	}

	return AIConfig{
		Provider:           provider,
		APIKey:             apiKey,
		BaseURL:            baseURL,
		Model:              model,
		Timeout:            aiTimeout,
		RateLimitPerMinute: aiRateLimitPerMinute,
		RateLimitBurst:     aiRateLimitBurst,
		MaxOutputTokens:    aiMaxOutputTokens,
	}, nil
}

func providerDefaults(provider string) (baseURL string, model string) {
	switch provider {
	case ProviderGroq:
		return "https://api.groq.com/openai/v1", "llama-3.3-70b-versatile"
	case ProviderGemini:
		return "https://generativelanguage.googleapis.com/v1beta", "gemini-1.5-flash"
	case ProviderAnthropic:
		return "", "claude-3-5-haiku-latest"
	default:
		return "https://api.openai.com/v1", "gpt-4.1"
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "local")

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", "5s")
	// POST /quotes держит соединение до ответа модели.
	v.SetDefault("SERVER_WRITE_TIMEOUT", "90s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "60s")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "toyota")
	v.SetDefault("DB_PASSWORD", "toyota")
	v.SetDefault("DB_NAME", "toyota_financing")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", "5m")
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "toyota-financing")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "168h")
	v.SetDefault("AUTH_RATE_LIMIT_PER_MINUTE", 60)
	v.SetDefault("AUTH_RATE_LIMIT_BURST", 10)

	v.SetDefault("AI_PROVIDER", ProviderOpenAI)
	v.SetDefault("AI_TIMEOUT", "60s")
	v.SetDefault("AI_RATE_LIMIT_PER_MINUTE", 10)
	v.SetDefault("AI_RATE_LIMIT_BURST", 3)
	v.SetDefault("AI_MAX_OUTPUT_TOKENS", 4096)

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("QUOTE_CACHE_TTL", "6h")

	v.SetDefault("STORAGE_UPLOAD_DIR", "uploads")
	v.SetDefault("STORAGE_MAX_UPLOAD_BYTES", 10<<20)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	return v
}

// DSN возвращает строку подключения к базе данных.
func (c DatabaseConfig) DSN() string {
	user := url.UserPassword(c.User, c.Password)
	dsn := url.URL{
		Scheme: "postgres",
		User:   user,
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}

	query := url.Values{}
	query.Set("sslmode", c.SSLMode)
	return dsn.String() + "?" + query.Encode()
}

// IsSalesEmail сообщает, разрешено ли выдавать роль sales для email.
func (c SalesConfig) IsSalesEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, allowed := range c.Emails {
		if allowed == email {
			return true
		}
	}
	return false
}

func (c Config) validate() error {
	if c.Server.Port <= 0 {
		return eris.New("SERVER_PORT must be greater than 0")
	}

	if c.Database.Host == "" {
		return eris.New("DB_HOST is required")
	}

	if c.Database.User == "" {
		return eris.New("DB_USER is required")
	}

	if c.Database.Name == "" {
		return eris.New("DB_NAME is required")
	}

	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return eris.New("DB_MAX_IDLE_CONNS cannot exceed DB_MAX_OPEN_CONNS")
	}

	if c.Auth.JWTSecret == "" {
		return eris.New("JWT_SECRET is required")
	}

	switch c.AI.Provider {
	case ProviderOpenAI, ProviderGroq, ProviderGemini, ProviderAnthropic:
	default:
		return eris.Errorf("AI_PROVIDER must be one of openai, groq, gemini, anthropic; got %q", c.AI.Provider)
	}

	if c.Storage.UploadDir == "" {
		return eris.New("STORAGE_UPLOAD_DIR is required")
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		return eris.Errorf("LOG_FORMAT must be json or console; got %q", c.Log.Format)
	}

	return nil
}

func parseIntEnv(v *viper.Viper, key string) (int, error) {
	parsed, err := parseNonNegativeIntEnv(v, key)
	if err != nil {
		return 0, err
	}

	if parsed <= 0 {
		return 0, eris.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseNonNegativeIntEnv(v *viper.Viper, key string) (int, error) {
	value := strings.TrimSpace(v.GetString(key))

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, eris.Wrapf(err, "%s must be an integer", key)
	}

	if parsed < 0 {
		return 0, eris.Errorf("%s must not be negative", key)
	}

	return parsed, nil
}

func parseDurationEnv(v *viper.Viper, key string) (time.Duration, error) {
	value := strings.TrimSpace(v.GetString(key))

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, eris.Wrapf(err, "%s must be a duration", key)
	}

	if parsed <= 0 {
		return 0, eris.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func parseCSVEnv(v *viper.Viper, key string) []string {
	value := v.GetString(key)
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(part))
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func loadEnv() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return eris.Wrapf(err, "load env file %s", envFile)
		}
		return nil
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return eris.Wrap(err, "load .env")
	}

	return nil
}
