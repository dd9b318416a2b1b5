// internal/config/config.go
package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig
	App     AppConfig
	Cache   CacheConfig
	Storage StorageConfig
	Drive   DriveConfig
}

type ServerConfig struct {
	Port              string
	Mode              string
	ReadTimeout       int
	WriteTimeout      int
	AllowedOrigins    []string
	RequestsPerSecond float64
	RequestBurst      int
}

type AppConfig struct {
	UploadDir            string
	DataDir              string
	MaxUploadBytes       int64
	MaxConcurrentImports int64
	LogLevel             string
}

type CacheConfig struct {
	Enabled           bool
	Backend           string
	RedisURL          string
	RedisHost         string
	RedisPort         string
	RedisPassword     string
	RedisDB           int
	ReportTTLSeconds  int
	DatasetTTLSeconds int
}

// StorageConfig describes the S3-compatible bucket workbooks and exports live in.
type StorageConfig struct {
	Driver    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type DriveConfig struct {
	CredentialsJSON string
}

const (
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"

	StorageDriverMinio   = "minio"
	StorageDriverSevalla = "sevalla"
)

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 30)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 60)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("SERVER_REQUESTS_PER_SECOND", 10.0)
		viper.SetDefault("SERVER_REQUEST_BURST", 30)
		viper.SetDefault("APP_UPLOAD_DIR", "./data/uploads")
		viper.SetDefault("APP_DATA_DIR", "./data/output")
		viper.SetDefault("APP_MAX_UPLOAD_BYTES", 50*1024*1024)
		viper.SetDefault("APP_MAX_CONCURRENT_IMPORTS", 4)
		viper.SetDefault("LOG_LEVEL", "info")
		viper.SetDefault("CACHE_ENABLED", true)
		viper.SetDefault("CACHE_BACKEND", CacheBackendMemory)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_REPORT_TTL_SECONDS", 900)
		viper.SetDefault("CACHE_DATASET_TTL_SECONDS", 3600)
		viper.SetDefault("STORAGE_DRIVER", StorageDriverMinio)
		viper.SetDefault("STORAGE_REGION", "us-east-1")
		viper.SetDefault("STORAGE_USE_SSL", true)

		// Read from environment variables
		viper.AutomaticEnv()

		ensureDir(viper.GetString("APP_UPLOAD_DIR"))
		ensureDir(viper.GetString("APP_DATA_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:              viper.GetString("SERVER_PORT"),
				Mode:              viper.GetString("SERVER_MODE"),
				ReadTimeout:       viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:      viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins:    viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
				RequestsPerSecond: viper.GetFloat64("SERVER_REQUESTS_PER_SECOND"),
				RequestBurst:      viper.GetInt("SERVER_REQUEST_BURST"),
			},
			App: AppConfig{
				UploadDir:            viper.GetString("APP_UPLOAD_DIR"),
				DataDir:              viper.GetString("APP_DATA_DIR"),
				MaxUploadBytes:       viper.GetInt64("APP_MAX_UPLOAD_BYTES"),
				MaxConcurrentImports: viper.GetInt64("APP_MAX_CONCURRENT_IMPORTS"),
				LogLevel:             viper.GetString("LOG_LEVEL"),
			},
			Cache: CacheConfig{
				Enabled:           viper.GetBool("CACHE_ENABLED"),
				Backend:           viper.GetString("CACHE_BACKEND"),
				RedisURL:          viper.GetString("REDIS_URL"),
				RedisHost:         viper.GetString("REDIS_HOST"),
				RedisPort:         viper.GetString("REDIS_PORT"),
				RedisPassword:     viper.GetString("REDIS_PASSWORD"),
				RedisDB:           viper.GetInt("REDIS_DB"),
				ReportTTLSeconds:  viper.GetInt("CACHE_REPORT_TTL_SECONDS"),
				DatasetTTLSeconds: viper.GetInt("CACHE_DATASET_TTL_SECONDS"),
			},
			Storage: StorageConfig{
				Driver:    viper.GetString("STORAGE_DRIVER"),
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				Region:    viper.GetString("STORAGE_REGION"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
			Drive: DriveConfig{
				CredentialsJSON: viper.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
			},
		}
	})

	return instance
}

// Reset drops the loaded configuration so the next Load re-reads the environment.
func Reset() {
	viper.Reset()
	once = sync.Once{}
	instance = nil
}

func ensureDir(dir string) {
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
