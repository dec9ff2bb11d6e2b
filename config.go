package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	RedisDriver = "redis"
	BoltDriver  = "bolt"
)

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit               string           `yaml:"git_commit" envconfig:"LIBR_GIT_COMMIT"`
	GitTag                  string           `yaml:"git_tag" envconfig:"LIBR_GIT_TAG"`
	BuildTime               string           `yaml:"build_time" envconfig:"LIBR_BUILD_TIME"`
	IsProduction            bool             `yaml:"is_production" envconfig:"LIBR_IS_PRODUCTION"`
	LogLevel                zapcore.Level    `yaml:"log_level" envconfig:"LIBR_LOG_LEVEL"`
	LogFolder               string           `yaml:"log_folder" envconfig:"LIBR_LOG_FOLDER"`
	LogMaxSize              int              `yaml:"log_max_size" envconfig:"LIBR_LOG_MAX_SIZE"` // megabytes
	OpsEndpointsEnable      bool             `yaml:"ops_endpoints_enable" envconfig:"LIBR_OPS_ENDPOINTS_ENABLE"`
	ProfilerEndpointsEnable bool             `yaml:"profiler_endpoints_enable" envconfig:"LIBR_PROFILER_ENDPOINTS_ENABLE"`
	Server                  ServerConfig     `yaml:"server"`
	Redis                   RedisConfig      `yaml:"redis"`
	BoltDB                  BoltDBConfig     `yaml:"boltdb"`
	Storage                 StorageConfig    `yaml:"storage"`
	Loans                   LoansConfig      `yaml:"loans"`
	Reconcile               ReconcileConfig  `yaml:"reconcile"`
	Pagination              PaginationConfig `yaml:"pagination"`
}

type ServerConfig struct {
	Host                    string        `yaml:"host" envconfig:"LIBR_SERVER_HOST"`
	Port                    string        `yaml:"port" envconfig:"LIBR_SERVER_PORT"`
	CertsFile               string        `yaml:"certs_file" envconfig:"LIBR_SERVER_CERTS_FILE"`
	KeyFile                 string        `yaml:"key_file" envconfig:"LIBR_SERVER_KEY_FILE"`
	ReadTimeout             time.Duration `yaml:"read_timeout" envconfig:"LIBR_SERVER_READ_TIMEOUT"`
	WriteTimeout            time.Duration `yaml:"write_timeout" envconfig:"LIBR_SERVER_WRITE_TIMEOUT"`
	LongRequestWriteTimeout time.Duration `yaml:"long_request_write_timeout" envconfig:"LIBR_SERVER_LONG_REQUEST_WRITE_TIMEOUT"`
	RequestTimeout          time.Duration `yaml:"request_timeout" envconfig:"LIBR_SERVER_REQUEST_TIMEOUT"` // Time to wait for a request to finish
	ShutdownTimeout         time.Duration `yaml:"shutdown_timeout" envconfig:"LIBR_SERVER_SHUTDOWN_TIMEOUT"`
}

type RedisConfig struct {
	Host          string        `yaml:"host" envconfig:"LIBR_REDIS_HOST"`
	Port          string        `yaml:"port" envconfig:"LIBR_REDIS_PORT"`
	DialTimeout   time.Duration `yaml:"dial_timeout" envconfig:"LIBR_REDIS_DIAL_TIMEOUT"`
	ReadTimeout   time.Duration `yaml:"read_timeout" envconfig:"LIBR_REDIS_READ_TIMEOUT"`
	WriteTimeout  time.Duration `yaml:"write_timeout" envconfig:"LIBR_REDIS_WRITE_TIMEOUT"`
	PoolSize      int           `yaml:"pool_size" envconfig:"LIBR_REDIS_POOL_SIZE"`
	PoolTimeout   time.Duration `yaml:"pool_timeout" envconfig:"LIBR_REDIS_POOL_TIMEOUT"`
	Username      string        `yaml:"username" envconfig:"LIBR_REDIS_USERNAME"`
	Password      string        `yaml:"password" envconfig:"LIBR_REDIS_PASSWORD"`
	DatabaseIndex int           `yaml:"db_index" envconfig:"LIBR_REDIS_DATABASE_INDEX"`
}

type BoltDBConfig struct {
	FilePath string        `yaml:"filepath" envconfig:"LIBR_BOLTDB_FILE_PATH"`
	Timeout  time.Duration `yaml:"timeout" envconfig:"LIBR_BOLTDB_TIMEOUT"`
}

// StorageConfig selects the documents store. Redis stays required in both
// cases because it carries the reconcile queue.
type StorageConfig struct {
	Driver        string        `yaml:"driver" envconfig:"LIBR_STORAGE_DRIVER"`
	Namespace     string        `yaml:"namespace" envconfig:"LIBR_STORAGE_NAMESPACE"`
	MaxRetries    int           `yaml:"max_retries" envconfig:"LIBR_STORAGE_MAX_RETRIES"`
	RetryInterval time.Duration `yaml:"retry_interval" envconfig:"LIBR_STORAGE_RETRY_INTERVAL"`
}

type LoansConfig struct {
	Durations        []int         `yaml:"durations" envconfig:"LIBR_LOANS_DURATIONS"`
	ClaimGracePeriod time.Duration `yaml:"claim_grace_period" envconfig:"LIBR_LOANS_CLAIM_GRACE_PERIOD"`
}

type ReconcileConfig struct {
	QueueName  string        `yaml:"queue_name" envconfig:"LIBR_RECONCILE_QUEUE_NAME"`
	PopTimeout time.Duration `yaml:"pop_timeout" envconfig:"LIBR_RECONCILE_POP_TIMEOUT"`
	Interval   time.Duration `yaml:"interval" envconfig:"LIBR_RECONCILE_INTERVAL"` // zero disables the periodic run
}

type PaginationConfig struct {
	DefaultLimit int `yaml:"default_limit" envconfig:"LIBR_PAGINATION_DEFAULT_LIMIT"`
	MaxLimit     int `yaml:"max_limit" envconfig:"LIBR_PAGINATION_MAX_LIMIT"`
}

// LoadConfigFile provides an instance of config structure for the all application.
func LoadConfigFile(configFile string) (*Config, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	cfg := &Config{}
	if err = yaml.NewDecoder(file).Decode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigEnvs reads the environments variables and provides an instance of the App config.
func LoadConfigEnvs(prefix string, config *Config) error {
	return envconfig.Process(prefix, config)
}

// setDefaults fills the optional settings left empty.
func setDefaults(config *Config) {
	if config.LogFolder == "" {
		config.LogFolder = "./logs"
	}
	if config.LogMaxSize <= 0 {
		config.LogMaxSize = 10
	}
	if config.Server.ShutdownTimeout == 0 {
		config.Server.ShutdownTimeout = 30 * time.Second
	}
	if config.Server.RequestTimeout == 0 {
		config.Server.RequestTimeout = 30 * time.Second
	}
	if config.Server.LongRequestWriteTimeout == 0 {
		config.Server.LongRequestWriteTimeout = time.Minute
	}
	if config.Storage.Driver == "" {
		config.Storage.Driver = RedisDriver
	}
	if config.Storage.Namespace == "" {
		config.Storage.Namespace = "library"
	}
	if config.Storage.MaxRetries <= 0 {
		config.Storage.MaxRetries = 10
	}
	if config.Storage.RetryInterval == 0 {
		config.Storage.RetryInterval = 10 * time.Millisecond
	}
	if len(config.Loans.Durations) == 0 {
		config.Loans.Durations = []int{7, 14, 21}
	}
	if config.Loans.ClaimGracePeriod == 0 {
		config.Loans.ClaimGracePeriod = 30 * time.Second
	}
	if config.Reconcile.QueueName == "" {
		config.Reconcile.QueueName = ReconcileQueue
	}
	if config.Reconcile.PopTimeout == 0 {
		config.Reconcile.PopTimeout = 5 * time.Second
	}
	if config.Pagination.DefaultLimit <= 0 {
		config.Pagination.DefaultLimit = 10
	}
	if config.Pagination.MaxLimit <= 0 {
		config.Pagination.MaxLimit = 100
	}
}

// InitConfig setup defaults values for non provided parameters
// and configures build tags values to be used if provided.
func InitConfig(config *Config, gitCommit, gitTag, buildTime string) error {
	if len(gitCommit) != 0 {
		config.GitCommit = gitCommit
	}

	if len(gitTag) != 0 {
		config.GitTag = gitTag
	}

	if len(buildTime) != 0 {
		config.BuildTime = buildTime
	}

	if len(config.Server.Host) == 0 || len(config.Server.Port) == 0 {
		return errors.New("make sure to set valid server address and port in configuration file")
	}

	if len(config.Redis.Host) == 0 || len(config.Redis.Port) == 0 {
		return errors.New("make sure to set valid redis address and port in configuration file")
	}

	setDefaults(config)

	switch config.Storage.Driver {
	case RedisDriver:
	case BoltDriver:
		if len(config.BoltDB.FilePath) == 0 {
			return errors.New("make sure to set a valid boltdb file path when using the bolt storage driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}

	for _, d := range config.Loans.Durations {
		if d <= 0 {
			return fmt.Errorf("invalid loan duration %d", d)
		}
	}

	return nil
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data.
func LoadAndInitConfigs(gitCommit, gitTag, buildTime string) (*Config, error) {
	// Setup the yaml configuration from file.
	config, err := LoadConfigFile("./config.yml")
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from file: %s", err)
	}

	// The environment file is optional.
	if err = godotenv.Load("./config.env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, fmt.Errorf("failed to set environment configurations: %s", err)
	}

	// Use environment variables with prefix `LIBR`.
	err = LoadConfigEnvs("LIBR", config)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %s", err)
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %s", err)
	}
	return config, nil
}
