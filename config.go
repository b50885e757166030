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

// Supported catalog storage drivers.
const (
	StorageDriverFile  = "file"
	StorageDriverBolt  = "bolt"
	StorageDriverRedis = "redis"
)

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit          string        `yaml:"git_commit" envconfig:"DLAP_GIT_COMMIT"`
	GitTag             string        `yaml:"git_tag" envconfig:"DLAP_GIT_TAG"`
	BuildTime          string        `yaml:"build_time" envconfig:"DLAP_BUILD_TIME"`
	IsProduction       bool          `yaml:"is_production" envconfig:"DLAP_IS_PRODUCTION"`
	LogLevel           zapcore.Level `yaml:"log_level" envconfig:"DLAP_LOG_LEVEL"`
	LogFolder          string        `yaml:"log_folder" envconfig:"DLAP_LOG_FOLDER"`
	LogMaxSize         int           `yaml:"log_max_size" envconfig:"DLAP_LOG_MAX_SIZE"` // in megabytes
	OpsEndpointsEnable bool          `yaml:"ops_endpoints_enable" envconfig:"DLAP_OPS_ENDPOINTS_ENABLE"`
	ProfilerEnable     bool          `yaml:"profiler_enable" envconfig:"DLAP_PROFILER_ENABLE"`
	Server             ServerConfig  `yaml:"server"`
	Storage            StorageConfig `yaml:"storage"`
	File               FileConfig    `yaml:"file"`
	Redis              RedisConfig   `yaml:"redis"`
	BoltDB             BoltDBConfig  `yaml:"boltdb"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"DLAP_SERVER_HOST"`
	Port            string        `yaml:"port" envconfig:"DLAP_SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"DLAP_SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"DLAP_SERVER_WRITE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"DLAP_SERVER_REQUEST_TIMEOUT"` // Time to wait for a request to finish
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"DLAP_SERVER_SHUTDOWN_TIMEOUT"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" envconfig:"DLAP_STORAGE_DRIVER"`
}

type FileConfig struct {
	Path   string `yaml:"path" envconfig:"DLAP_FILE_PATH"`
	Indent int    `yaml:"indent" envconfig:"DLAP_FILE_INDENT"`
}

type RedisConfig struct {
	Host          string        `yaml:"host" envconfig:"DLAP_REDIS_HOST"`
	Port          string        `yaml:"port" envconfig:"DLAP_REDIS_PORT"`
	DialTimeout   time.Duration `yaml:"dial_timeout" envconfig:"DLAP_REDIS_DIAL_TIMEOUT"`
	ReadTimeout   time.Duration `yaml:"read_timeout" envconfig:"DLAP_REDIS_READ_TIMEOUT"`
	WriteTimeout  time.Duration `yaml:"write_timeout" envconfig:"DLAP_REDIS_WRITE_TIMEOUT"`
	PoolSize      int           `yaml:"pool_size" envconfig:"DLAP_REDIS_POOL_SIZE"`
	PoolTimeout   time.Duration `yaml:"pool_timeout" envconfig:"DLAP_REDIS_POOL_TIMEOUT"`
	Username      string        `yaml:"username" envconfig:"DLAP_REDIS_USERNAME"`
	Password      string        `yaml:"password" envconfig:"DLAP_REDIS_PASSWORD" json:"-"`
	DatabaseIndex int           `yaml:"db_index" envconfig:"DLAP_REDIS_DATABASE_INDEX"`
	Key           string        `yaml:"key" envconfig:"DLAP_REDIS_KEY"`
}

type BoltDBConfig struct {
	FilePath   string        `yaml:"filepath" envconfig:"DLAP_BOLTDB_FILE_PATH"`
	Timeout    time.Duration `yaml:"timeout" envconfig:"DLAP_BOLTDB_TIMEOUT"`
	BucketName string        `yaml:"bucket_name" envconfig:"DLAP_BOLTDB_BUCKET_NAME"`
	Key        string        `yaml:"key" envconfig:"DLAP_BOLTDB_KEY"`
}

// LoadConfigFile provides an instance of config structure for the all application.
func LoadConfigFile(configFile string) (*Config, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	cfg := &Config{}
	yd := yaml.NewDecoder(file)
	err = yd.Decode(cfg)

	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigEnvs reads the environments variables and provides an instance of the App config.
func LoadConfigEnvs(prefix string, config *Config) error {
	return envconfig.Process(prefix, config)
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

	if config.Server.ShutdownTimeout == 0 {
		config.Server.ShutdownTimeout = 10 * time.Second
	}

	if config.Server.RequestTimeout == 0 {
		config.Server.RequestTimeout = 30 * time.Second
	}

	if len(config.LogFolder) == 0 {
		config.LogFolder = "./logs"
	}

	if config.LogMaxSize <= 0 {
		config.LogMaxSize = 10
	}

	if len(config.Storage.Driver) == 0 {
		config.Storage.Driver = StorageDriverFile
	}

	switch config.Storage.Driver {
	case StorageDriverFile:
		if len(config.File.Path) == 0 {
			config.File.Path = "data.db"
		}
		if config.File.Indent <= 0 {
			config.File.Indent = 4
		}
	case StorageDriverBolt:
		if len(config.BoltDB.FilePath) == 0 || len(config.BoltDB.BucketName) == 0 {
			return errors.New("make sure to set valid boltdb file path and bucket name in configuration file")
		}
		if len(config.BoltDB.Key) == 0 {
			config.BoltDB.Key = "books"
		}
	case StorageDriverRedis:
		if len(config.Redis.Host) == 0 || len(config.Redis.Port) == 0 {
			return errors.New("make sure to set valid redis address and port in configuration file")
		}
		if len(config.Redis.Key) == 0 {
			config.Redis.Key = "books"
		}
	default:
		return fmt.Errorf("unsupported storage driver %q: must be one of file, bolt or redis", config.Storage.Driver)
	}

	return nil
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data. The environment file is optional.
func LoadAndInitConfigs(configFile, envFile, gitCommit, gitTag, buildTime string) (*Config, error) {
	// Setup the yaml configuration from file.
	config, err := LoadConfigFile(configFile)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from file: %s", err)
	}

	// Set the environment configuration.
	if _, err = os.Stat(envFile); err == nil {
		if err = godotenv.Load(envFile); err != nil {
			return config, fmt.Errorf("failed to set environment configurations: %s", err)
		}
	}

	// Use environment variables with prefix `DLAP`.
	err = LoadConfigEnvs("DLAP", config)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %s", err)
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %s", err)
	}
	return config, nil
}
