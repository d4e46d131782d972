package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Queue      QueueConfig      `mapstructure:"queue"`
	Email      EmailConfig      `mapstructure:"email"`
	OSS        OSSConfig        `mapstructure:"oss"`
	Dataset    DatasetConfig    `mapstructure:"dataset"`
	Training   TrainingConfig   `mapstructure:"training"`
	TopicModel TopicModelConfig `mapstructure:"topic_model"`
	Upload     UploadConfig     `mapstructure:"upload"`
	CORS       CORSConfig       `mapstructure:"cors"`
}

type ServerConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
	BaseURL string `mapstructure:"base_url"` // public URL prefix used in notification links
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // mysql or sqlite
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type QueueConfig struct {
	TrainingQueue string `mapstructure:"training_queue"`
	MaxWorkers    int    `mapstructure:"max_workers"`
	PopTimeout    int    `mapstructure:"pop_timeout"` // seconds each BRPop blocks before re-checking shutdown
}

type EmailConfig struct {
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	CDNDomain       string `mapstructure:"cdn_domain"`
}

type DatasetConfig struct {
	DevSplit float64 `mapstructure:"dev_split"` // fraction of rows held out for the dev set
	MinRows  int     `mapstructure:"min_rows"`  // 0 means derive from dev_split
}

type TrainingConfig struct {
	ModelPath      string `mapstructure:"model_path"` // base transformers model
	CacheDir       string `mapstructure:"cache_dir"`
	NumTrainEpochs int    `mapstructure:"num_train_epochs"`
	PythonBin      string `mapstructure:"python_bin"`
	RunnerScript   string `mapstructure:"runner_script"` // python entrypoint invoked per task
}

type TopicModelConfig struct {
	MalletBinDir     string `mapstructure:"mallet_bin_dir"`
	Iterations       int    `mapstructure:"iterations"`
	DefaultNumTopics int    `mapstructure:"default_num_topics"`
	ContentColumn    string `mapstructure:"content_column"`
	IDColumn         string `mapstructure:"id_column"`
}

type UploadConfig struct {
	DataDir     string `mapstructure:"data_dir"` // root of per-resource working directories
	TempDir     string `mapstructure:"temp_dir"`
	MaxSize     int64  `mapstructure:"max_size"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

func Load(configPath string) (*Config, error) {
	// Prefer config.local.yaml if present (real credentials, not committed).
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Dataset.DevSplit <= 0 || cfg.Dataset.DevSplit >= 1 {
		cfg.Dataset.DevSplit = 0.2
	}
	if cfg.Queue.TrainingQueue == "" {
		cfg.Queue.TrainingQueue = "training_jobs"
	}
	if cfg.Queue.MaxWorkers <= 0 {
		cfg.Queue.MaxWorkers = 1
	}
	if cfg.Queue.PopTimeout <= 0 {
		cfg.Queue.PopTimeout = 5
	}
	if cfg.Training.NumTrainEpochs <= 0 {
		cfg.Training.NumTrainEpochs = 3
	}
	if cfg.Training.PythonBin == "" {
		cfg.Training.PythonBin = "python3"
	}
	if cfg.TopicModel.Iterations <= 0 {
		cfg.TopicModel.Iterations = 1000
	}
	if cfg.TopicModel.DefaultNumTopics <= 0 {
		cfg.TopicModel.DefaultNumTopics = 10
	}
	if cfg.TopicModel.ContentColumn == "" {
		cfg.TopicModel.ContentColumn = "example"
	}
	if cfg.TopicModel.IDColumn == "" {
		cfg.TopicModel.IDColumn = "id"
	}
	if cfg.Upload.DataDir == "" {
		cfg.Upload.DataDir = "./project_data"
	}
	if cfg.Upload.TempDir == "" {
		cfg.Upload.TempDir = os.TempDir()
	}
	if cfg.Upload.ExpireHours <= 0 {
		cfg.Upload.ExpireHours = 24
	}
}
