package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server          ServerConfig          `mapstructure:"server"`
	Log             LogConfig             `mapstructure:"log"`
	JWT             JWTConfig             `mapstructure:"jwt"`
	Minio           MinioConfig           `mapstructure:"minio"`
	Redis           RedisConfig           `mapstructure:"redis"`
	Kafka           KafkaConfig           `mapstructure:"kafka"`
	Engine          EngineConfig          `mapstructure:"engine"`
	Transcription   TranscriptionConfig   `mapstructure:"transcription"`
	Worker          WorkerConfig          `mapstructure:"worker"`
	ServiceRegistry ServiceRegistryConfig `mapstructure:"service_registry"`
	Observability   ObservabilityConfig   `mapstructure:"observability"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	Filename string `mapstructure:"filename"`
}

// JWTConfig 请求身份解析配置
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// MinioConfig MinIO配置
type MinioConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKey       string `mapstructure:"access_key"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	SecretKey       string `mapstructure:"secret_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	EnableTLS    bool          `mapstructure:"enable_tls"`
	AnalysisTTL  time.Duration `mapstructure:"analysis_ttl"`
}

// KafkaConfig Kafka配置
type KafkaConfig struct {
	Enabled          bool              `mapstructure:"enabled"`
	BootstrapServers []string          `mapstructure:"bootstrap_servers"`
	ClientID         string            `mapstructure:"client_id"`
	Topics           KafkaTopicsConfig `mapstructure:"topics"`
}

// KafkaTopicsConfig 主题配置
type KafkaTopicsConfig struct {
	JobEvents string `mapstructure:"job_events"`
}

// EngineConfig 转码引擎配置
type EngineConfig struct {
	StepDelay      time.Duration `mapstructure:"step_delay"`
	CallTimeout    time.Duration `mapstructure:"call_timeout"`
	AbortOnCancel  bool          `mapstructure:"abort_on_cancel"`
	ThumbnailCount int           `mapstructure:"thumbnail_count"`
}

// TranscriptionConfig 语音识别引擎配置
type TranscriptionConfig struct {
	ProviderEnabled  bool          `mapstructure:"provider_enabled"`
	ProviderEndpoint string        `mapstructure:"provider_endpoint"`
	ProviderAPIKey   string        `mapstructure:"provider_api_key"`
	ProviderModel    string        `mapstructure:"provider_model"`
	CallTimeout      time.Duration `mapstructure:"call_timeout"`
	TranslateURL     string        `mapstructure:"translate_url"`
}

// WorkerConfig Worker相关配置
type WorkerConfig struct {
	WorkerID            string        `mapstructure:"worker_id"`
	WorkerCount         int           `mapstructure:"worker_count"`
	QueueCapacity       int           `mapstructure:"queue_capacity"`
	PerOwnerLimit       int           `mapstructure:"per_owner_limit"`
	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period"`
}

// ServiceRegistryConfig registration configuration.
type ServiceRegistryConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Endpoints       []string      `mapstructure:"endpoints"`
	ServiceName     string        `mapstructure:"service_name"`
	ServiceID       string        `mapstructure:"service_id"`
	RegisterHost    string        `mapstructure:"register_host"`
	TTL             time.Duration `mapstructure:"ttl"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	DialTimeout     time.Duration `mapstructure:"dial_timeout"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
}

// ObservabilityConfig 持续性能剖析配置
type ObservabilityConfig struct {
	ProfilingEnabled bool   `mapstructure:"profiling_enabled"`
	ServerAddress    string `mapstructure:"server_address"`
}

var (
	globalMu     sync.RWMutex
	globalConfig *Config
)

// SetGlobalConfig 设置全局配置
func SetGlobalConfig(cfg *Config) {
	globalMu.Lock()
	globalConfig = cfg
	globalMu.Unlock()
}

// GetGlobalConfig 获取全局配置
func GetGlobalConfig() *Config {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalConfig
}

// Load 加载配置
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.SetDefault("server.port", 8084)
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
	viper.SetDefault("kafka.client_id", "media-service")
	viper.SetDefault("kafka.topics.job_events", "media.job.events")
	viper.SetDefault("service_registry.service_name", "media-service")
	viper.SetDefault("worker.per_owner_limit", 50)

	// 设置环境变量前缀
	viper.SetEnvPrefix("MEDIA_SERVICE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	// 解析配置
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.normalize()

	return &config, nil
}

// normalize 补全配置的默认值
func (c *Config) normalize() {
	// 兼容不同的密钥字段
	if c.Minio.AccessKeyID == "" {
		c.Minio.AccessKeyID = c.Minio.AccessKey
	}
	if c.Minio.SecretAccessKey == "" {
		c.Minio.SecretAccessKey = c.Minio.SecretKey
	}

	if c.Worker.WorkerCount <= 0 {
		c.Worker.WorkerCount = 4
	}
	if c.Worker.QueueCapacity <= 0 {
		c.Worker.QueueCapacity = c.Worker.WorkerCount * 25
	}
	if c.Worker.PerOwnerLimit <= 0 {
		c.Worker.PerOwnerLimit = 50
	}
	if c.Worker.ShutdownGracePeriod == 0 {
		c.Worker.ShutdownGracePeriod = 10 * time.Second
	}
	if c.Worker.WorkerID == "" {
		c.Worker.WorkerID = "media-worker"
	}

	if c.Engine.StepDelay <= 0 {
		c.Engine.StepDelay = 200 * time.Millisecond
	}
	if c.Engine.CallTimeout <= 0 {
		c.Engine.CallTimeout = 10 * time.Minute
	}
	if c.Engine.ThumbnailCount <= 0 {
		c.Engine.ThumbnailCount = 3
	}

	if c.Transcription.CallTimeout <= 0 {
		c.Transcription.CallTimeout = 2 * time.Minute
	}
	if c.Transcription.ProviderModel == "" {
		c.Transcription.ProviderModel = "whisper-1"
	}

	if c.Redis.AnalysisTTL <= 0 {
		c.Redis.AnalysisTTL = time.Hour
	}

	if len(c.Kafka.BootstrapServers) == 0 {
		c.Kafka.BootstrapServers = []string{"localhost:29092"}
	}
	if c.Kafka.ClientID == "" {
		c.Kafka.ClientID = "media-service"
	}

	if c.ServiceRegistry.ServiceName == "" {
		c.ServiceRegistry.ServiceName = "media-service"
	}
	if c.ServiceRegistry.TTL == 0 {
		c.ServiceRegistry.TTL = 30 * time.Second
	}
	if c.ServiceRegistry.RefreshInterval == 0 {
		c.ServiceRegistry.RefreshInterval = 10 * time.Second
	}
	if c.ServiceRegistry.DialTimeout == 0 {
		c.ServiceRegistry.DialTimeout = 5 * time.Second
	}
}

// GetRedisAddr 获取Redis地址
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetMinioEndpoint 获取MinIO端点
func (c *MinioConfig) GetMinioEndpoint() string {
	return c.Endpoint
}
