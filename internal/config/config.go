package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 监控服务配置
type Config struct {
	Monitor   MonitorConfig   `yaml:"monitor"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	Alert     AlertConfig     `yaml:"alert"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
}

// MonitorConfig 采样配置
type MonitorConfig struct {
	Interval   time.Duration `yaml:"interval"`    // 采样间隔
	BufferSize int           `yaml:"buffer_size"` // 样本环形缓冲区容量
}

// GatewayConfig 设备命令网关配置
type GatewayConfig struct {
	ADBPath        string        `yaml:"adb_path"`        // adb可执行文件路径
	TidevicePath   string        `yaml:"tidevice_path"`   // tidevice可执行文件路径
	CommandTimeout time.Duration `yaml:"command_timeout"` // 单条命令超时时间
	SSH            SSHConfig     `yaml:"ssh"`             // SSH网关配置
}

// SSHConfig SSH网关配置，用于联网的可登录测试设备
type SSHConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"` // host:port
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// AlertConfig 告警阈值配置
type AlertConfig struct {
	CPUThreshold         float64 `yaml:"cpu_threshold"`          // CPU使用率上限（%）
	MemoryThreshold      float64 `yaml:"memory_threshold"`       // 内存使用量上限（MB）
	FPSThreshold         float64 `yaml:"fps_threshold"`          // FPS下限
	BatteryTempThreshold float64 `yaml:"battery_temp_threshold"` // 电池温度上限（摄氏度）
}

// APIConfig HTTP API配置
type APIConfig struct {
	Addr        string        `yaml:"addr"`         // 监听地址
	JWTSecret   string        `yaml:"jwt_secret"`   // 为空则不启用认证
	TokenExpiry time.Duration `yaml:"token_expiry"` // 令牌过期时间
}

// WebSocketConfig WebSocket推送配置
type WebSocketConfig struct {
	ReadBufferSize  int `yaml:"read_buffer_size"`
	WriteBufferSize int `yaml:"write_buffer_size"`
	BufferSize      int `yaml:"buffer_size"` // 每个客户端的发送队列长度
}

// KafkaConfig Kafka样本发布配置
type KafkaConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic"`
	BatchTimeout time.Duration `yaml:"batch_timeout"`
	MaxRetry     int           `yaml:"max_retry"`
}

// RedisConfig Redis样本缓存配置
type RedisConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Addr       string        `yaml:"addr"`
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db"`
	KeyPrefix  string        `yaml:"key_prefix"`
	TTL        time.Duration `yaml:"ttl"`
	MaxSamples int           `yaml:"max_samples"` // 每个监控保留的最近样本数
}

// LoadConfig 加载配置文件并填充默认值
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// DefaultConfig 返回全默认值配置
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults 为零值字段设置默认值
func (c *Config) applyDefaults() {
	if c.Monitor.Interval == 0 {
		c.Monitor.Interval = 1 * time.Second
	}
	if c.Monitor.BufferSize == 0 {
		c.Monitor.BufferSize = 1000
	}
	if c.Gateway.ADBPath == "" {
		c.Gateway.ADBPath = "adb"
	}
	if c.Gateway.TidevicePath == "" {
		c.Gateway.TidevicePath = "tidevice"
	}
	if c.Gateway.CommandTimeout == 0 {
		c.Gateway.CommandTimeout = 10 * time.Second
	}
	if c.Alert.CPUThreshold == 0 {
		c.Alert.CPUThreshold = 80.0
	}
	if c.Alert.MemoryThreshold == 0 {
		c.Alert.MemoryThreshold = 80.0
	}
	if c.Alert.FPSThreshold == 0 {
		c.Alert.FPSThreshold = 30.0
	}
	if c.Alert.BatteryTempThreshold == 0 {
		c.Alert.BatteryTempThreshold = 45.0
	}
	if c.API.Addr == "" {
		c.API.Addr = ":8080"
	}
	if c.API.TokenExpiry == 0 {
		c.API.TokenExpiry = 1 * time.Hour
	}
	if c.WebSocket.ReadBufferSize == 0 {
		c.WebSocket.ReadBufferSize = 1024
	}
	if c.WebSocket.WriteBufferSize == 0 {
		c.WebSocket.WriteBufferSize = 1024
	}
	if c.WebSocket.BufferSize == 0 {
		c.WebSocket.BufferSize = 256
	}
	if c.Kafka.BatchTimeout == 0 {
		c.Kafka.BatchTimeout = 1 * time.Second
	}
	if c.Kafka.MaxRetry == 0 {
		c.Kafka.MaxRetry = 3
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "samples"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "appmon:"
	}
	if c.Redis.TTL == 0 {
		c.Redis.TTL = 1 * time.Hour
	}
	if c.Redis.MaxSamples == 0 {
		c.Redis.MaxSamples = 1000
	}
}
