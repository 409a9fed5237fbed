// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找，并允许 .env / 环境变量覆盖
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName  string `toml:"appName"`  // 应用名称，用于日志标识等
	Host     string `toml:"host"`     // 服务器监听地址，如 "0.0.0.0"
	Port     int    `toml:"port"`     // 服务器监听端口，如 8000
	Mode     string `toml:"mode"`     // 运行模式："dev" 或 "release"
	ForceTLS bool   `toml:"forceTLS"` // 是否把 HTTP 请求重定向到 HTTPS
}

// APIConfig 外部好友服务配置
type APIConfig struct {
	BaseURL string        `toml:"baseURL"` // 好友服务根地址，如 "http://localhost:8080"
	Timeout time.Duration `toml:"timeout"` // HTTP 超时（秒），0 表示不设超时
}

// TokenConfig 凭证读取配置
type TokenConfig struct {
	CookieName    string `toml:"cookieName"`    // 浏览器侧存放凭证的 key，默认 "id_token"
	BrowserCookie string `toml:"browserCookie"` // 没有凭证时区分浏览器的 cookie，默认 "navbar_sid"
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Host     string `toml:"host"`     // Redis 服务器地址
	Port     int    `toml:"port"`     // Redis 端口，默认 6379
	Password string `toml:"password"` // Redis 密码，无密码留空
	Db       int    `toml:"db"`       // Redis 数据库编号，默认 0
}

// StoreConfig 挂件状态存储配置
type StoreConfig struct {
	StoreMode   string `toml:"storeMode"`   // "memory" 或 "redis"
	IdleTimeout int    `toml:"idleTimeout"` // 会话空闲多久后释放状态（秒），默认 1800
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // 日志级别：debug, info, warn, error
}

// KafkaConfig Kafka 配置
type KafkaConfig struct {
	NotifyMode string        `toml:"notifyMode"` // 通知模式："channel" 或 "kafka"
	HostPort   string        `toml:"hostPort"`   // Kafka 服务器地址，如 "localhost:9092"
	ToastTopic string        `toml:"toastTopic"` // toast 事件主题
	GroupID    string        `toml:"groupId"`    // 消费组前缀
	InstanceID string        `toml:"instanceId"` // 实例 ID，留空时使用主机名
	Timeout    time.Duration `toml:"timeout"`    // 超时时间（秒）
}

// ToastConfig toast 展示配置
type ToastConfig struct {
	Duration int `toml:"duration"` // 自动消失时间（毫秒），默认 1500
}

// ValidatorConfig 表单校验配置
type ValidatorConfig struct {
	Locale string `toml:"locale"` // 校验提示语言："en" 或 "zh"
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig      `toml:"mainConfig"`
	APIConfig       `toml:"apiConfig"`
	TokenConfig     `toml:"tokenConfig"`
	RedisConfig     `toml:"redisConfig"`
	StoreConfig     `toml:"storeConfig"`
	LogConfig       `toml:"logConfig"`
	KafkaConfig     `toml:"kafkaConfig"`
	ToastConfig     `toml:"toastConfig"`
	ValidatorConfig `toml:"validatorConfig"`
}

// searchPaths 候选配置文件路径（优先加载本地配置）
var searchPaths = []string{
	"configs/config_local.toml",
	"configs/config.toml",
	"../../configs/config_local.toml",
	"../../configs/config.toml",
}

// Default 返回带默认值的配置
func Default() *Config {
	return &Config{
		MainConfig: MainConfig{
			AppName: "navbar_social",
			Host:    "0.0.0.0",
			Port:    8000,
			Mode:    "dev",
		},
		APIConfig:   APIConfig{BaseURL: "http://localhost:8080"},
		TokenConfig: TokenConfig{CookieName: "id_token", BrowserCookie: "navbar_sid"},
		RedisConfig: RedisConfig{Host: "127.0.0.1", Port: 6379},
		StoreConfig: StoreConfig{StoreMode: "memory", IdleTimeout: 1800},
		LogConfig:   LogConfig{LogPath: "./logs", Level: "info"},
		KafkaConfig: KafkaConfig{
			NotifyMode: "channel",
			HostPort:   "localhost:9092",
			ToastTopic: "navbar_toast",
			GroupID:    "navbar_social",
			Timeout:    1,
		},
		ToastConfig:     ToastConfig{Duration: 1500},
		ValidatorConfig: ValidatorConfig{Locale: "en"},
	}
}

// LoadConfig 从多个候选路径加载配置文件
// 找到第一个可用的配置文件即停止，之后应用环境变量覆盖
func LoadConfig() (*Config, error) {
	conf := Default()
	var loadErr error = fmt.Errorf("could not find configuration file in any of the search paths")
	for _, path := range searchPaths {
		if _, err := toml.DecodeFile(path, conf); err == nil {
			loadErr = nil
			break
		}
	}

	// .env 不存在时直接使用系统环境变量
	_ = godotenv.Load()
	applyEnv(conf)
	return conf, loadErr
}

// LoadFile 从指定文件加载配置
func LoadFile(path string) (*Config, error) {
	conf := Default()
	if _, err := toml.DecodeFile(path, conf); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	applyEnv(conf)
	return conf, nil
}

// applyEnv 环境变量覆盖配置文件中的值
func applyEnv(conf *Config) {
	if v := os.Getenv("NAVBAR_API_BASE_URL"); v != "" {
		conf.APIConfig.BaseURL = v
	}
	if v := os.Getenv("NAVBAR_REDIS_HOST"); v != "" {
		conf.RedisConfig.Host = v
	}
	if v := os.Getenv("NAVBAR_REDIS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			conf.RedisConfig.Port = port
		}
	}
	if v := os.Getenv("NAVBAR_KAFKA_HOST_PORT"); v != "" {
		conf.KafkaConfig.HostPort = v
	}
}

// ToastDuration toast 自动消失时间
func (c *Config) ToastDuration() time.Duration {
	if c.ToastConfig.Duration <= 0 {
		return 1500 * time.Millisecond
	}
	return time.Duration(c.ToastConfig.Duration) * time.Millisecond
}

// APITimeout 好友服务 HTTP 超时，0 表示不设超时
func (c *Config) APITimeout() time.Duration {
	return c.APIConfig.Timeout * time.Second
}

// SessionIdleTTL 会话空闲过期时间，挂件实例与刷新计数在空闲超过该时间后释放
func (c *Config) SessionIdleTTL() time.Duration {
	if c.StoreConfig.IdleTimeout <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.StoreConfig.IdleTimeout) * time.Second
}
