// internal/pkg/bootstrap/config.go
package bootstrap

import (
	"log"
	"os"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// Config 是所有服务共享的配置结构。
// 配置来源: yaml 文件(CONFIG_PATH 指定) + 环境变量覆盖敏感项。
type Config struct {
	App struct {
		Env string `yaml:"env"`
		// FreeOrderTokenSecret 用于签发/校验免支付完成令牌, 不允许为空
		FreeOrderTokenSecret string `yaml:"freeOrderTokenSecret"`
		// LockBackend 选择资源锁的实现: "redis" 或 "zookeeper"
		LockBackend string `yaml:"lockBackend"`
	} `yaml:"app"`

	Infra struct {
		Jaeger struct {
			Endpoint string `yaml:"endpoint"`
		} `yaml:"jaeger"`
		Mysql struct {
			Addr     string `yaml:"addr"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			Database string `yaml:"database"`
		} `yaml:"mysql"`
		Redis struct {
			Addrs string `yaml:"addrs"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers            string `yaml:"brokers"`
			PaymentEventsTopic string `yaml:"paymentEventsTopic"`
		} `yaml:"kafka"`
		Zookeeper struct {
			Servers string `yaml:"servers"`
		} `yaml:"zookeeper"`
		Nacos struct {
			ServerAddrs string `yaml:"serverAddrs"`
			Namespace   string `yaml:"namespace"`
			Group       string `yaml:"group"`
		} `yaml:"nacos"`
	} `yaml:"infra"`

	Paypal struct {
		BaseURL  string `yaml:"baseUrl"`
		ClientID string `yaml:"clientId"`
		Secret   string `yaml:"secret"`
		Currency string `yaml:"currency"`
	} `yaml:"paypal"`
}

var currentConfig atomic.Pointer[Config]

// Init 加载配置文件并应用环境变量覆盖, 必须在 StartService 之前调用。
func Init() {
	path := getEnv("CONFIG_PATH", "configs/config.yaml")

	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("WARN: could not read config file %s: %v. Falling back to defaults + env.", path, err)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		log.Fatalf("FATAL: invalid config file %s: %v", path, err)
	}

	// 敏感配置允许通过环境变量覆盖, 避免写进配置文件
	cfg.App.FreeOrderTokenSecret = getEnv("FREE_ORDER_TOKEN_SECRET", cfg.App.FreeOrderTokenSecret)
	cfg.Paypal.ClientID = getEnv("PAYPAL_CLIENT_ID", cfg.Paypal.ClientID)
	cfg.Paypal.Secret = getEnv("PAYPAL_SECRET", cfg.Paypal.Secret)
	cfg.Infra.Mysql.Password = getEnv("MYSQL_PASSWORD", cfg.Infra.Mysql.Password)

	if cfg.App.FreeOrderTokenSecret == "" {
		log.Fatalf("FATAL: freeOrderTokenSecret is required (set FREE_ORDER_TOKEN_SECRET)")
	}

	currentConfig.Store(cfg)
}

// GetCurrentConfig 返回当前生效的配置。Init 未调用时返回默认值, 便于单测。
func GetCurrentConfig() *Config {
	if c := currentConfig.Load(); c != nil {
		return c
	}
	return defaultConfig()
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.App.Env = "dev"
	cfg.App.LockBackend = "redis"
	cfg.Infra.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	cfg.Infra.Mysql.Addr = "localhost:3306"
	cfg.Infra.Mysql.User = "root"
	cfg.Infra.Mysql.Database = "readysetfly"
	cfg.Infra.Redis.Addrs = "localhost:6379"
	cfg.Infra.Kafka.Brokers = "localhost:9092"
	cfg.Infra.Kafka.PaymentEventsTopic = "payment-events"
	cfg.Infra.Zookeeper.Servers = "localhost:2181"
	cfg.Infra.Nacos.Group = "DEFAULT_GROUP"
	cfg.Paypal.BaseURL = "https://api-m.sandbox.paypal.com"
	cfg.Paypal.Currency = "USD"
	return cfg
}

// getEnv 从环境变量中读取配置, 不存在时返回默认值。
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
