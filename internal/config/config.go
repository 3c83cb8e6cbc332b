package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	viper "github.com/spf13/viper"
)

/*
init and read are split:
init : register viper watch and OnConfigChange once
read : guarded by the RWMutex of the singleton
*/
var configSingleton *ConfigSingleTon
var muonce sync.Once

const moduleName = "github.com/RoyceAzure/lab/storefront"

type ConfigSingleTon struct {
	Config *Config
	mu     sync.RWMutex
}

type Config struct {
	ModulerName string `mapstructure:"MODULER_NAME"`
	ServerPort  string `mapstructure:"SERVER_PORT"`
	Env         string `mapstructure:"ENV"`

	DbName string `mapstructure:"POSTGRES_DB"`
	DbHost string `mapstructure:"POSTGRES_HOST"`
	DbPort string `mapstructure:"POSTGRES_PORT"`
	DbUser string `mapstructure:"POSTGRES_USER"`
	DbPas  string `mapstructure:"POSTGRES_PASSWORD"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	KafkaBrokers    string `mapstructure:"KAFKA_BROKERS"`
	KafkaLogTopic   string `mapstructure:"KAFKA_LOG_TOPIC"`
	KafkaEventTopic string `mapstructure:"KAFKA_EVENT_TOPIC"`

	AuthTokenKey      string `mapstructure:"AUTH_TOKEN_KEY"`
	AccessTokenHours  int    `mapstructure:"ACCESS_TOKEN_HOURS"`
	RefreshTokenHours int    `mapstructure:"REFRESH_TOKEN_HOURS"`

	FrontendOrigin     string `mapstructure:"FRONTEND_ORIGIN"`
	FrontendSuccessURL string `mapstructure:"FRONTEND_SUCCESS_URL"`
	FrontendFailureURL string `mapstructure:"FRONTEND_FAILURE_URL"`

	KhaltiBaseURL   string `mapstructure:"KHALTI_BASE_URL"`
	KhaltiSecretKey string `mapstructure:"KHALTI_SECRET_KEY"`
	KhaltiReturnURL string `mapstructure:"KHALTI_RETURN_URL"`
	KhaltiWebsite   string `mapstructure:"KHALTI_WEBSITE_URL"`

	EsewaFormURL     string `mapstructure:"ESEWA_FORM_URL"`
	EsewaStatusURL   string `mapstructure:"ESEWA_STATUS_URL"`
	EsewaProductCode string `mapstructure:"ESEWA_PRODUCT_CODE"`
	EsewaSecretKey   string `mapstructure:"ESEWA_SECRET_KEY"`
	EsewaSuccessURL  string `mapstructure:"ESEWA_SUCCESS_URL"`
	EsewaFailureURL  string `mapstructure:"ESEWA_FAILURE_URL"`

	RateLimitCapacity int `mapstructure:"RATE_LIMIT_CAPACITY"`
	RateLimitRatePS   int `mapstructure:"RATE_LIMIT_RATE_PS"`

	PageSize        int `mapstructure:"PAGE_SIZE"`
	CatalogCacheTTL int `mapstructure:"CATALOG_CACHE_TTL_SECONDS"`
}

// KafkaBrokerList splits the comma separated broker list, empty when kafka is disabled.
func (c *Config) KafkaBrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// PaymentSuccessRedirect falls back to FrontendOrigin when no dedicated page is configured.
func (c *Config) PaymentSuccessRedirect() string {
	if c.FrontendSuccessURL != "" {
		return c.FrontendSuccessURL
	}
	return c.FrontendOrigin
}

func (c *Config) PaymentFailureRedirect() string {
	if c.FrontendFailureURL != "" {
		return c.FrontendFailureURL
	}
	return c.FrontendOrigin
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.DbUser, c.DbPas, c.DbHost, c.DbPort, c.DbName)
}

func GetConfig() *Config {
	initConfig()
	configSingleton.mu.RLock()
	defer configSingleton.mu.RUnlock()
	return configSingleton.Config
}

func initConfig() {
	muonce.Do(func() {
		configSingleton = &ConfigSingleTon{}
		path := configFilePath()
		cf, err := LoadConfig(path)
		if err != nil {
			log.Fatalf("error read config: %v", err)
		}
		configSingleton.Config = cf

		if path == "" {
			return
		}
		viper.WatchConfig()
		viper.OnConfigChange(func(e fsnotify.Event) {
			cf, err := LoadConfig(path)
			if err != nil {
				log.Printf("failed to reload config file %s: %v", e.Name, err)
				return
			}
			configSingleton.mu.Lock()
			configSingleton.Config = cf
			configSingleton.mu.Unlock()
		})
	})
}

/*
LoadConfig reads the .env file at path (optional) and environment variables.
Errors are returned as is, the caller decides whether they are fatal.
*/
func LoadConfig(path string) (*Config, error) {
	v := viper.GetViper()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cf := &Config{}
	if err := v.Unmarshal(cf); err != nil {
		return nil, err
	}
	return cf, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("MODULER_NAME", "storefront")
	v.SetDefault("SERVER_PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("POSTGRES_DB", "storefront")
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_LOG_TOPIC", "storefront-log")
	v.SetDefault("KAFKA_EVENT_TOPIC", "storefront-event")
	v.SetDefault("AUTH_TOKEN_KEY", "")
	v.SetDefault("ACCESS_TOKEN_HOURS", 4)
	v.SetDefault("REFRESH_TOKEN_HOURS", 24*7)
	v.SetDefault("FRONTEND_ORIGIN", "http://localhost:5173")
	v.SetDefault("FRONTEND_SUCCESS_URL", "")
	v.SetDefault("FRONTEND_FAILURE_URL", "")
	v.SetDefault("KHALTI_BASE_URL", "https://dev.khalti.com/api/v2")
	v.SetDefault("KHALTI_SECRET_KEY", "")
	v.SetDefault("KHALTI_RETURN_URL", "http://127.0.0.1:8000/api/payments/khalti/callback/")
	v.SetDefault("KHALTI_WEBSITE_URL", "http://127.0.0.1:8000/")
	v.SetDefault("ESEWA_FORM_URL", "https://rc-epay.esewa.com.np/api/epay/main/v2/form")
	v.SetDefault("ESEWA_STATUS_URL", "https://uat.esewa.com.np/api/epay/transaction/status/")
	v.SetDefault("ESEWA_PRODUCT_CODE", "EPAYTEST")
	v.SetDefault("ESEWA_SECRET_KEY", "8gBm/:&EnhH.1/q(")
	v.SetDefault("ESEWA_SUCCESS_URL", "http://127.0.0.1:8000/api/payments/esewa/success/")
	v.SetDefault("ESEWA_FAILURE_URL", "http://127.0.0.1:8000/api/payments/esewa/failure/")
	v.SetDefault("RATE_LIMIT_CAPACITY", 200)
	v.SetDefault("RATE_LIMIT_RATE_PS", 1)
	v.SetDefault("PAGE_SIZE", 12)
	v.SetDefault("CATALOG_CACHE_TTL_SECONDS", 60)
}

// configFilePath prefers CONFIG_FILE, then <module root>/.env; empty means env only.
func configFilePath() string {
	if p := os.Getenv("CONFIG_FILE"); p != "" {
		return p
	}
	root := getProjectRoot(moduleName)
	if root == "" {
		return ""
	}
	p := fmt.Sprintf("%s/.env", root)
	if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
		return ""
	}
	return p
}

func getProjectRoot(moduleName string) string {
	cmd := exec.Command("go", "list", "-m", "-f", "{{.Dir}}", moduleName)
	output, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(output))
}
