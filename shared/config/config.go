package config

import (
	"log"
	"sync"

	"github.com/spf13/viper"
)

// EngineConfig holds the tunables of the wallet analysis engine.
type EngineConfig struct {
	TxPageLimit    int `mapstructure:"tx_page_limit"`
	MaxTxPages     int `mapstructure:"max_tx_pages"`
	AssetPageLimit int `mapstructure:"asset_page_limit"`
	CandidateLimit int `mapstructure:"candidate_limit"`
}

// Config defines the global configuration structure
type Config struct {
	App struct {
		Environment string `mapstructure:"environment"`
	} `mapstructure:"app"`

	Logging struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"logging"`

	Database struct {
		URI string `mapstructure:"uri"`
	} `mapstructure:"database"`

	Redis struct {
		Addr       string `mapstructure:"addr"`
		Password   string `mapstructure:"password"`
		DB         int    `mapstructure:"db"`
		TTLMinutes int    `mapstructure:"ttl_minutes"`
	} `mapstructure:"redis"`

	Helius struct {
		APIKey         string `mapstructure:"api_key"`
		RPCURL         string `mapstructure:"rpc_url"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	} `mapstructure:"helius"`

	Engine EngineConfig `mapstructure:"engine"`
}

var (
	globalConfig *Config
	configLock   sync.RWMutex
)

// LoadConfig loads configuration from the specified file path and merges it with environment variables
func LoadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	viper.SetEnvPrefix("APP")
	viper.BindEnv("app.environment", "ENVIRONMENT")
	viper.BindEnv("logging.level", "LOG_LEVEL")
	viper.BindEnv("database.uri", "DATABASE_URL")
	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")
	viper.BindEnv("redis.ttl_minutes", "ANALYSIS_CACHE_TTL_MINUTES")
	viper.BindEnv("helius.api_key", "HELIUS_API_KEY")
	viper.BindEnv("helius.rpc_url", "HELIUS_RPC_URL")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("redis.ttl_minutes", 10)
	viper.SetDefault("helius.timeout_seconds", 15)
	viper.SetDefault("engine.tx_page_limit", 100)
	viper.SetDefault("engine.max_tx_pages", 3)
	viper.SetDefault("engine.asset_page_limit", 200)
	viper.SetDefault("engine.candidate_limit", 25)

	var cfg Config

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		log.Printf("Error unmarshalling configuration: %v", err)
		return nil, err
	}

	log.Printf("Loaded configuration from file: %s", path)

	return &cfg, nil
}

// SetGlobalConfig sets the loaded configuration globally
func SetGlobalConfig(cfg *Config) {
	configLock.Lock()
	defer configLock.Unlock()
	globalConfig = cfg
}

// GetGlobalConfig retrieves the globally set configuration
func GetGlobalConfig() *Config {
	configLock.RLock()
	defer configLock.RUnlock()
	if globalConfig == nil {
		log.Println("GetGlobalConfig: Global configuration is nil.")
	}
	return globalConfig
}
