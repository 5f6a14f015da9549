package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	AppEnv          string  `mapstructure:"APP_ENV"`
	Port            string  `mapstructure:"PORT"`
	DataDir         string  `mapstructure:"DATA_DIR"`
	LogMaxSizeBytes int64   `mapstructure:"LOG_MAX_SIZE_BYTES"`
	ReplayOnStart   bool    `mapstructure:"REPLAY_ON_START"`
	BotUATokens     string  `mapstructure:"BOT_UA_TOKENS"`
	ProxyUATokens   string  `mapstructure:"PROXY_UA_TOKENS"`
	PublicBaseURL   string  `mapstructure:"PUBLIC_BASE_URL"`
	RateLimitRPS    float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst  int     `mapstructure:"RATE_LIMIT_BURST"`
}

func LoadConfig() (config Config, err error) {
	viper.SetDefault("APP_ENV", "local")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATA_DIR", "./data")
	viper.SetDefault("LOG_MAX_SIZE_BYTES", 5*1024*1024)
	viper.SetDefault("REPLAY_ON_START", true)
	viper.SetDefault("BOT_UA_TOKENS", "bot,crawler,spider,slurp")
	viper.SetDefault("PROXY_UA_TOKENS", "googleimageproxy,ggpht,yahoomailproxy,mimecast,proofpoint")
	viper.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	viper.SetDefault("RATE_LIMIT_RPS", 50)
	viper.SetDefault("RATE_LIMIT_BURST", 100)

	viper.AutomaticEnv()

	err = viper.Unmarshal(&config)
	if err != nil {
		log.Printf("unable to decode into struct, %v", err)
		return
	}

	return
}

// BotTokens returns the configured bot user-agent tokens.
func (c Config) BotTokens() []string {
	return splitTokens(c.BotUATokens)
}

// ProxyTokens returns the configured image-proxy user-agent tokens.
func (c Config) ProxyTokens() []string {
	return splitTokens(c.ProxyUATokens)
}

func splitTokens(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
