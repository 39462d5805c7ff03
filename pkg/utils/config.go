package utils

import (
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Payment  PaymentConfig
	Search   SearchConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type JWTConfig struct {
	Secret string
}

type PaymentConfig struct {
	// SuccessRate is the mock gateway's confirm success probability.
	SuccessRate    float64
	TimeoutSeconds int
}

type SearchConfig struct {
	// DefaultRadiusKm is used when a geo search omits the radius parameter.
	DefaultRadiusKm float64
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("PAYMENT_SUCCESS_RATE", 0.9)
	viper.SetDefault("PAYMENT_TIMEOUT_SECONDS", 5)
	viper.SetDefault("DEFAULT_SEARCH_RADIUS_KM", 10)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("JWT_SECRET"),
		},
		Payment: PaymentConfig{
			SuccessRate:    viper.GetFloat64("PAYMENT_SUCCESS_RATE"),
			TimeoutSeconds: viper.GetInt("PAYMENT_TIMEOUT_SECONDS"),
		},
		Search: SearchConfig{
			DefaultRadiusKm: viper.GetFloat64("DEFAULT_SEARCH_RADIUS_KM"),
		},
	}

	return config, nil
}
