package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL string

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	JWTSecret    string
	JWTAlgorithm string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	UserCacheTTL    time.Duration

	PasswordPepper string

	HTTPAddress string
	// BaseURL is the externally visible address used to build the links
	// embedded in confirmation and reset e-mails.
	BaseURL string

	MailHost     string
	MailPort     int
	MailUsername string
	MailPassword string
	MailFrom     string
	MailFromName string

	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string

	AllowedOrigins   []string
	AllowCredentials bool
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	for _, key := range []string{
		"DATABASE_URL", "REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB",
		"JWT_SECRET", "JWT_ALGORITHM",
		"ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL", "USER_CACHE_TTL",
		"PASSWORD_PEPPER", "HTTP_ADDRESS", "BASE_URL",
		"MAIL_HOST", "MAIL_PORT", "MAIL_USERNAME", "MAIL_PASSWORD",
		"MAIL_FROM", "MAIL_FROM_NAME",
		"S3_ENDPOINT", "S3_REGION", "S3_BUCKET", "S3_ACCESS_KEY", "S3_SECRET_KEY",
		"ALLOWED_ORIGINS", "ALLOW_CREDENTIALS",
	} {
		if err := viper.BindEnv(key); err != nil {
			return nil, err
		}
	}

	viper.SetDefault("JWT_ALGORITHM", "HS256")
	viper.SetDefault("ACCESS_TOKEN_TTL", "3600s")
	viper.SetDefault("REFRESH_TOKEN_TTL", "168h")
	viper.SetDefault("USER_CACHE_TTL", "3600s")
	viper.SetDefault("HTTP_ADDRESS", ":8000")
	viper.SetDefault("MAIL_PORT", 465)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL:      viper.GetString("DATABASE_URL"),
		RedisAddress:     viper.GetString("REDIS_ADDRESS"),
		RedisPassword:    viper.GetString("REDIS_PASSWORD"),
		RedisDB:          viper.GetInt("REDIS_DB"),
		JWTSecret:        viper.GetString("JWT_SECRET"),
		JWTAlgorithm:     viper.GetString("JWT_ALGORITHM"),
		AccessTokenTTL:   viper.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL:  viper.GetDuration("REFRESH_TOKEN_TTL"),
		UserCacheTTL:     viper.GetDuration("USER_CACHE_TTL"),
		PasswordPepper:   viper.GetString("PASSWORD_PEPPER"),
		HTTPAddress:      viper.GetString("HTTP_ADDRESS"),
		BaseURL:          viper.GetString("BASE_URL"),
		MailHost:         viper.GetString("MAIL_HOST"),
		MailPort:         viper.GetInt("MAIL_PORT"),
		MailUsername:     viper.GetString("MAIL_USERNAME"),
		MailPassword:     viper.GetString("MAIL_PASSWORD"),
		MailFrom:         viper.GetString("MAIL_FROM"),
		MailFromName:     viper.GetString("MAIL_FROM_NAME"),
		S3Endpoint:       viper.GetString("S3_ENDPOINT"),
		S3Region:         viper.GetString("S3_REGION"),
		S3Bucket:         viper.GetString("S3_BUCKET"),
		S3AccessKey:      viper.GetString("S3_ACCESS_KEY"),
		S3SecretKey:      viper.GetString("S3_SECRET_KEY"),
		AllowedOrigins:   viper.GetStringSlice("ALLOWED_ORIGINS"),
		AllowCredentials: viper.GetBool("ALLOW_CREDENTIALS"),
	}

	for _, required := range []struct {
		key, value string
	}{
		{"DATABASE_URL", cfg.DatabaseURL},
		{"REDIS_ADDRESS", cfg.RedisAddress},
		{"JWT_SECRET", cfg.JWTSecret},
		{"BASE_URL", cfg.BaseURL},
	} {
		if required.value == "" {
			return nil, fmt.Errorf("%s is not set", required.key)
		}
	}

	if cfg.JWTAlgorithm != "HS256" && cfg.JWTAlgorithm != "HS384" && cfg.JWTAlgorithm != "HS512" {
		return nil, fmt.Errorf("unsupported JWT_ALGORITHM %q", cfg.JWTAlgorithm)
	}

	return cfg, nil
}
