package config

import (
	"errors"
	"fmt"
	"github.com/ougirez/pricelist/internal/pkg/constants"
	"github.com/spf13/viper"
	"strings"
	"time"
)

const envPrefix = "PRICELIST"

func setDefaults() {
	viper.SetDefault(constants.ViperServerAddr, ":8080")
	viper.SetDefault(constants.ViperServerAllowOrigins, []string{"http://localhost:3000"})
	viper.SetDefault(constants.ViperServerMaxFileSize, "64M")

	viper.SetDefault(constants.ViperLogLevel, "info")
	viper.SetDefault(constants.ViperLogDevelopment, false)

	viper.SetDefault(constants.ViperArchiveRegion, "eu-central-1")

	viper.SetDefault(constants.ViperUploadChunkSize, 5000)
	viper.SetDefault(constants.ViperUploadMaxChunkSize, 5000)
	viper.SetDefault(constants.ViperUploadConcurrency, 4)
	viper.SetDefault(constants.ViperUploadMaxConcurrency, 16)
	viper.SetDefault(constants.ViperUploadRequestsPerSecond, 20)
	viper.SetDefault(constants.ViperUploadMaxAttempts, 3)
	viper.SetDefault(constants.ViperUploadStaleAfter, time.Hour)

	viper.SetDefault(constants.ViperJobsTTL, 24*time.Hour)
}

// Load reads defaults, then the optional config file, then PRICELIST_* env vars.
func Load(path string) error {
	setDefaults()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path != "" {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("viper.ReadInConfig: %w", err)
		}
	}

	if viper.GetString(constants.ViperPostgresDSN) == "" {
		return errors.New("postgres.dsn is required")
	}
	// без секрета токены не проверяются, это допустимо только при разработке
	if viper.GetString(constants.ViperSecretKey) == "" && !viper.GetBool(constants.ViperLogDevelopment) {
		return errors.New("auth.secret is required unless log.development is set")
	}

	return nil
}
