package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string
	ServerPort  int

	DatabaseDbPath       string
	DatabaseCacheAddress string
	DatabaseCachePort    int

	SessionTTLMinutes int

	ImportChunkSize   int
	ImportConcurrency int

	// BulkImportRoles is a comma-separated list of roles allowed to submit
	// bulk imports, e.g. "ADMIN,SUPERVISOR".
	BulkImportRoles string
}

func InitConfig() (Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetEnvPrefix("server")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("environment", "development")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.db_path", "data/cases.db")
	viper.SetDefault("database.cache_address", "localhost")
	viper.SetDefault("database.cache_port", 6379)
	viper.SetDefault("session.ttl_minutes", 60)
	viper.SetDefault("import.chunk_size", 100)
	viper.SetDefault("import.concurrency", 4)
	viper.SetDefault("import.bulk_roles", "ADMIN,SUPERVISOR,OPERATOR")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := Config{
		Environment:          viper.GetString("environment"),
		ServerPort:           viper.GetInt("server.port"),
		DatabaseDbPath:       viper.GetString("database.db_path"),
		DatabaseCacheAddress: viper.GetString("database.cache_address"),
		DatabaseCachePort:    viper.GetInt("database.cache_port"),
		SessionTTLMinutes:    viper.GetInt("session.ttl_minutes"),
		ImportChunkSize:      viper.GetInt("import.chunk_size"),
		ImportConcurrency:    viper.GetInt("import.concurrency"),
		BulkImportRoles:      viper.GetString("import.bulk_roles"),
	}

	return config, nil
}

// BulkImportAllowed reports whether the given role may submit bulk imports.
// Pure function of (config, role) so handlers stay testable without a server.
func BulkImportAllowed(config Config, role string) bool {
	for _, allowed := range strings.Split(config.BulkImportRoles, ",") {
		if strings.EqualFold(strings.TrimSpace(allowed), role) {
			return true
		}
	}
	return false
}
