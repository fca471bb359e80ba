package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"vehicle-sync/core/database"
	"vehicle-sync/core/logger"
	"vehicle-sync/core/offset"
	"vehicle-sync/core/server"
	"vehicle-sync/core/storage"
	"vehicle-sync/core/syscara"
	"vehicle-sync/core/webflow"
	"vehicle-sync/feature/media"
	vsync "vehicle-sync/feature/vehicle/sync"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Syscara holds the source API credentials.
	Syscara syscara.Config `mapstructure:"syscara"`
	// Webflow holds the target CMS settings.
	Webflow webflow.Config `mapstructure:"webflow"`
	// Sync holds the run settings and the source filter.
	Sync vsync.Config `mapstructure:"sync"`
	// Offset selects where the round-robin offset is persisted.
	Offset offset.Config `mapstructure:"offset"`
	// Media holds the media proxy settings.
	Media media.Config `mapstructure:"media"`
	// Storage holds configuration for the object storage (e.g., S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Database holds configuration for the database connection.
	Database database.Config `mapstructure:"database"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SYNC_ZIP_CODES -> sync.zip_codes)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the sections a sync run depends on.
func (c *Config) Validate() error {
	if err := c.validateSections("syscara", "webflow", "sync", "offset"); err != nil {
		return err
	}
	if c.Offset.Backend == "sql" && !c.Database.Enabled {
		return fmt.Errorf("invalid offset configuration: backend sql requires database.enabled")
	}
	return nil
}

// ValidateSource checks only what read-only source diagnostics need.
func (c *Config) ValidateSource() error {
	return c.validateSections("syscara", "sync")
}

func (c *Config) validateSections(names ...string) error {
	sections := map[string]any{
		"syscara": c.Syscara,
		"webflow": c.Webflow,
		"sync":    c.Sync,
		"offset":  c.Offset,
	}
	validate := validator.New()
	for _, name := range names {
		if err := validate.Struct(sections[name]); err != nil {
			return fmt.Errorf("invalid %s configuration: %w", name, err)
		}
	}
	return nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
