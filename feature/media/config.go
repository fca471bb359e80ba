package media

// Config holds the media proxy settings.
type Config struct {
	// MaxAgeSeconds is sent as Cache-Control max-age.
	MaxAgeSeconds int `mapstructure:"max_age_seconds" default:"86400"`
	// CachePrefix is the object key prefix of cached files.
	CachePrefix string `mapstructure:"cache_prefix" default:"media/"`
	// MaxCacheBytes skips caching files larger than this.
	MaxCacheBytes int64 `mapstructure:"max_cache_bytes" default:"33554432"`
}
