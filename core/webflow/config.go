package webflow

// Config holds configuration for the Webflow CMS API.
type Config struct {
	// BaseURL is the v2 API root.
	BaseURL string `mapstructure:"base_url" default:"https://api.webflow.com/v2" validate:"required,url"`
	// Token is the site API bearer token.
	Token string `mapstructure:"token" default:"" validate:"required"`
	// Collection is the vehicle collection id.
	Collection string `mapstructure:"collection" default:"" validate:"required"`
	// FeaturesCollection is the reference collection for equipment features.
	FeaturesCollection string `mapstructure:"features_collection" default:""`
	// BettartenCollection is the reference collection for bed types.
	BettartenCollection string `mapstructure:"bettarten_collection" default:""`
	// Publish publishes items after every create and update.
	Publish bool `mapstructure:"publish" default:"true"`
	// LegacyBatch sends creates in the {"items":[{"fieldData":...}]} form.
	LegacyBatch bool `mapstructure:"legacy_batch" default:"false"`
	// RequestsPerMinute throttles outgoing calls. Zero disables throttling.
	RequestsPerMinute int `mapstructure:"requests_per_minute" default:"60" validate:"gte=0"`
	// TimeoutSeconds bounds every single request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30" validate:"gte=0"`
}
