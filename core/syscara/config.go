package syscara

// Config holds configuration for the Syscara inventory API.
type Config struct {
	// BaseURL is the API root without trailing slash.
	BaseURL string `mapstructure:"base_url" default:"https://api.syscara.com" validate:"required,url"`
	// User is the basic-auth user name.
	User string `mapstructure:"user" default:"" validate:"required"`
	// Pass is the basic-auth password.
	Pass string `mapstructure:"pass" default:"" validate:"required"`
	// TimeoutSeconds bounds every single request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"60" validate:"gte=0"`
}
