package sync

// Config holds the sync run settings.
type Config struct {
	// Limit is the default batch size of one run.
	Limit int `mapstructure:"limit" default:"2" validate:"gte=1"`
	// MaxLimit caps the batch size a caller may request.
	MaxLimit int `mapstructure:"max_limit" default:"25" validate:"gte=1"`
	// GalleryMax caps the gallery length per vehicle.
	GalleryMax int `mapstructure:"gallery_max" default:"25" validate:"gte=1"`
	// Concurrency bounds parallel item writes.
	Concurrency int `mapstructure:"concurrency" default:"1" validate:"gte=1"`
	// ZipCodes restricts the source set to these store postal codes. Empty allows all.
	ZipCodes []string `mapstructure:"zip_codes" default:"24783"`
	// Types restricts the source set to these vehicle types. Empty allows all.
	Types []string `mapstructure:"types" default:""`
	// Statuses restricts the source set to these status codes. Empty allows all.
	Statuses []string `mapstructure:"statuses" default:""`
	// RequireVisible drops listings flagged invisible or inactive.
	RequireVisible bool `mapstructure:"require_visible" default:"false"`
	// RequirePrice drops listings without sale or rental price.
	RequirePrice bool `mapstructure:"require_price" default:"false"`
	// Scope tags written records and restricts reconciliation to records with the
	// same tag. Empty means the whole collection belongs to this sync.
	Scope string `mapstructure:"scope" default:""`
	// RentalKeyword marks listings without category as rental by location name.
	RentalKeyword string `mapstructure:"rental_keyword" default:"vermiet"`
	// ZeroValidFields lists numeric fields where zero is kept as "0".
	ZeroValidFields []string `mapstructure:"zero_valid_fields" default:"kilometer"`
	// MediaPath is the route of the media proxy appended to the public origin.
	MediaPath string `mapstructure:"media_path" default:"/media" validate:"required,startswith=/"`
}
