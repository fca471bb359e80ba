package offset

// Config selects and configures the offset store backend.
type Config struct {
	// Backend is one of memory, kv, sql, badger.
	Backend string `mapstructure:"backend" default:"memory" validate:"oneof=memory kv sql badger"`
	// Key names the counter, so several scoped syncs can keep separate offsets.
	Key string `mapstructure:"key" default:"delta-sync-offset" validate:"required"`
	// KVURL is the REST endpoint of the key-value facade (kv backend).
	KVURL string `mapstructure:"kv_url" default:"" validate:"required_if=Backend kv,omitempty,url"`
	// KVToken is the bearer token of the key-value facade (kv backend).
	KVToken string `mapstructure:"kv_token" default:""`
	// BadgerPath is the data directory of the embedded store (badger backend).
	BadgerPath string `mapstructure:"badger_path" default:"./data/offset"`
}
