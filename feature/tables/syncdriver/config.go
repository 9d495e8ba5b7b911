package syncdriver

// Config holds configuration for the client-side sync driver.
type Config struct {
	// ServerURL is the base URL of the sync server.
	ServerURL string `mapstructure:"server_url" default:"http://localhost:8080"`
	// ApiKey authenticates against the server; empty when auth is disabled.
	ApiKey string `mapstructure:"api_key" default:""`
	// Database is the path of the local sqlite file.
	Database string `mapstructure:"database" default:"offrows-client.db"`
	// MinSyncIntervalSeconds throttles back-to-back sync invocations.
	MinSyncIntervalSeconds int `mapstructure:"min_sync_interval_seconds" default:"5"`
	// TimeoutSeconds bounds each HTTP request to the server.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
