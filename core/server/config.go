package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// Env is the deployment environment reported by the health endpoint.
	Env string `mapstructure:"env" default:"development"`
	// BodyLimitMB caps the request body size. Sync batches carry whole
	// row data maps, so the default is generous.
	BodyLimitMB int `mapstructure:"body_limit_mb" default:"10"`
}

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// IsValidEnv checks if the configured environment is a known value.
func (c Config) IsValidEnv() bool {
	switch c.Env {
	case EnvDevelopment, EnvProduction:
		return true
	default:
		return false
	}
}
