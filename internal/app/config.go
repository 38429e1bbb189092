package app

import (
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete service configuration, loadable from
// environment variables (HOSTBRIDGE_ prefix), flags, or YAML config files.
type Config struct {
	Addr            string        `default:"0.0.0.0:8443" usage:"API server listen address"`
	CredentialsPath string        `default:"/etc/hostbridge/credentials.ini" usage:"Path to the API credentials store" flag:"credentials"`
	HostConfigPath  string        `default:"" usage:"Managed host config file exposed via the config/* actions" flag:"host-config"`
	ClockSkew       time.Duration `default:"60s" usage:"Allowed clock skew for signed requests" flag:"clock-skew"`
	RateLimit       RateLimitConfig
	Graceful        GracefulConfig
}

// RateLimitConfig controls the per-client rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables and YAML config
// files.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "HOSTBRIDGE",
		Files:     []string{"config.yaml", "/etc/hostbridge/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	if cfg.CredentialsPath == "" {
		return nil, errors.New("credentials path is required: set HOSTBRIDGE_CREDENTIALS_PATH")
	}

	return &cfg, nil
}
