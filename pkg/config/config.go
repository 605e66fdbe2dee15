package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultAPIURL is the API root used when nothing else is configured.
const DefaultAPIURL = "http://localhost:8000"

// Config holds all configuration for the assessment console.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values.
type Config struct {
	// APIURL is the backend root. The REST surface lives under APIURL + "/api";
	// the liveness check is served at the bare root.
	APIURL   string `yaml:"api_url" env:"ASSESSMENT_API_URL" env-default:"http://localhost:8000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// TokenFile is where the bearer token is persisted. Auto-derived under the
	// user config directory if empty.
	TokenFile string `yaml:"token_file" env:"ASSESSMENT_TOKEN_FILE" env-default:""`

	// DockerHostRewrite points a loopback APIURL at host.docker.internal when
	// running inside a container.
	DockerHostRewrite bool `yaml:"docker_host_rewrite" env:"DOCKER_HOST_REWRITE" env-default:"true"`

	Loader LoaderConfig `yaml:"loader"`

	MCP MCPConfig `yaml:"mcp"`
}

// LoaderConfig tunes the assessment data loaders.
type LoaderConfig struct {
	// RunRefetchDelay is how long after triggering a run the assessment is re-fetched once.
	RunRefetchDelay time.Duration `yaml:"run_refetch_delay" env:"RUN_REFETCH_DELAY" env-default:"2s"`
	// ObjectPageSize is the page size used when paging through all objects.
	ObjectPageSize int `yaml:"object_page_size" env:"OBJECT_PAGE_SIZE" env-default:"1000"`
	// RelationshipLimit bounds the single relationships request.
	RelationshipLimit int `yaml:"relationship_limit" env:"RELATIONSHIP_LIMIT" env-default:"5000"`
	// ErrorPageSize is the page size used when paging through parse errors.
	ErrorPageSize int `yaml:"error_page_size" env:"ERROR_PAGE_SIZE" env-default:"500"`
	// PollInterval is the first wait between status polls when waiting for a run.
	PollInterval time.Duration `yaml:"poll_interval" env:"POLL_INTERVAL" env-default:"2s"`
	// PollMaxInterval caps the growing wait between status polls.
	PollMaxInterval time.Duration `yaml:"poll_max_interval" env:"POLL_MAX_INTERVAL" env-default:"30s"`
}

// MCPConfig holds settings for the MCP tool endpoint.
type MCPConfig struct {
	BindAddr string `yaml:"bind_addr" env:"MCP_BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"MCP_PORT" env-default:"3480"`
	// APIKey, when set, must be presented as a bearer token on every MCP request.
	APIKey string `yaml:"api_key" env:"MCP_API_KEY" env-default:""`
}

// Load reads configuration from config.yaml (if present) with environment variable
// overrides. The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	return LoadFile("config.yaml", version)
}

// LoadFile is Load with an explicit config file path. A missing file is not an error;
// configuration then comes from the environment alone.
func LoadFile(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.APIURL = resolveAPIURLForDocker(cfg.APIURL, cfg.DockerHostRewrite && IsRunningInDocker())

	if cfg.TokenFile == "" {
		cfg.TokenFile = defaultTokenFile()
	}

	return cfg, nil
}

// validate checks values cleanenv cannot check on its own.
func (c *Config) validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("api_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api_url must use http or https, got %q", c.APIURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api_url must include a host, got %q", c.APIURL)
	}

	if c.Loader.ObjectPageSize <= 0 {
		return fmt.Errorf("object_page_size must be greater than zero")
	}
	if c.Loader.ErrorPageSize <= 0 {
		return fmt.Errorf("error_page_size must be greater than zero")
	}
	if c.Loader.RelationshipLimit <= 0 {
		return fmt.Errorf("relationship_limit must be greater than zero")
	}
	if c.Loader.RunRefetchDelay < 0 {
		return fmt.Errorf("run_refetch_delay must not be negative")
	}
	if c.Loader.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be greater than zero")
	}
	if c.Loader.PollMaxInterval < c.Loader.PollInterval {
		return fmt.Errorf("poll_max_interval must be at least poll_interval")
	}
	return nil
}

// APIBaseURL returns the REST base, APIURL + "/api".
func (c *Config) APIBaseURL() string {
	return c.APIURL + "/api"
}

// MCPListenAddr returns host:port for the MCP endpoint.
func (c *Config) MCPListenAddr() string {
	return c.MCP.BindAddr + ":" + c.MCP.Port
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".assessment-console-token.yaml"
	}
	return filepath.Join(dir, "assessment-console", "token.yaml")
}
