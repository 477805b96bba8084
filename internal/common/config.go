package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server" json:"server"`
	Workspace WorkspaceConfig `mapstructure:"workspace" json:"workspace"`
	Compiler  CompilerConfig  `mapstructure:"compiler" json:"compiler"`
	Jobs      JobsConfig      `mapstructure:"jobs" json:"jobs"`
	Log       LogConfig       `mapstructure:"log" json:"log"`

	// ConfigFile is the file the values were read from, empty when none was found.
	ConfigFile string `mapstructure:"-" json:"-"`
}

// ServerConfig holds listener addresses. An empty HTTPAddr disables the HTTP gateway.
type ServerConfig struct {
	GRPCAddr string `mapstructure:"grpc_addr" json:"grpc_addr"`
	HTTPAddr string `mapstructure:"http_addr" json:"http_addr"`
}

// WorkspaceConfig holds the scratch root shared by all job directories.
type WorkspaceConfig struct {
	ScratchRoot string        `mapstructure:"scratch_root" json:"scratch_root"`
	SweepAfter  time.Duration `mapstructure:"sweep_after" json:"sweep_after"`
}

// CompilerConfig holds compiler-related configuration
type CompilerConfig struct {
	Path             string `mapstructure:"path" json:"path"`
	RelayDiagnostics bool   `mapstructure:"relay_diagnostics" json:"relay_diagnostics"`
}

// JobsConfig holds per-job stream configuration
type JobsConfig struct {
	ChunkBuffer      int  `mapstructure:"chunk_buffer" json:"chunk_buffer"`
	KillOnDisconnect bool `mapstructure:"kill_on_disconnect" json:"kill_on_disconnect"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"`
}

// envBindings maps every key to the environment variables that may override it,
// highest precedence first.
var envBindings = map[string][]string{
	"server.grpc_addr":           {"COMPUTE_SERVER_GRPC_ADDR", "GRPC_ADDR"},
	"server.http_addr":           {"COMPUTE_SERVER_HTTP_ADDR", "HTTP_ADDR"},
	"workspace.scratch_root":     {"COMPUTE_WORKSPACE_SCRATCH_ROOT", "SCRATCH_ROOT"},
	"workspace.sweep_after":      {"COMPUTE_WORKSPACE_SWEEP_AFTER"},
	"compiler.path":              {"COMPUTE_COMPILER_PATH", "COMPILER"},
	"compiler.relay_diagnostics": {"COMPUTE_COMPILER_RELAY_DIAGNOSTICS"},
	"jobs.chunk_buffer":          {"COMPUTE_JOBS_CHUNK_BUFFER"},
	"jobs.kill_on_disconnect":    {"COMPUTE_JOBS_KILL_ON_DISCONNECT"},
	"log.level":                  {"COMPUTE_LOG_LEVEL", "LOG_LEVEL"},
	"log.format":                 {"COMPUTE_LOG_FORMAT", "LOG_FORMAT"},
}

// LoadConfig loads configuration from defaults, an optional config file and
// environment variables, in increasing order of precedence. When path is empty
// CONFIG_FILE is consulted, then computed.{yaml,json,toml} in the working
// directory; a missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.grpc_addr", ":50051")
	v.SetDefault("server.http_addr", "")
	v.SetDefault("workspace.scratch_root", filepath.Join(os.TempDir(), "remote-compute"))
	v.SetDefault("workspace.sweep_after", 24*time.Hour)
	v.SetDefault("compiler.path", "nvcc")
	v.SetDefault("compiler.relay_diagnostics", false)
	v.SetDefault("jobs.chunk_buffer", 100)
	v.SetDefault("jobs.kill_on_disconnect", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	for key, names := range envBindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, NewAppError("CONFIG_ERROR", "bind env for "+key, err)
		}
	}

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("computed")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, NewAppError("CONFIG_ERROR", "read config file", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, NewAppError("CONFIG_ERROR", "decode config", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()
	if err := validateAgainstSchema(&cfg); err != nil {
		return nil, NewAppError("CONFIG_ERROR", "config does not match schema", fmt.Errorf("%w: %w", ErrInvalidInput, err))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks constraints the schema cannot express.
func (c *Config) Validate() error {
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "server.grpc_addr is required", ErrInvalidInput)
	}
	if c.Server.HTTPAddr != "" && c.Server.HTTPAddr == c.Server.GRPCAddr {
		return NewAppError("CONFIG_ERROR", "server.http_addr must differ from server.grpc_addr", ErrInvalidInput)
	}
	if c.Workspace.ScratchRoot == "" {
		return NewAppError("CONFIG_ERROR", "workspace.scratch_root is required", ErrInvalidInput)
	}
	if c.Compiler.Path == "" {
		return NewAppError("CONFIG_ERROR", "compiler.path is required", ErrInvalidInput)
	}
	return nil
}
