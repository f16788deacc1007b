package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from a config file and
// environment variables.
type Config struct {
	GitHubToken string
	APIURL      string
	DataDir     string
	DebugMode   bool
	LogFormat   string
	NoCache     bool
	PerPage     int
	S3Bucket    string
	S3ObjectKey string
	AWSRegion   string
}

var envKeys = map[string]string{
	"github_token":  "GITHUB_TOKEN",
	"api_url":       "GITHUB_API_URL",
	"data_dir":      "SHELF_DATA_DIR",
	"debug":         "DEBUG",
	"log_format":    "LOG_FORMAT",
	"no_cache":      "NO_CACHE",
	"per_page":      "SHELF_PER_PAGE",
	"s3_bucket":     "S3_BUCKET_NAME",
	"s3_object_key": "S3_OBJECT_KEY",
	"aws_region":    "AWS_REGION",
}

// DefaultDataDir is the data directory used when none is configured. Lambda
// only allows writes under the temp directory.
func DefaultDataDir() string {
	if os.Getenv("LAMBDA_TASK_ROOT") != "" {
		return filepath.Join(os.TempDir(), "gh-shelf")
	}
	return "data"
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("log_format", "text")
	v.SetDefault("per_page", 100)
	v.SetDefault("s3_object_key", "gh-shelf/%s/%s.json")
	for key, env := range envKeys {
		_ = v.BindEnv(key, env)
	}
	return v
}

// FromEnvironment creates a Config from environment variables.
func FromEnvironment() Config {
	return fromViper(newViper())
}

// Load reads the config file at path (yaml, toml or json) and applies
// environment overrides. An empty path is the same as FromEnvironment.
func Load(path string) (Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	return fromViper(v), nil
}

func fromViper(v *viper.Viper) Config {
	perPage := v.GetInt("per_page")
	if perPage <= 0 || perPage > 100 {
		perPage = 100
	}
	return Config{
		GitHubToken: v.GetString("github_token"),
		APIURL:      v.GetString("api_url"),
		DataDir:     v.GetString("data_dir"),
		DebugMode:   truthy(v.GetString("debug")),
		LogFormat:   v.GetString("log_format"),
		NoCache:     truthy(v.GetString("no_cache")),
		PerPage:     perPage,
		S3Bucket:    v.GetString("s3_bucket"),
		S3ObjectKey: v.GetString("s3_object_key"),
		AWSRegion:   v.GetString("aws_region"),
	}
}

func truthy(s string) bool {
	return s != "" && s != "0" && strings.ToLower(s) != "false"
}

// CacheDir is where repository cache files live.
func (c Config) CacheDir() string {
	return filepath.Join(c.DataDir, "cache")
}

// TokenDir is where the token list and the remembered token live.
func (c Config) TokenDir() string {
	return filepath.Join(c.DataDir, "json")
}

// HistoryFile is the snapshot database path.
func (c Config) HistoryFile() string {
	return filepath.Join(c.DataDir, "history.db")
}

// LogFile is the activity log path.
func (c Config) LogFile() string {
	return filepath.Join(c.DataDir, "log", "app.log")
}
