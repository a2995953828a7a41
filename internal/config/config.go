package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Neighbour index implementations for the cluster builder.
const (
	NeighborIndexExact = "exact"
	NeighborIndexHNSW  = "hnsw"
)

// Naming store backends.
const (
	NamingBackendSQLite   = "sqlite"
	NamingBackendPostgres = "postgres"
)

type Config struct {
	Library     LibraryConfig     `yaml:"library"`
	Store       StoreConfig       `yaml:"store"`
	Recognition RecognitionConfig `yaml:"recognition"`
	Clustering  ClusteringConfig  `yaml:"clustering"`
	Naming      NamingConfig      `yaml:"naming"`
	Web         WebConfig         `yaml:"web"`
}

type LibraryConfig struct {
	Root         string   `yaml:"root"`           // image library to index
	Extensions   []string `yaml:"extensions"`     // recognised still-image extensions, matched case-insensitively
	IgnoreFile   string   `yaml:"ignore_file"`    // gitignore-style file in Root, optional
	MaxImageSize int      `yaml:"max_image_size"` // longer edge in pixels before upload to the face service
}

type StoreConfig struct {
	Dir            string `yaml:"dir"`
	EmbeddingsFile string `yaml:"embeddings_file"`
	ClustersFile   string `yaml:"clusters_file"`
}

// EmbeddingsPath returns the location of the embedding store blob.
func (c *StoreConfig) EmbeddingsPath() string {
	return filepath.Join(c.Dir, c.EmbeddingsFile)
}

// ClustersPath returns the location of the clustering result blob.
func (c *StoreConfig) ClustersPath() string {
	return filepath.Join(c.Dir, c.ClustersFile)
}

type RecognitionConfig struct {
	URL            string `yaml:"url"`   // face service base URL
	Model          string `yaml:"model"` // detector model passed to the service (hog or cnn)
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type ClusteringConfig struct {
	Epsilon       float64 `yaml:"epsilon"`        // neighbourhood radius (Euclidean)
	MinPoints     int     `yaml:"min_points"`     // neighbourhood size including the point itself
	NeighborIndex string  `yaml:"neighbor_index"` // exact or hnsw
}

type NamingConfig struct {
	Backend      string `yaml:"backend"`
	SQLiteFile   string `yaml:"sqlite_file"`
	SQLitePath   string `yaml:"-"` // resolved against Store.Dir unless NAMES_SQLITE_PATH is set
	DatabaseURL  string `yaml:"-"` // PostgreSQL connection URL
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

type WebConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"-"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envString returns the env var value or the default if unset.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envList splits a comma-separated env var, dropping empty entries.
func envList(key string) []string {
	var out []string
	for item := range strings.SplitSeq(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Defaults returns the configuration embedded in defaults.yaml without env overrides.
func Defaults() *Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		// Embedded file, only a broken build can get here.
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}
	cfg.Naming.SQLitePath = filepath.Join(cfg.Store.Dir, cfg.Naming.SQLiteFile)
	return &cfg
}

// Load returns the defaults overlaid with environment variables.
func Load() (*Config, error) {
	cfg := Defaults()

	cfg.Library.Root = envString("FACES_LIBRARY_PATH", cfg.Library.Root)
	if exts := envList("FACES_EXTENSIONS"); len(exts) > 0 {
		cfg.Library.Extensions = exts
	}
	cfg.Library.MaxImageSize = envInt("IMAGE_MAX_SIZE", cfg.Library.MaxImageSize)

	cfg.Store.Dir = envString("FACES_DB_PATH", cfg.Store.Dir)
	cfg.Naming.SQLitePath = envString("NAMES_SQLITE_PATH", filepath.Join(cfg.Store.Dir, cfg.Naming.SQLiteFile))

	cfg.Recognition.URL = envString("FACE_SERVICE_URL", cfg.Recognition.URL)
	cfg.Recognition.Model = envString("FACE_MODEL", cfg.Recognition.Model)
	cfg.Recognition.TimeoutSeconds = envInt("FACE_SERVICE_TIMEOUT", cfg.Recognition.TimeoutSeconds)

	cfg.Clustering.Epsilon = envFloat("CLUSTER_EPSILON", cfg.Clustering.Epsilon)
	cfg.Clustering.MinPoints = envInt("CLUSTER_MIN_POINTS", cfg.Clustering.MinPoints)
	cfg.Clustering.NeighborIndex = envString("CLUSTER_NEIGHBOR_INDEX", cfg.Clustering.NeighborIndex)

	cfg.Naming.Backend = envString("NAMES_BACKEND", cfg.Naming.Backend)
	cfg.Naming.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.Naming.MaxOpenConns = envInt("DATABASE_MAX_OPEN_CONNS", cfg.Naming.MaxOpenConns)
	cfg.Naming.MaxIdleConns = envInt("DATABASE_MAX_IDLE_CONNS", cfg.Naming.MaxIdleConns)

	cfg.Web.Host = envString("WEB_HOST", cfg.Web.Host)
	cfg.Web.Port = envInt("WEB_PORT", cfg.Web.Port)
	cfg.Web.AllowedOrigins = envList("WEB_ALLOWED_ORIGINS")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would make a batch run meaningless.
func (c *Config) Validate() error {
	if c.Clustering.Epsilon <= 0 {
		return fmt.Errorf("clustering epsilon must be positive, got %v", c.Clustering.Epsilon)
	}
	if c.Clustering.MinPoints < 1 {
		return fmt.Errorf("clustering min points must be at least 1, got %d", c.Clustering.MinPoints)
	}
	switch c.Clustering.NeighborIndex {
	case NeighborIndexExact, NeighborIndexHNSW:
	default:
		return fmt.Errorf("unknown neighbor index %q (want %s or %s)",
			c.Clustering.NeighborIndex, NeighborIndexExact, NeighborIndexHNSW)
	}
	switch c.Naming.Backend {
	case NamingBackendSQLite:
	case NamingBackendPostgres:
		if c.Naming.DatabaseURL == "" {
			return errors.New("DATABASE_URL environment variable is required for the postgres naming backend")
		}
	default:
		return fmt.Errorf("unknown naming backend %q", c.Naming.Backend)
	}
	if c.Store.Dir == "" {
		return errors.New("store directory must not be empty")
	}
	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return fmt.Errorf("web port must be between 1 and 65535, got %d", c.Web.Port)
	}
	return nil
}
