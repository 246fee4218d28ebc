// Package cfg defines the core's configuration surface (spec §6). Loading
// and layering (YAML files, CLI flags) is owned by the out-of-scope CLI;
// this package only defines the typed tree the core consumes and a
// koanf-based loader for embedding callers that don't bring their own.
package cfg

import "time"

// Duration wraps time.Duration for text unmarshaling from YAML/env.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// StorageConfig is the storage section of §6.
type StorageConfig struct {
	Local      *LocalStorageConfig      `koanf:"local"`
	Remote     *RemoteStorageConfig     `koanf:"remote"`
	Cached     *CachedStorageConfig     `koanf:"cached"`
	Compressed *CompressedStorageConfig `koanf:"compressed"`
}

type LocalStorageConfig struct {
	Path string `koanf:"path"`
}

type RemoteStorageConfig struct {
	Bucket          string            `koanf:"bucket"`
	Region          string            `koanf:"region"`
	Endpoint        string            `koanf:"endpoint"`
	ForcePathStyle  bool              `koanf:"force_path_style"`
	Credentials     map[string]string `koanf:"credentials"`
}

type CachedStorageConfig struct {
	L1Path      string         `koanf:"l1_path"`
	L1MaxSizeGB float64        `koanf:"l1_max_size_gb"`
	L2          *StorageConfig `koanf:"l2"`
}

type CompressedStorageConfig struct {
	Algorithm string         `koanf:"algorithm"` // none, lz4, zstd[:level]
	MinSize   int            `koanf:"min_size"`
	Inner     *StorageConfig `koanf:"inner"`
}

// TLSConfig is the cluster.tls section of §6.
type TLSConfig struct {
	Enabled     bool   `koanf:"enabled"`
	CertPath    string `koanf:"cert_path"`
	KeyPath     string `koanf:"key_path"`
	CACertPath  string `koanf:"ca_cert_path"`
	SkipVerify  bool   `koanf:"skip_verify"`
}

// ClusterConfig is the cluster section of §6.
type ClusterConfig struct {
	Enabled           bool     `koanf:"enabled"`
	NodeID            string   `koanf:"node_id"`
	BindAddr          string   `koanf:"bind_addr"`
	SeedNodes         []string `koanf:"seed_nodes"`
	ConnectTimeoutMS  int      `koanf:"connect_timeout_ms"`
	RequestTimeoutMS  int      `koanf:"request_timeout_ms"`
	MaxConnections    int      `koanf:"max_connections"`
	TLS               TLSConfig `koanf:"tls"`
}

// DiscoveryConfig is the discovery section of §6.
type DiscoveryConfig struct {
	Static *StaticDiscoveryConfig `koanf:"static"`
	DNS    *DNSDiscoveryConfig    `koanf:"dns"`
}

type StaticDiscoveryConfig struct {
	Nodes []string `koanf:"nodes"`
}

type DNSDiscoveryConfig struct {
	Name            string `koanf:"name"`
	RefreshInterval int    `koanf:"refresh_interval_secs"`
	Server          string `koanf:"server"`
	DefaultPort     int    `koanf:"default_port"`
}

// CacheConfig is the cache section of §6 (embedding cache).
type CacheConfig struct {
	Backend     string `koanf:"backend"` // durable, remote
	Path        string `koanf:"path"`
	URL         string `koanf:"url"`
	MaxEntries  int    `koanf:"max_entries"`
	KeyStrategy string `koanf:"key_strategy"` // text_only, model_text, model_version_text
}

// Config is the root configuration tree the core consumes.
type Config struct {
	Storage   StorageConfig   `koanf:"storage"`
	Cluster   ClusterConfig   `koanf:"cluster"`
	Discovery DiscoveryConfig `koanf:"discovery"`
	Cache     CacheConfig     `koanf:"cache"`
}

// Default returns a Config with the core's defaults filled in — a single
// local-storage node with no cluster and a durable embedding cache. This is
// the embedded, single-process shape spec.md §2 calls out explicitly.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{Local: &LocalStorageConfig{Path: "./data"}},
		Cache: CacheConfig{
			Backend:     "durable",
			Path:        "./data/cache",
			MaxEntries:  100_000,
			KeyStrategy: "model_text",
		},
	}
}
