package cfg

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Load reads a YAML document (if path is non-empty and exists) and layers
// environment variables on top, following the precedence the teacher's
// config loader uses: env > file > defaults.
//
// This is the typed-config ambient stack only; the CLI's flag parsing and
// the YAML schema *loader* for collection schemas are out of scope (§1).
func Load(path string) (*Config, error) {
	cfg := Default()

	k := koanf.New(".")
	if path != "" {
		if content, err := os.ReadFile(path); err == nil {
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	// CLUSTER_NODE_ID -> cluster.node_id, split on the first underscore only
	// so the section name stays a single token and the field keeps its own
	// underscores — matches the teacher's transformer in
	// contextd/internal/config/loader.go.
	if err := k.Load(env.Provider("", ".", func(s string) string {
		lower := strings.ToLower(s)
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("load env config: %w", err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
