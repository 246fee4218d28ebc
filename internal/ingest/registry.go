package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/prismsearch/prism/internal/perr"
)

// processorDef is one declarative YAML processor entry.
type processorDef struct {
	Type  string `koanf:"type"`
	Field string `koanf:"field"`
	From  string `koanf:"from"`
	To    string `koanf:"to"`
	Value any    `koanf:"value"`
}

// pipelineDef is one declarative YAML pipeline file (spec §4.6).
type pipelineDef struct {
	Name       string         `koanf:"name"`
	Processors []processorDef `koanf:"processors"`
}

// Registry holds named pipelines loaded from a directory at startup (spec
// §4.6). Indexing requests reference a pipeline by name; an unknown name is
// a client error.
type Registry struct {
	mu        sync.RWMutex
	pipelines map[string]*Pipeline
}

// NewRegistry returns an empty registry, useful when no pipeline directory
// is configured.
func NewRegistry() *Registry {
	return &Registry{pipelines: make(map[string]*Pipeline)}
}

// LoadDir loads every *.yaml/*.yml file in dir as a pipeline definition,
// keyed by its declared name (spec §4.6).
func LoadDir(dir string) (*Registry, error) {
	reg := NewRegistry()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, perr.Wrap(perr.KindConfig, "read pipeline directory", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, perr.Wrap(perr.KindConfig, "read pipeline file "+name, err)
		}

		k := koanf.New(".")
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, perr.Wrap(perr.KindConfig, "parse pipeline file "+name, err)
		}
		var def pipelineDef
		if err := k.UnmarshalWithConf("", &def, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
			return nil, perr.Wrap(perr.KindConfig, "unmarshal pipeline file "+name, err)
		}

		pipeline, err := buildPipeline(def)
		if err != nil {
			return nil, err
		}
		reg.Register(pipeline)
	}
	return reg, nil
}

// Register adds or replaces a pipeline by name.
func (r *Registry) Register(p *Pipeline) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pipelines[p.Name] = p
}

// Get returns the named pipeline, or a client error (invalid-query) if
// unknown (spec §4.6).
func (r *Registry) Get(name string) (*Pipeline, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pipelines[name]
	if !ok {
		return nil, perr.New(perr.KindInvalidQuery, "unknown pipeline: "+name)
	}
	return p, nil
}

// Names lists every registered pipeline name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.pipelines))
	for name := range r.pipelines {
		out = append(out, name)
	}
	return out
}

func buildPipeline(def pipelineDef) (*Pipeline, error) {
	procs := make([]Processor, 0, len(def.Processors))
	for _, pd := range def.Processors {
		switch pd.Type {
		case "lowercase":
			procs = append(procs, Lowercase(pd.Field))
		case "html_strip":
			procs = append(procs, HTMLStrip(pd.Field))
		case "set":
			procs = append(procs, Set(pd.Field, pd.Value))
		case "remove":
			procs = append(procs, Remove(pd.Field))
		case "rename":
			procs = append(procs, Rename(pd.From, pd.To))
		default:
			return nil, perr.New(perr.KindConfig, fmt.Sprintf("pipeline %q: unknown processor type %q", def.Name, pd.Type))
		}
	}
	return &Pipeline{Name: def.Name, Processors: procs}, nil
}
