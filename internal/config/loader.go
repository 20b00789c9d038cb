package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsonparser "github.com/knadh/koanf/parsers/json"
	tomlparser "github.com/knadh/koanf/parsers/toml"
	yamlparser "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Loader hydrates the Servers tree from a configuration file. The document
// format (JSON, YAML, or TOML) is sniffed from the file extension; JSON is
// the primary contract, the others are an additive convenience. The document
// is read from the file alone; no environment overlay is applied to it.
type Loader struct {
	path string
}

// NewLoader prepares a hydrator for the configuration document at path.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads, parses, and builds the immutable Servers tree. A missing,
// unreadable, or unparsable file yields a plain error; a malformed document
// or expression yields a ConfigError identifying the first offending node.
func (l *Loader) Load(ctx context.Context) (Servers, error) {
	select {
	case <-ctx.Done():
		return Servers{}, ctx.Err()
	default:
	}

	if l.path == "" {
		return Servers{}, fmt.Errorf("config: no configuration file given")
	}
	if _, err := os.Stat(l.path); err != nil {
		if os.IsNotExist(err) {
			return Servers{}, fmt.Errorf("config: file %s not found", l.path)
		}
		return Servers{}, fmt.Errorf("config: stat %s: %w", l.path, err)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(l.path), parserFor(l.path)); err != nil {
		return Servers{}, fmt.Errorf("config: parse %s: %w", l.path, err)
	}

	// Marshal the merged koanf tree back to JSON and decode it into a plain
	// map so the polymorphic expression nodes under mappings[].params stay
	// untyped until expr.Build dispatches on their "type" discriminator.
	raw, err := k.Marshal(jsonparser.Parser())
	if err != nil {
		return Servers{}, fmt.Errorf("config: marshal %s: %w", l.path, err)
	}
	var doc map[string]any
	decoder := json.NewDecoder(strings.NewReader(string(raw)))
	if err := decoder.Decode(&doc); err != nil {
		return Servers{}, fmt.Errorf("config: decode %s: %w", l.path, err)
	}

	return parseServers(doc)
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yamlparser.Parser()
	case ".toml":
		return tomlparser.Parser()
	default:
		return jsonparser.Parser()
	}
}
