package config

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	getter "github.com/hashicorp/go-getter"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON string

var schema = jsonschema.MustCompileString("worldtrim.schema.json", schemaJSON)

// Load reads the configuration from src. src is either a local path or any
// go-getter source such as "https://..." or "git::...". A missing local file
// yields the default configuration.
func Load(ctx context.Context, src string) (*Config, error) {
	if strings.TrimSpace(src) == "" {
		cfg := DefaultConfig()
		cfg.Normalize()
		return cfg, nil
	}

	local, err := isLocal(src)
	if err != nil {
		return nil, fmt.Errorf("detect config source: %w", err)
	}

	var data []byte
	if local {
		data, err = os.ReadFile(src)
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			cfg.Normalize()
			return cfg, nil
		}
	} else {
		data, err = fetch(ctx, src)
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(src), err)
	}
	return cfg, nil
}

// Parse decodes and validates a YAML configuration document.
func Parse(data []byte) (*Config, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validateSchema checks the raw document against the embedded JSON schema.
// YAML is converted through JSON so numbers reach the validator in the
// form it expects.
func validateSchema(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode yaml: %w", err)
	}
	if doc == nil {
		return nil
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("convert config to json: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("convert config to json: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

func isLocal(src string) (bool, error) {
	pwd, err := os.Getwd()
	if err != nil {
		return false, err
	}
	u, err := getter.Detect(src, pwd, getter.Detectors)
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(u, "file://"), nil
}

// fetch downloads a remote config into a temp dir and returns its content.
func fetch(ctx context.Context, src string) ([]byte, error) {
	tmp, err := os.MkdirTemp("", "worldtrim-config-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	dst := filepath.Join(tmp, DefaultFile)
	if err := getter.GetFile(dst, src, getter.WithContext(ctx)); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src, err)
	}
	return os.ReadFile(dst)
}
