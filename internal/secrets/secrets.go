// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets locates the API credential for the generative service.
//
// Two on-disk formats are understood. A secrets directory holds one file per
// secret: the filename is the key name and the trimmed contents are the value
// (e.g. .secrets/openai-api-key). A key file is a JSON or YAML document with
// an openai_api_key field.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/explainer/pkg/types"
)

const (
	// KeyField is the field name a key file must carry.
	KeyField = "openai_api_key"

	// SecretName is the filename looked up in the secrets directory.
	SecretName = "openai-api-key"

	// EnvAPIKey is the environment variable consulted after the key file.
	EnvAPIKey = "OPENAI_API_KEY"
)

// ErrNoCredential is returned by Resolve when no source produced a key.
// It wraps types.ErrConfiguration.
var ErrNoCredential = fmt.Errorf("%w: no API key found (set --api-key, --key-file, %s, or .secrets/%s)",
	types.ErrConfiguration, EnvAPIKey, SecretName)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadKeyFile reads the API key from a JSON or YAML key file.
// A missing or unreadable file fails with types.ErrConfiguration; a file that
// does not parse, or has no non-empty string under KeyField, fails with
// types.ErrParse.
func LoadKeyFile(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("%w: key file path is empty", types.ErrConfiguration)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: reading key file %s: %w", types.ErrConfiguration, path, err)
	}

	// JSON is a subset of YAML, so one decoder covers both formats.
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("%w: parsing key file %s: %w", types.ErrParse, path, err)
	}
	if doc == nil {
		return "", fmt.Errorf("%w: key file %s is empty", types.ErrParse, path)
	}

	raw, ok := doc[KeyField]
	if !ok {
		return "", fmt.Errorf("%w: key file %s has no %q field", types.ErrParse, path, KeyField)
	}
	key, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: key file %s: %q is not a string", types.ErrParse, path, KeyField)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("%w: key file %s: %q is empty", types.ErrParse, path, KeyField)
	}
	return key, nil
}

// Sources lists the places Resolve looks for a credential.
type Sources struct {
	// APIKey is an explicitly configured key (flag, config file, or
	// EXPLAINER_API_KEY).
	APIKey string

	// KeyFile is an explicitly configured key file path.
	KeyFile string

	// Env looks up environment variables. Defaults to os.LookupEnv.
	Env func(string) (string, bool)

	// Secrets is the contents of the secrets directory, as returned by Load.
	Secrets map[string]string
}

// Resolve returns the first credential found, in order: explicit key,
// key file, OPENAI_API_KEY, secrets directory. A configured key file that
// fails to load is returned as an error rather than skipped. When nothing
// matches, Resolve returns ErrNoCredential.
func Resolve(src Sources) (string, error) {
	if key := strings.TrimSpace(src.APIKey); key != "" {
		return key, nil
	}

	if src.KeyFile != "" {
		return LoadKeyFile(src.KeyFile)
	}

	env := src.Env
	if env == nil {
		env = os.LookupEnv
	}
	if v, ok := env(EnvAPIKey); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), nil
	}

	if v, ok := src.Secrets[SecretName]; ok && v != "" {
		return v, nil
	}

	return "", ErrNoCredential
}

// IsMissing reports whether err means no credential source was configured,
// as opposed to a configured source that failed.
func IsMissing(err error) bool {
	return errors.Is(err, ErrNoCredential)
}
