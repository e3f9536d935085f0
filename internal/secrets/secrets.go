// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads backend credentials. A .env file is loaded into the
// process environment, where viper picks up DOCBATCH_* variables; a
// directory of plain-text files supplies the rest, one secret per file named
// after its key.
//
// Supported key files: docling-api-key.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// DoclingAPIKey authenticates requests to a docling-serve instance.
const DoclingAPIKey = "docling-api-key"

// LoadEnv loads variables from the .env file at path into the process
// environment without overriding variables that are already set.
// A missing file is not an error.
func LoadEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory yields an empty map. Unreadable files are
// logged and skipped.
func Load(dir string, log *zap.Logger) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("could not read secret", zap.String("key", name), zap.Error(err))
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}
	return secrets, nil
}

// Default returns value if set, otherwise the secret stored under key.
func Default(secrets map[string]string, key, value string) string {
	if value != "" {
		return value
	}
	return secrets[key]
}
