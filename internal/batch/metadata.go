// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"fmt"
	"maps"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docbatch/pkg/types"
)

// fixedKeys are set per file and win over caller metadata.
var fixedKeys = []string{types.MetaSourceFile, types.MetaExtractionDate}

// LoadMetadataFile reads caller metadata from a YAML mapping.
// An empty file yields empty metadata.
func LoadMetadataFile(path string) (types.BatchMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading metadata file: %w", err)
	}
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing metadata file %s: %w", path, err)
	}
	if raw == nil {
		return types.BatchMetadata{}, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("metadata file %s: top level must be a mapping with string keys, got %T", path, raw)
	}
	for k, v := range m {
		if err := checkKeys(k, v); err != nil {
			return nil, fmt.Errorf("metadata file %s: %w", path, err)
		}
	}
	return types.BatchMetadata(m), nil
}

// checkKeys rejects nested mappings with non-string keys, which YAML allows
// but JSON cannot encode.
func checkKeys(path string, v any) error {
	switch v := v.(type) {
	case map[string]any:
		for k, child := range v {
			if err := checkKeys(path+"."+k, child); err != nil {
				return err
			}
		}
	case map[any]any:
		for k := range v {
			if _, ok := k.(string); !ok {
				return fmt.Errorf("key %v under %q is not a string", k, path)
			}
		}
		return fmt.Errorf("mapping under %q has mixed key types", path)
	case []any:
		for i, child := range v {
			if err := checkKeys(fmt.Sprintf("%s[%d]", path, i), child); err != nil {
				return err
			}
		}
	}
	return nil
}

// ParseMetadataPairs parses key=value strings. Values stay strings; the
// first '=' separates key from value.
func ParseMetadataPairs(pairs []string) (types.BatchMetadata, error) {
	meta := make(types.BatchMetadata, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid metadata %q: want key=value", p)
		}
		meta[k] = v
	}
	return meta, nil
}

// MergeMetadata returns a copy of base with overlay applied on top.
func MergeMetadata(base, overlay types.BatchMetadata) types.BatchMetadata {
	out := make(types.BatchMetadata, len(base)+len(overlay))
	maps.Copy(out, base)
	maps.Copy(out, overlay)
	return out
}

// freezeMetadata copies caller metadata for one run and drops keys that
// collide with the fixed per-file fields, logging each one.
func freezeMetadata(meta types.BatchMetadata, log *zap.Logger) types.BatchMetadata {
	out := maps.Clone(meta)
	if out == nil {
		return types.BatchMetadata{}
	}
	for _, k := range fixedKeys {
		if v, ok := out[k]; ok {
			log.Warn("ignoring caller metadata that collides with a fixed field",
				zap.String("key", k), zap.Any("value", v))
			delete(out, k)
		}
	}
	return out
}

// fileMetadata builds the metadata block for one output file.
func fileMetadata(sourceFile string, extracted time.Time, caller types.BatchMetadata) map[string]any {
	meta := make(map[string]any, len(caller)+len(fixedKeys))
	maps.Copy(meta, caller)
	meta[types.MetaSourceFile] = sourceFile
	meta[types.MetaExtractionDate] = extracted.Format(time.RFC3339)
	return meta
}
