package main

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/docbatch/internal/batch"
	"github.com/pdiddy/docbatch/pkg/types"
)

// mustBind ties a viper key to a flag so config file, environment, and flag
// share one namespace. Binding only fails for a nil flag, a programming error.
func mustBind(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding %s: %v", key, err))
	}
}

// loadConfig decodes the merged settings of v into a Config.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// batchMetadata assembles caller metadata: the config file's convert.metadata
// block, then the metadata file, then key=value pairs, later sources winning.
func batchMetadata(base types.BatchMetadata, metadataFile string, pairs []string) (types.BatchMetadata, error) {
	meta := batch.MergeMetadata(nil, base)
	if metadataFile != "" {
		fromFile, err := batch.LoadMetadataFile(metadataFile)
		if err != nil {
			return nil, err
		}
		meta = batch.MergeMetadata(meta, fromFile)
	}
	fromFlags, err := batch.ParseMetadataPairs(pairs)
	if err != nil {
		return nil, err
	}
	return batch.MergeMetadata(meta, fromFlags), nil
}
