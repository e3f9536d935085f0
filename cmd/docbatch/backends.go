package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docbatch/internal/container"
	"github.com/pdiddy/docbatch/internal/convert"
	"github.com/pdiddy/docbatch/pkg/types"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List conversion backends and whether each can run here",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		for _, b := range types.ConverterBackends {
			fmt.Fprintf(w, "%-14s %s\n", b, backendStatus(cmd, b))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backendsCmd)
}

func backendStatus(cmd *cobra.Command, b types.ConverterBackend) string {
	switch b {
	case types.BackendMarkitdown:
		image := viper.GetString("converter.image")
		if image == "" {
			image = convert.DefaultMarkitdownImage
		}
		rt, err := container.Detect(cmd.Context())
		if err != nil {
			return fmt.Sprintf("container image %s (unavailable: %v)", image, err)
		}
		if err := rt.ImageExists(cmd.Context(), image); err != nil {
			return fmt.Sprintf("container image %s via %s (image missing)", image, rt.Name())
		}
		return fmt.Sprintf("container image %s via %s (ready)", image, rt.Name())
	case types.BackendPdftext:
		return "embedded PDF text layer (built in)"
	case types.BackendDoclingServe:
		url := viper.GetString("converter.server_url")
		if url == "" {
			return "docling-serve HTTP API (set --server-url)"
		}
		return fmt.Sprintf("docling-serve HTTP API at %s", url)
	}
	return ""
}
