//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Convert builds the CLI and converts every PDF in input/ to JSON in output/.
// Set DOCBATCH_* variables or docbatch.yaml to change backend and format.
func Convert() error {
	mg.SerialDeps(Init, Build)
	return sh.RunV(binPath, "convert", "--input-dir", "input", "--output-dir", "output")
}
