//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the testbed. MARIONETTE_CONFIG points at a TOML configuration.
func (Run) Engine() error {
	args := []string{"run", "."}
	if config := os.Getenv("MARIONETTE_CONFIG"); config != "" {
		args = append(args, "-config", config)
	}
	fmt.Println("Run engine...")
	_, err := executeCmd("go", withArgs(args...), withStream())
	return err
}

// Converts a glTF file into the engine model files, e.g.
// mage import assets/src/Character01.glb assets/models/Character01/Character01.model
func Import(input, output string) error {
	mg.Deps(Build.Importer)
	args := []string{input, output}
	if scale := os.Getenv("MARIONETTE_IMPORT_SCALE"); scale != "" {
		args = append([]string{"-scale", scale}, args...)
	}
	_, err := executeCmd("bin/modelimporter", withArgs(args...), withStream())
	return err
}
