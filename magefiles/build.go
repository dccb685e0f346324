//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the testbed into bin/marionette.
func (Build) Engine() error {
	mg.Deps(Tidy)
	_, err := executeCmd("go", withArgs("build", "-o", "bin/marionette", "."), withStream())
	return err
}

// Builds the glTF converter into bin/modelimporter.
func (Build) Importer() error {
	mg.Deps(Tidy)
	_, err := executeCmd("go", withArgs("build", "-o", "bin/modelimporter", "./tools/modelimporter"), withStream())
	return err
}

// Runs go mod tidy.
func Tidy() error {
	return goTidy()
}

// Runs every test with the race detector.
func Test() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream())
	return err
}
