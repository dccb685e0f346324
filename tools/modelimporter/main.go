// Command modelimporter converts a glTF 2.0 file into the engine's .model,
// .material, .skeleton and .animset files.
//
// Usage:
//
//	modelimporter [-scale 0.01] [-dump] input.gltf output/Character01.model
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"

	"github.com/spaghettifunk/marionette/engine/assets/importer"
	"github.com/spaghettifunk/marionette/engine/assets/loaders"
	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/resources"
)

func main() {
	scale := flag.Float64("scale", 1.0, "multiplies every position and translation")
	dump := flag.Bool("dump", false, "print the imported model")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] input.gltf output.model\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}
	if *verbose {
		core.SetLogLevel(core.DebugLevel)
	}

	if err := run(flag.Arg(0), flag.Arg(1), float32(*scale), *dump, os.Stdout); err != nil {
		core.LogFatal("%+v", err)
	}
}

func run(input, output string, scale float32, dump bool, out io.Writer) error {
	model, err := importer.ImportFile(input, importer.Options{Scale: scale})
	if err != nil {
		return err
	}
	if dump {
		cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true, MaxDepth: 6}
		cfg.Fdump(out, model)
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}
	for _, save := range []func(string, *resources.Model) error{
		loaders.SaveModel,
		loaders.SaveMaterial,
		loaders.SaveSkeleton,
		loaders.SaveAnimations,
	} {
		if err := save(output, model); err != nil {
			return errors.Wrapf(err, "failed to write %s", output)
		}
	}
	copyTextures(model, filepath.Dir(input), filepath.Dir(output))

	core.LogInfo("wrote %s", output)
	return nil
}

// copyTextures places the referenced images next to the output so the
// names in the .material file resolve. Missing images are reported and
// skipped.
func copyTextures(model *resources.Model, from, to string) {
	if from == to {
		return
	}
	copied := map[string]bool{}
	for _, md := range model.MaterialData {
		for _, name := range md.TextureNames() {
			if name == "" || copied[name] {
				continue
			}
			copied[name] = true
			if err := copyFile(filepath.Join(from, name), filepath.Join(to, name)); err != nil {
				core.LogWarn("texture %s not copied: %s", name, err)
			}
		}
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
