package loaders

import (
	"github.com/spaghettifunk/marionette/engine/math"
	"github.com/spaghettifunk/marionette/engine/resources"
)

// MaterialLoader reads and writes the material table of a model.
type MaterialLoader struct{}

func (MaterialLoader) Load(path string, model *resources.Model) error {
	return LoadMaterial(path, model)
}

func (MaterialLoader) Save(path string, model *resources.Model) error {
	return SaveMaterial(path, model)
}

// SaveMaterial writes the materials of model to path with its extension
// replaced by .material. Texture names are written as given, an empty name
// is written as <NONE>.
func SaveMaterial(path string, model *resources.Model) error {
	if len(model.MaterialData) == 0 {
		return nil
	}

	return writeFile(WithExtension(path, MaterialExtension), func(tw *textWriter) {
		tw.printf("MaterialCount: %d\n", len(model.MaterialData))
		for _, materialData := range model.MaterialData {
			m := materialData.Material
			for _, c := range []math.Colour{m.Emissive, m.Ambient, m.Diffuse, m.Specular} {
				tw.floats(c.R, c.G, c.B, c.A)
			}
			tw.printf("Shininess: %s\n", formatFloat(m.Shininess))

			for _, name := range materialData.TextureNames() {
				if name == "" {
					name = noneTag
				}
				tw.line(name)
			}
		}
	})
}

// LoadMaterial replaces the materials of model with the content of the
// .material file next to path. A missing file leaves the model untouched.
func LoadMaterial(path string, model *resources.Model) error {
	var materials []resources.MaterialData

	found, err := readFile(WithExtension(path, MaterialExtension), func(tr *textReader) error {
		materialCount, err := tr.countField("MaterialCount")
		if err != nil {
			return err
		}
		for i := 0; i < materialCount; i++ {
			materialData := resources.MaterialData{Material: resources.DefaultMaterial()}
			m := &materialData.Material

			for _, c := range []*math.Colour{&m.Emissive, &m.Ambient, &m.Diffuse, &m.Specular} {
				values, err := tr.floats(4)
				if err != nil {
					return err
				}
				*c = math.Colour{R: values[0], G: values[1], B: values[2], A: values[3]}
			}
			if m.Shininess, err = tr.floatField("Shininess"); err != nil {
				return err
			}

			names := [4]string{}
			for slot := range names {
				name, err := tr.next()
				if err != nil {
					return err
				}
				if name != noneTag {
					names[slot] = name
				}
			}
			materialData.SetTextureNames(names)
			materials = append(materials, materialData)
		}
		return nil
	})
	if err != nil || !found {
		return err
	}

	model.MaterialData = materials
	return nil
}
