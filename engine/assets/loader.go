package assets

import (
	"github.com/spaghettifunk/marionette/engine/assets/loaders"
	"github.com/spaghettifunk/marionette/engine/resources"
)

// Loader reads one model file into a model and writes it back.
type Loader interface {
	Load(path string, model *resources.Model) error
	Save(path string, model *resources.Model) error
}

var (
	_ Loader = loaders.ModelLoader{}
	_ Loader = loaders.MaterialLoader{}
	_ Loader = loaders.SkeletonLoader{}
	_ Loader = loaders.AnimationSetLoader{}
)
