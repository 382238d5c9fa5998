package modules

import (
	"github.com/sanifleet/sanifleet/modules/core"
	"github.com/sanifleet/sanifleet/modules/imports"
	"github.com/sanifleet/sanifleet/pkg/application"
)

// BuiltInModules is the module load order. Core registers the services the
// other modules resolve from the registry, so it stays first.
var BuiltInModules = []application.Module{
	core.NewModule(),
	imports.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	return application.Load(app, append(BuiltInModules, externalModules...)...)
}
