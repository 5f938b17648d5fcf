package app

import (
	"github.com/specialistvlad/pullgridgo/internal/registry"
	"github.com/specialistvlad/pullgridgo/modules/astroconverter"
	"github.com/specialistvlad/pullgridgo/modules/astrosource"
	"github.com/specialistvlad/pullgridgo/modules/clusterinfo"
	"github.com/specialistvlad/pullgridgo/modules/collectiveprovider"
	"github.com/specialistvlad/pullgridgo/modules/particlemerge"
	"github.com/specialistvlad/pullgridgo/modules/particlescale"
	"github.com/specialistvlad/pullgridgo/modules/particlesource"
	"github.com/specialistvlad/pullgridgo/modules/print"
	"github.com/specialistvlad/pullgridgo/modules/sequencer"
)

// coreModules is the definitive list of all modules that are compiled into
// the pullgrid binary.
var coreModules = []registry.Module{
	&particlesource.Module{},
	&particlescale.Module{},
	&particlemerge.Module{},
	&astrosource.Module{},
	&astroconverter.Module{},
	&sequencer.Module{},
	&print.Module{},
	&collectiveprovider.Module{},
	&clusterinfo.Module{},
}
