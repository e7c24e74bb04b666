package app

import (
	"io"

	"github.com/specialistvlad/neurogrid/internal/catalog"
	"github.com/specialistvlad/neurogrid/modules/arith"
	"github.com/specialistvlad/neurogrid/modules/layers"
	"github.com/specialistvlad/neurogrid/modules/print"
	"github.com/specialistvlad/neurogrid/modules/tables"
	"github.com/specialistvlad/neurogrid/modules/training"
)

// CoreModules is the definitive list of all modules that are compiled into
// the neurogrid binary. Print nodes write to outW.
func CoreModules(outW io.Writer) []catalog.Module {
	return []catalog.Module{
		&arith.Module{},
		&layers.Module{},
		&training.Module{},
		&tables.Module{},
		&print.Module{Out: outW},
	}
}
