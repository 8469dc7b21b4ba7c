package app

import (
	"github.com/vk/tabflow/internal/registry"
	"github.com/vk/tabflow/modules/archive"
	"github.com/vk/tabflow/modules/csv_interpreter"
	"github.com/vk/tabflow/modules/http_extractor"
	"github.com/vk/tabflow/modules/local_file"
	"github.com/vk/tabflow/modules/print"
	"github.com/vk/tabflow/modules/sheet"
	"github.com/vk/tabflow/modules/sql_loader"
	"github.com/vk/tabflow/modules/table_interpreter"
	"github.com/vk/tabflow/modules/text"
)

// coreModules is the definitive list of all modules that are compiled into
// the tabflow binary.
var coreModules = []registry.Module{
	&http_extractor.Module{},
	&local_file.Module{},
	&archive.Module{},
	&text.Module{},
	&csv_interpreter.Module{},
	&sheet.Module{},
	&table_interpreter.Module{},
	&sql_loader.Module{},
	&print.Module{},
}
