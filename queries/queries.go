package queries

import (
	"embed"
	"fmt"
)

//go:embed create/*.sql delete/*.sql insert/*.sql select/*.sql
var Files embed.FS

type CreateQueries struct {
	ObservationsTable string
}

type DeleteQueries struct {
	ObservationsByIndicator string
}

type InsertQueries struct {
	Observation string
}

type SelectQueries struct {
	CachedIndicators        string
	ObservationsByIndicator string
}

type QueryHelperStruct struct {
	Create CreateQueries
	Delete DeleteQueries
	Insert InsertQueries
	Select SelectQueries
}

var QueryHelper = QueryHelperStruct{
	Create: CreateQueries{
		ObservationsTable: "create/observations_table.sql",
	},
	Delete: DeleteQueries{
		ObservationsByIndicator: "delete/observations_by_indicator.sql",
	},
	Insert: InsertQueries{
		Observation: "insert/observation.sql",
	},
	Select: SelectQueries{
		CachedIndicators:        "select/cached_indicators.sql",
		ObservationsByIndicator: "select/observations_by_indicator.sql",
	},
}

// Get returns the embedded query at path. The sql ships inside the binary, so
// a missing path is a programmer error and panics.
func Get(path string) string {
	content, err := Files.ReadFile(path)
	if err != nil {
		panic(fmt.Errorf("error reading query file: %w", err))
	}

	return string(content)
}
