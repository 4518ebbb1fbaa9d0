package queries

import (
	"io/fs"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestQueryHelperAllStringsRecursive(t *testing.T) {
	var paths []string
	collectQueryPaths(reflect.ValueOf(QueryHelper), &paths)

	if len(paths) == 0 {
		t.Fatal("no query paths in QueryHelper found")
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			if content := Get(path); content == "" {
				t.Errorf("query file %q is empty", path)
			}
		})
	}

	// every .sql file on disk must be registered, and nothing registered may
	// point at a file that is not there
	count := 0
	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			count++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("error walking the query directory: %v", err)
	}

	if count != len(paths) {
		t.Fatalf("number of .sql files does not match number of query paths in QueryHelper (%d != %d)", count, len(paths))
	}
}

// collectQueryPaths walks a registry struct and gathers every string field.
func collectQueryPaths(v reflect.Value, paths *[]string) {
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)

		if field.Kind() == reflect.String {
			if s := field.String(); s != "" {
				*paths = append(*paths, s)
			}
		} else {
			collectQueryPaths(field, paths)
		}
	}
}

func Test_Get_PanicsOnUnknownPath(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic for an unregistered query path")
		}
	}()

	Get("select/does_not_exist.sql")
}
