// Package bundle builds input bundles for job submission from CSV table
// files, either a directory of conventionally named files or an explicit
// YAML manifest.
package bundle

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/me/rota/pkg/model"
)

// Load reads a bundle from a directory containing <Table>.csv files
// (InstructorCourses.csv, Courses.csv, ...). Instructor.csv is optional;
// any other absent file surfaces later as an InvalidBundleError from
// bundle validation, so a caller gets one error naming every problem
// rather than failing on the first missing file.
func Load(dir string) (*model.InputBundle, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}

	tables := make(map[model.TableName]model.Table)
	names := append([]model.TableName{}, model.RequiredTables...)
	names = append(names, model.TableInstructor)

	for _, name := range names {
		path := filepath.Join(absDir, string(name)+".csv")
		tbl, err := readCSV(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}
		tables[name] = tbl
	}
	return model.NewInputBundle(tables), nil
}

// Manifest maps table names to CSV file paths, relative to the manifest's
// own location.
type Manifest struct {
	Tables map[string]string `yaml:"tables"`
}

// LoadManifest reads a YAML manifest and loads the tables it names.
// Unknown table names are rejected so a typo cannot silently drop a
// required table.
func LoadManifest(path string) (*model.InputBundle, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	baseDir := filepath.Dir(absPath)

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest YAML: %w", err)
	}
	if len(m.Tables) == 0 {
		return nil, fmt.Errorf("manifest has no tables")
	}

	known := make(map[model.TableName]bool, len(model.RequiredTables)+1)
	for _, name := range model.RequiredTables {
		known[name] = true
	}
	known[model.TableInstructor] = true

	tables := make(map[model.TableName]model.Table)
	for name, rel := range m.Tables {
		tn := model.TableName(name)
		if !known[tn] {
			return nil, fmt.Errorf("manifest: unknown table %q", name)
		}
		csvPath := rel
		if !filepath.IsAbs(csvPath) {
			csvPath = filepath.Join(baseDir, rel)
		}
		tbl, err := readCSV(csvPath)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", name, err)
		}
		tables[tn] = tbl
	}
	return model.NewInputBundle(tables), nil
}

// readCSV parses one table file. The first row is the header; every data
// row becomes a column-name → value map. Short rows are padded with
// empty values rather than rejected, matching how the solver's own
// loader treats ragged CSVs.
func readCSV(path string) (model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return model.Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	var tbl model.Table
	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(tbl)+2, err)
		}
		row := make(model.Row, len(header))
		for i, colName := range header {
			if i < len(fields) {
				row[colName] = fields[i]
			} else {
				row[colName] = ""
			}
		}
		tbl = append(tbl, row)
	}
	return tbl, nil
}
