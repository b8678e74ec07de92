package edgeql

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zoobzio/dbml"
	"github.com/zoobzio/edgeql/internal/logging"
	"github.com/zoobzio/edgeql/internal/types"
)

// DBMLModule is the module DBML tables are registered under.
const DBMLModule = "default"

// dbmlScalars maps DBML column types onto standard scalars.
var dbmlScalars = map[string]*ScalarType{
	"bigint":           StdInt64,
	"bigserial":        StdInt64,
	"int":              StdInt32,
	"integer":          StdInt32,
	"serial":           StdInt32,
	"smallint":         StdInt16,
	"varchar":          StdStr,
	"char":             StdStr,
	"text":             StdStr,
	"boolean":          StdBool,
	"bool":             StdBool,
	"timestamp":        StdDatetime,
	"timestamptz":      StdDatetime,
	"date":             CalLocalDate,
	"numeric":          StdDecimal,
	"decimal":          StdDecimal,
	"uuid":             StdUUID,
	"json":             StdJSON,
	"jsonb":            StdJSON,
	"bytea":            StdBytes,
	"real":             StdFloat32,
	"float":            StdFloat64,
	"double":           StdFloat64,
	"double precision": StdFloat64,
	"vector":           PgVector,
	"interval":         StdDuration,
}

// NewFromDBML builds a sealed registry from a DBML project. Each table
// becomes an object type default::<table> with one optional property per
// column; id columns map onto the implicit id pointer.
func NewFromDBML(project *dbml.Project) (*Registry, error) {
	if project == nil {
		return nil, fmt.Errorf("project cannot be nil")
	}

	tables := make([]*dbml.Table, 0, len(project.Tables))
	for _, table := range project.Tables {
		tables = append(tables, table)
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })

	reg := NewRegistry()
	for _, table := range tables {
		obj, err := reg.RegisterObject(DBMLModule + "::" + table.Name)
		if err != nil {
			return nil, err
		}
		for _, col := range table.Columns {
			if col.Name == types.PointerID {
				continue
			}
			t, err := dbmlColumnType(col.Type)
			if err != nil {
				return nil, fmt.Errorf("table %s column %s: %w", table.Name, col.Name, err)
			}
			if err := obj.AddProperty(col.Name, &PropertyDesc{Target: t, Cardinality: AtMostOne}); err != nil {
				return nil, err
			}
		}
	}
	reg.Seal()
	logging.Debug().Int("tables", len(tables)).Msg("dbml schema loaded")
	return reg, nil
}

// dbmlColumnType resolves a DBML column type such as "varchar(255)" or
// "text[]".
func dbmlColumnType(colType string) (BaseType, error) {
	name := strings.ToLower(strings.TrimSpace(colType))
	if strings.HasSuffix(name, "[]") {
		el, err := dbmlColumnType(strings.TrimSuffix(name, "[]"))
		if err != nil {
			return nil, err
		}
		return types.ArrayOf(el)
	}
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	s, ok := dbmlScalars[name]
	if !ok {
		return nil, TypeMismatchError{Type: colType, Reason: "unsupported column type"}
	}
	return s, nil
}
