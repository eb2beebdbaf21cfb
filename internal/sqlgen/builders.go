package sqlgen

import (
	"fmt"
	"strings"

	"github.com/rzpsarthak13/mssqlvec/internal/core"
	"github.com/rzpsarthak13/mssqlvec/pkg/schema"
)

// BuildCreateTable renders the DDL creating a collection's table: key column
// first, data columns, vector columns, a primary key over the key column and
// a secondary index per indexed data property. With ifNotExists the whole
// statement is wrapped in an OBJECT_ID existence guard so it is a no-op when
// the table is already there.
func BuildCreateTable(model *schema.Model, schemaName, tableName string, ifNotExists bool) (*Command, error) {
	keyType, err := columnType(model.Key().Type, true)
	if err != nil {
		return nil, fmt.Errorf("key property %q: %w", model.Key().Name, err)
	}

	cmd := &Command{}
	if ifNotExists {
		cmd.Appendf("IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n",
			escapeSingleQuotes(TableReference(schemaName, tableName)))
	}
	cmd.Appendf("CREATE TABLE %s (\n", TableReference(schemaName, tableName))
	cmd.Appendf("    %s %s NOT NULL,\n", QuoteIdentifier(model.Key().StorageName), keyType)
	for _, p := range model.Data() {
		t, err := columnType(p.Type, false)
		if err != nil {
			return nil, fmt.Errorf("data property %q: %w", p.Name, err)
		}
		cmd.Appendf("    %s %s NULL,\n", QuoteIdentifier(p.StorageName), t)
	}
	for _, p := range model.Vectors() {
		cmd.Appendf("    %s %s NULL,\n", QuoteIdentifier(p.StorageName), vectorColumnType(p.Dimensions))
	}
	cmd.Appendf("    PRIMARY KEY (%s)\n);", QuoteIdentifier(model.Key().StorageName))
	for _, p := range model.Data() {
		if !p.Indexed {
			continue
		}
		cmd.Appendf("\nCREATE INDEX %s ON %s (%s);",
			QuoteIdentifier(fmt.Sprintf("idx_%s_%s", tableName, p.StorageName)),
			TableReference(schemaName, tableName),
			QuoteIdentifier(p.StorageName))
	}
	if ifNotExists {
		cmd.Append("\nEND")
	}
	return cmd, nil
}

// BuildDropTable renders the statement dropping a collection's table. It is
// a no-op when the table does not exist.
func BuildDropTable(schemaName, tableName string) *Command {
	cmd := &Command{}
	cmd.Appendf("DROP TABLE IF EXISTS %s;", TableReference(schemaName, tableName))
	return cmd
}

// BuildTableExists renders the catalog query probing for a collection's
// table. The result set has one row when the table exists.
func BuildTableExists(schemaName, tableName string) *Command {
	cmd := &Command{}
	cmd.Append("SELECT TABLE_NAME\nFROM INFORMATION_SCHEMA.TABLES\nWHERE TABLE_TYPE = 'BASE TABLE' AND TABLE_SCHEMA = ")
	cmd.AddParameter("schema", schemaName)
	cmd.Append(" AND TABLE_NAME = ")
	cmd.AddParameter("tbl", tableName)
	cmd.Append(";")
	return cmd
}

// BuildListTables renders the catalog query listing the base tables of a
// schema. An empty schemaName lists base tables across all schemas.
func BuildListTables(schemaName string) *Command {
	cmd := &Command{}
	cmd.Append("SELECT TABLE_SCHEMA, TABLE_NAME\nFROM INFORMATION_SCHEMA.TABLES\nWHERE TABLE_TYPE = 'BASE TABLE'")
	if schemaName != "" {
		cmd.Append(" AND TABLE_SCHEMA = ")
		cmd.AddParameter("schema", schemaName)
	}
	cmd.Append(";")
	return cmd
}

// BuildMerge renders the single-statement upsert for a batch of storage
// rows: a MERGE driven by a VALUES table source, updating non-key columns on
// match, inserting on miss, and returning the affected keys through a
// declared table variable so callers see them in batch order. All row values
// are bound parameters.
func BuildMerge(model *schema.Model, schemaName, tableName string, rows []*core.StorageRow) (*Command, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	keyType, err := columnType(model.Key().Type, true)
	if err != nil {
		return nil, fmt.Errorf("key property %q: %w", model.Key().Name, err)
	}

	columns := model.StorageNames(true)
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = QuoteIdentifier(c)
	}
	vectorCols := model.VectorStorageNames()
	vectorDims := make(map[string]int, len(vectorCols))
	for _, p := range model.Vectors() {
		vectorDims[p.StorageName] = p.Dimensions
	}

	cmd := &Command{}
	cmd.Appendf("DECLARE @UpsertedKeys TABLE (KeyColumn %s);\n", keyType)
	cmd.Appendf("MERGE INTO %s AS t\nUSING (VALUES\n", TableReference(schemaName, tableName))
	for ri, row := range rows {
		cmd.Append("(")
		for ci, col := range columns {
			if ci > 0 {
				cmd.Append(", ")
			}
			value, _ := row.Get(col)
			if vectorCols[col] {
				cmd.Append("CAST(")
				cmd.AddParameter(col, value)
				cmd.Appendf(" AS %s)", vectorColumnType(vectorDims[col]))
			} else {
				cmd.AddParameter(col, value)
			}
		}
		if ri < len(rows)-1 {
			cmd.Append("),\n")
		} else {
			cmd.Append(")")
		}
	}
	cmd.Append(") AS s (")
	cmd.AppendList(quoted)
	cmd.Append(")\n")

	key := QuoteIdentifier(model.Key().StorageName)
	cmd.Appendf("ON (t.%s = s.%s)\n", key, key)
	if len(columns) > 1 {
		cmd.Append("WHEN MATCHED THEN\nUPDATE SET ")
		assignments := make([]string, 0, len(columns)-1)
		for _, q := range quoted[1:] {
			assignments = append(assignments, fmt.Sprintf("t.%s = s.%s", q, q))
		}
		cmd.AppendList(assignments)
		cmd.Append("\n")
	}
	cmd.Append("WHEN NOT MATCHED THEN\nINSERT (")
	cmd.AppendList(quoted)
	cmd.Append(")\nVALUES (")
	sourced := make([]string, len(quoted))
	for i, q := range quoted {
		sourced[i] = "s." + q
	}
	cmd.AppendList(sourced)
	cmd.Append(")\n")
	cmd.Appendf("OUTPUT inserted.%s INTO @UpsertedKeys (KeyColumn);\n", key)
	cmd.Append("SELECT KeyColumn FROM @UpsertedKeys;")
	return cmd, nil
}

// BuildSelect renders the read of a key batch: key and data columns, plus
// vector columns when includeVectors is set.
func BuildSelect(model *schema.Model, schemaName, tableName string, keys []interface{}, includeVectors bool) (*Command, error) {
	if len(keys) == 0 {
		return nil, ErrNoRows
	}
	columns := model.StorageNames(includeVectors)
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = QuoteIdentifier(c)
	}

	cmd := &Command{}
	cmd.Append("SELECT ")
	cmd.AppendList(quoted)
	cmd.Appendf("\nFROM %s\nWHERE %s IN (", TableReference(schemaName, tableName), QuoteIdentifier(model.Key().StorageName))
	appendKeyList(cmd, model.Key().StorageName, keys)
	cmd.Append(");")
	return cmd, nil
}

// BuildDelete renders the deletion of a key batch. Keys without a matching
// row are skipped silently.
func BuildDelete(model *schema.Model, schemaName, tableName string, keys []interface{}) (*Command, error) {
	if len(keys) == 0 {
		return nil, ErrNoRows
	}
	cmd := &Command{}
	cmd.Appendf("DELETE FROM %s\nWHERE %s IN (", TableReference(schemaName, tableName), QuoteIdentifier(model.Key().StorageName))
	appendKeyList(cmd, model.Key().StorageName, keys)
	cmd.Append(");")
	return cmd, nil
}

// BuildSearch renders the nearest-neighbor query: distance of each row's
// vector to the query vector as the score column, optional pre-rendered
// filter predicate, ordering by score in the direction the distance function
// prescribes, and windowed paging. The query vector is always the first
// bound parameter; whereParams must have been rendered against parameter
// index 1 and up.
func BuildSearch(model *schema.Model, schemaName, tableName string, vp schema.VectorProperty,
	encodedVector string, whereSQL string, whereParams []Parameter, top, skip int, includeVectors bool) (*Command, error) {

	if top <= 0 {
		return nil, fmt.Errorf("top must be positive, got %d", top)
	}
	if skip < 0 {
		return nil, fmt.Errorf("skip must not be negative, got %d", skip)
	}

	columns := model.StorageNames(includeVectors)
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = QuoteIdentifier(c)
	}

	cmd := &Command{}
	cmd.Append("SELECT ")
	cmd.AppendList(quoted)
	cmd.Appendf(",\nVECTOR_DISTANCE('%s', %s, CAST(", vp.Distance, QuoteIdentifier(vp.StorageName))
	cmd.AddParameter(vp.StorageName, encodedVector)
	cmd.Appendf(" AS %s)) AS %s\n", vectorColumnType(vp.Dimensions), QuoteIdentifier(ScoreColumn))
	cmd.Appendf("FROM %s\n", TableReference(schemaName, tableName))
	if whereSQL != "" {
		cmd.Appendf("WHERE %s\n", whereSQL)
		for _, p := range whereParams {
			cmd.Bind(p)
		}
	}
	direction := "DESC"
	if vp.Distance.Ascending() {
		direction = "ASC"
	}
	cmd.Appendf("ORDER BY %s %s\n", QuoteIdentifier(ScoreColumn), direction)
	cmd.Appendf("OFFSET %d ROWS FETCH NEXT %d ROWS ONLY;", skip, top)
	return cmd, nil
}

func appendKeyList(cmd *Command, keyStorageName string, keys []interface{}) {
	for i, key := range keys {
		if i > 0 {
			cmd.Append(", ")
		}
		cmd.AddParameter(keyStorageName, key)
	}
}

func escapeSingleQuotes(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
