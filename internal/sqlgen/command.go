// Package sqlgen assembles T-SQL statements and their bound parameters for
// the vector store. Statement text only ever contains identifiers quoted by
// this package and named parameter placeholders; all values travel as
// parameters, with the few documented inline exceptions handled by the
// filter translator.
package sqlgen

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const (
	// MaxParameters is the hard per-statement parameter limit of the
	// target database.
	MaxParameters = 2100

	// ParameterBudget is the default per-statement budget used for
	// chunking, kept below MaxParameters to leave headroom.
	ParameterBudget = 2000

	// ScoreColumn is the alias of the computed distance column in search
	// results.
	ScoreColumn = "_score"
)

// ErrNoRows is returned by builders handed an empty key or record batch.
// Callers treat it as a no-op rather than a failure.
var ErrNoRows = errors.New("sqlgen: no rows to build a statement for")

// Parameter is a named bound value.
type Parameter struct {
	Name  string
	Value interface{}
}

// Command accumulates statement text and bound parameters. The zero value is
// ready to use.
type Command struct {
	text   strings.Builder
	params []Parameter
	next   int
}

// Append appends raw statement text.
func (c *Command) Append(s string) {
	c.text.WriteString(s)
}

// Appendf appends formatted statement text.
func (c *Command) Appendf(format string, args ...interface{}) {
	fmt.Fprintf(&c.text, format, args...)
}

// AppendList appends items joined by ", ".
func (c *Command) AppendList(items []string) {
	c.Append(strings.Join(items, ", "))
}

// AddParameter binds value under a name derived from storageName and the
// running parameter index, appends the placeholder to the statement text and
// returns the parameter name.
func (c *Command) AddParameter(storageName string, value interface{}) string {
	name := ParameterName(storageName, c.next)
	c.next++
	c.params = append(c.params, Parameter{Name: name, Value: value})
	c.Append("@" + name)
	return name
}

// Bind attaches an externally named parameter without touching the statement
// text. Used for fragments whose placeholders were rendered elsewhere.
func (c *Command) Bind(p Parameter) {
	c.params = append(c.params, p)
	c.next++
}

// NextIndex returns the index the next parameter will receive.
func (c *Command) NextIndex() int { return c.next }

// SQL returns the accumulated statement text.
func (c *Command) SQL() string { return c.text.String() }

// Parameters returns the bound parameters in bind order.
func (c *Command) Parameters() []Parameter { return c.params }

// Args returns the parameters as driver arguments.
func (c *Command) Args() []interface{} {
	args := make([]interface{}, len(c.params))
	for i, p := range c.params {
		args[i] = sql.Named(p.Name, p.Value)
	}
	return args
}

// QuoteIdentifier renders an identifier in bracket quoting, doubling any
// closing bracket inside the name.
func QuoteIdentifier(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// TableReference renders a schema-qualified, quoted table reference.
func TableReference(schemaName, tableName string) string {
	return QuoteIdentifier(schemaName) + "." + QuoteIdentifier(tableName)
}

// SplitCollectionName splits a collection name of the form "schema.table" on
// the first dot. Names without a dot land in defaultSchema.
func SplitCollectionName(name, defaultSchema string) (schemaName, tableName string) {
	if i := strings.Index(name, "."); i >= 0 {
		return name[:i], name[i+1:]
	}
	return defaultSchema, name
}

// ParameterName derives a stable parameter name from a storage column name
// and a per-statement index. Only the leading run of ASCII letters of the
// column name is kept so arbitrary column names cannot produce invalid
// parameter identifiers.
func ParameterName(storageName string, index int) string {
	var b strings.Builder
	for _, r := range storageName {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			break
		}
		b.WriteRune(r)
	}
	prefix := b.String()
	if prefix == "" {
		prefix = "p"
	}
	return fmt.Sprintf("%s_%d", prefix, index)
}
