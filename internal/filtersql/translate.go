// Package filtersql translates filter expression trees into SQL predicates.
// Translation is all or nothing: any unsupported construct fails the whole
// filter and no partial predicate escapes.
package filtersql

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rzpsarthak13/mssqlvec/internal/sqlgen"
	"github.com/rzpsarthak13/mssqlvec/pkg/filter"
	"github.com/rzpsarthak13/mssqlvec/pkg/schema"
)

// Fragment is a rendered predicate plus the parameters it binds, in
// placeholder order.
type Fragment struct {
	SQL        string
	Parameters []sqlgen.Parameter
}

// Translate renders expr against model's properties. Parameter names are
// numbered from startIndex so the fragment can share a statement with
// parameters bound elsewhere.
func Translate(model *schema.Model, expr filter.Expr, startIndex int) (*Fragment, error) {
	t := &translator{model: model, next: startIndex}
	if err := t.predicate(expr); err != nil {
		return nil, err
	}
	return &Fragment{SQL: t.sql.String(), Parameters: t.params}, nil
}

type translator struct {
	model  *schema.Model
	sql    strings.Builder
	params []sqlgen.Parameter
	next   int
}

// predicate renders expr in boolean position.
func (t *translator) predicate(expr filter.Expr) error {
	switch e := expr.(type) {
	case filter.Comparison:
		return t.comparison(e)
	case filter.Logical:
		return t.logical(e)
	case filter.Not:
		t.sql.WriteString("NOT (")
		if err := t.predicate(e.Operand); err != nil {
			return err
		}
		t.sql.WriteString(")")
		return nil
	case filter.In:
		return t.in(e)
	case filter.PropertyRef:
		// A bare property reference is only valid as a boolean column test.
		storage, typ, err := t.resolve(e.Name)
		if err != nil {
			return err
		}
		if typ != schema.TypeBool {
			return &filter.UnsupportedError{
				Construct: fmt.Sprintf("property %q of type %s used as a boolean predicate", e.Name, typ),
			}
		}
		t.sql.WriteString(sqlgen.QuoteIdentifier(storage) + " = 1")
		return nil
	case filter.ColumnMembership:
		return &filter.UnsupportedError{Construct: "membership test over a column-valued list"}
	case filter.Constant:
		return &filter.UnsupportedError{Construct: fmt.Sprintf("bare constant %v used as a predicate", e.Value)}
	case nil:
		return &filter.UnsupportedError{Construct: "nil expression"}
	default:
		return &filter.UnsupportedError{Construct: fmt.Sprintf("expression node %T", expr)}
	}
}

func (t *translator) logical(e filter.Logical) error {
	if len(e.Operands) == 0 {
		return &filter.UnsupportedError{Construct: fmt.Sprintf("%s with no operands", e.Op)}
	}
	t.sql.WriteString("(")
	for i, op := range e.Operands {
		if i > 0 {
			fmt.Fprintf(&t.sql, " %s ", e.Op)
		}
		if err := t.predicate(op); err != nil {
			return err
		}
	}
	t.sql.WriteString(")")
	return nil
}

func (t *translator) comparison(e filter.Comparison) error {
	switch e.Op {
	case filter.OpEq, filter.OpNe, filter.OpGt, filter.OpGte, filter.OpLt, filter.OpLte:
	default:
		return &filter.UnsupportedError{Construct: fmt.Sprintf("comparison operator %q", e.Op)}
	}

	// NULL comparison only makes sense as IS NULL / IS NOT NULL.
	if _, ok := nullConstant(e.Right); ok {
		return t.nullTest(e.Left, e.Op)
	}
	if _, ok := nullConstant(e.Left); ok {
		return t.nullTest(e.Right, e.Op)
	}

	if err := t.operand(e.Left, e.Right); err != nil {
		return err
	}
	fmt.Fprintf(&t.sql, " %s ", e.Op)
	return t.operand(e.Right, e.Left)
}

func nullConstant(expr filter.Expr) (filter.Constant, bool) {
	c, ok := expr.(filter.Constant)
	if ok && c.Value == nil {
		return c, true
	}
	return filter.Constant{}, false
}

func (t *translator) nullTest(other filter.Expr, op filter.CompareOp) error {
	prop, ok := other.(filter.PropertyRef)
	if !ok {
		return &filter.UnsupportedError{Construct: "NULL compared to a non-property operand"}
	}
	storage, _, err := t.resolve(prop.Name)
	if err != nil {
		return err
	}
	switch op {
	case filter.OpEq:
		t.sql.WriteString(sqlgen.QuoteIdentifier(storage) + " IS NULL")
	case filter.OpNe:
		t.sql.WriteString(sqlgen.QuoteIdentifier(storage) + " IS NOT NULL")
	default:
		return &filter.UnsupportedError{Construct: fmt.Sprintf("NULL with operator %q", op)}
	}
	return nil
}

// operand renders one side of a comparison. The opposite side supplies the
// parameter name prefix when this side is a constant.
func (t *translator) operand(expr, opposite filter.Expr) error {
	switch e := expr.(type) {
	case filter.PropertyRef:
		storage, _, err := t.resolve(e.Name)
		if err != nil {
			return err
		}
		t.sql.WriteString(sqlgen.QuoteIdentifier(storage))
		return nil
	case filter.Constant:
		return t.constant(e.Value, t.prefixFor(opposite))
	default:
		return &filter.UnsupportedError{Construct: fmt.Sprintf("comparison operand %T", expr)}
	}
}

// constant renders a literal. Booleans and timestamps are inlined in the
// forms the database compares natively; everything else binds a parameter.
func (t *translator) constant(value interface{}, prefix string) error {
	switch v := value.(type) {
	case bool:
		if v {
			t.sql.WriteString("1")
		} else {
			t.sql.WriteString("0")
		}
		return nil
	case time.Time:
		fmt.Fprintf(&t.sql, "'%s'", v.Format(time.RFC3339Nano))
		return nil
	case uuid.UUID:
		t.parameter(prefix, v.String())
		return nil
	case decimal.Decimal:
		t.parameter(prefix, v.String())
		return nil
	default:
		t.parameter(prefix, value)
		return nil
	}
}

func (t *translator) parameter(prefix string, value interface{}) {
	name := sqlgen.ParameterName(prefix, t.next)
	t.next++
	t.params = append(t.params, sqlgen.Parameter{Name: name, Value: value})
	t.sql.WriteString("@" + name)
}

func (t *translator) in(e filter.In) error {
	if len(e.Values) == 0 {
		return &filter.UnsupportedError{Construct: fmt.Sprintf("IN over property %q with no values", e.Property.Name)}
	}
	storage, _, err := t.resolve(e.Property.Name)
	if err != nil {
		return err
	}
	t.sql.WriteString(sqlgen.QuoteIdentifier(storage) + " IN (")
	for i, value := range e.Values {
		if i > 0 {
			t.sql.WriteString(", ")
		}
		if value == nil {
			return &filter.UnsupportedError{Construct: "NULL inside an IN list"}
		}
		if err := t.constant(value, storage); err != nil {
			return err
		}
	}
	t.sql.WriteString(")")
	return nil
}

// resolve maps a property name to its storage column. Vector properties
// cannot be filtered on.
func (t *translator) resolve(name string) (string, schema.PropertyType, error) {
	key := t.model.Key()
	if key.Name == name || key.StorageName == name {
		return key.StorageName, key.Type, nil
	}
	if p, ok := t.model.DataProperty(name); ok {
		return p.StorageName, p.Type, nil
	}
	if _, ok := t.model.Vector(name); ok {
		return "", schema.TypeInvalid, &filter.UnsupportedError{
			Construct: fmt.Sprintf("filtering on vector property %q", name),
		}
	}
	return "", schema.TypeInvalid, &filter.UnsupportedError{
		Construct: fmt.Sprintf("unknown property %q", name),
	}
}

func (t *translator) prefixFor(opposite filter.Expr) string {
	if p, ok := opposite.(filter.PropertyRef); ok {
		if storage, _, err := t.resolve(p.Name); err == nil {
			return storage
		}
	}
	return "p"
}
