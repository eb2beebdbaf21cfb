// Package filter defines the expression tree used to restrict vector
// searches. Callers build expressions with the constructor functions and pass
// them in search options; the store translates them to a SQL predicate.
package filter

import "fmt"

// Expr is the common interface of all filter expression nodes.
type Expr interface {
	filterExpr()
}

// CompareOp is a binary comparison operator.
type CompareOp string

// Supported comparison operators.
const (
	OpEq  CompareOp = "="
	OpNe  CompareOp = "<>"
	OpGt  CompareOp = ">"
	OpGte CompareOp = ">="
	OpLt  CompareOp = "<"
	OpLte CompareOp = "<="
)

// LogicalOp joins two or more operand expressions.
type LogicalOp string

// Supported logical operators.
const (
	OpAnd LogicalOp = "AND"
	OpOr  LogicalOp = "OR"
)

// PropertyRef names a record property, by model name or storage name.
type PropertyRef struct {
	Name string
}

// Constant is a literal operand value.
type Constant struct {
	Value interface{}
}

// Comparison compares two operands, each a PropertyRef or Constant.
type Comparison struct {
	Op    CompareOp
	Left  Expr
	Right Expr
}

// Logical combines operand expressions with AND or OR.
type Logical struct {
	Op       LogicalOp
	Operands []Expr
}

// Not negates an expression.
type Not struct {
	Operand Expr
}

// In tests whether a property's value is a member of a fixed list of
// constants.
type In struct {
	Property PropertyRef
	Values   []interface{}
}

// ColumnMembership tests whether a constant is contained in a column-valued
// list. It exists so such expressions can be rejected with a precise error
// rather than silently mistranslated.
type ColumnMembership struct {
	Value    interface{}
	Property PropertyRef
}

func (PropertyRef) filterExpr()      {}
func (Constant) filterExpr()         {}
func (Comparison) filterExpr()       {}
func (Logical) filterExpr()          {}
func (Not) filterExpr()              {}
func (In) filterExpr()               {}
func (ColumnMembership) filterExpr() {}

// Prop references a property by name.
func Prop(name string) PropertyRef { return PropertyRef{Name: name} }

// Value wraps a literal constant.
func Value(v interface{}) Constant { return Constant{Value: v} }

// Eq compares a property to a constant for equality.
func Eq(property string, value interface{}) Comparison {
	return Comparison{Op: OpEq, Left: Prop(property), Right: Value(value)}
}

// Ne compares a property to a constant for inequality.
func Ne(property string, value interface{}) Comparison {
	return Comparison{Op: OpNe, Left: Prop(property), Right: Value(value)}
}

// Gt tests property > value.
func Gt(property string, value interface{}) Comparison {
	return Comparison{Op: OpGt, Left: Prop(property), Right: Value(value)}
}

// Gte tests property >= value.
func Gte(property string, value interface{}) Comparison {
	return Comparison{Op: OpGte, Left: Prop(property), Right: Value(value)}
}

// Lt tests property < value.
func Lt(property string, value interface{}) Comparison {
	return Comparison{Op: OpLt, Left: Prop(property), Right: Value(value)}
}

// Lte tests property <= value.
func Lte(property string, value interface{}) Comparison {
	return Comparison{Op: OpLte, Left: Prop(property), Right: Value(value)}
}

// And joins expressions with AND.
func And(operands ...Expr) Logical { return Logical{Op: OpAnd, Operands: operands} }

// Or joins expressions with OR.
func Or(operands ...Expr) Logical { return Logical{Op: OpOr, Operands: operands} }

// Negate wraps an expression in NOT.
func Negate(operand Expr) Not { return Not{Operand: operand} }

// InList tests membership of a property's value in values.
func InList(property string, values ...interface{}) In {
	return In{Property: Prop(property), Values: values}
}

// InColumn tests membership of value in a column-valued list.
func InColumn(value interface{}, property string) ColumnMembership {
	return ColumnMembership{Value: value, Property: Prop(property)}
}

// UnsupportedError reports a filter construct that cannot be translated to
// SQL. The whole filter is rejected; no partial predicate is ever emitted.
type UnsupportedError struct {
	Construct string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("filter construct not supported: %s", e.Construct)
}
