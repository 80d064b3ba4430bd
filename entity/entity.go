package entity

import (
	"fmt"

	"github.com/go-openapi/inflect"
)

// Entity is the reflective description of a single table: its columns,
// primary key, and the relations it participates in. The query builder, the
// consolidation/loader algorithms, and ActiveModel all operate purely off
// this metadata - there is no generated per-entity Go type underneath it.
type Entity struct {
	Name    string
	Table   string
	Schema  string
	columns []Column
	colIdx  map[string]int
	pk      []string
	rels    []Relation
	relIdx  map[string]int
}

// New returns a new, empty Entity for the given logical name and table.
func New(name, table string) *Entity {
	return &Entity{
		Name:   name,
		Table:  table,
		colIdx: make(map[string]int),
		relIdx: make(map[string]int),
	}
}

// NewFromName returns a new, empty Entity whose table name is derived from
// name by the conventional Go-struct-to-SQL-table mapping: underscored and
// pluralized, e.g. "OrderItem" becomes "order_items". Use New directly when
// the table name doesn't follow this convention.
func NewFromName(name string) *Entity {
	return New(name, inflect.Underscore(inflect.Pluralize(name)))
}

// WithSchema sets the entity's schema/database qualifier.
func (e *Entity) WithSchema(schema string) *Entity {
	e.Schema = schema
	return e
}

// AddColumn appends a column definition. Panics on a duplicate name, since
// this is a programming error surfaced at entity-declaration time, not at runtime.
func (e *Entity) AddColumn(c Column) *Entity {
	if _, ok := e.colIdx[c.Name]; ok {
		panic(fmt.Sprintf("entity: %s: duplicate column %q", e.Name, c.Name))
	}
	e.colIdx[c.Name] = len(e.columns)
	e.columns = append(e.columns, c)
	return e
}

// PrimaryKey sets the primary key column names, in declared order. The
// number of columns given is the primary key's arity: 1 (unary), 2 (binary,
// the common case for junction tables), or N, each of which the
// consolidation and loader algorithms specialize for.
func (e *Entity) PrimaryKey(columns ...string) *Entity {
	e.pk = columns
	return e
}

// AddRelation appends a relation definition.
func (e *Entity) AddRelation(r Relation) *Entity {
	if _, ok := e.relIdx[r.Name]; ok {
		panic(fmt.Sprintf("entity: %s: duplicate relation %q", e.Name, r.Name))
	}
	e.relIdx[r.Name] = len(e.rels)
	e.rels = append(e.rels, r)
	return e
}

// Columns returns the entity's columns in declared order.
func (e *Entity) Columns() []Column { return e.columns }

// Column returns the column with the given name, or false if absent.
func (e *Entity) Column(name string) (Column, bool) {
	i, ok := e.colIdx[name]
	if !ok {
		return Column{}, false
	}
	return e.columns[i], true
}

// PrimaryKeyColumns returns the primary key column names.
func (e *Entity) PrimaryKeyColumns() []string { return e.pk }

// PrimaryKeyArity returns the number of columns making up the primary key.
func (e *Entity) PrimaryKeyArity() int { return len(e.pk) }

// Relations returns the entity's relations in declared order.
func (e *Entity) Relations() []Relation { return e.rels }

// Relation returns the relation with the given name, or false if absent.
func (e *Entity) Relation(name string) (Relation, bool) {
	i, ok := e.relIdx[name]
	if !ok {
		return Relation{}, false
	}
	return e.rels[i], true
}

// ColumnNames returns the names of all columns, in declared order.
func (e *Entity) ColumnNames() []string {
	names := make([]string, len(e.columns))
	for i, c := range e.columns {
		names[i] = c.Name
	}
	return names
}

// Validate checks structural invariants: a non-empty table name, a
// non-empty primary key, and that every referenced column actually exists.
func (e *Entity) Validate() error {
	if e.Table == "" {
		return fmt.Errorf("entity %s: missing table name", e.Name)
	}
	if len(e.pk) == 0 {
		return fmt.Errorf("entity %s: missing primary key", e.Name)
	}
	for _, pk := range e.pk {
		if _, ok := e.colIdx[pk]; !ok {
			return fmt.Errorf("entity %s: primary key column %q not declared", e.Name, pk)
		}
	}
	for _, r := range e.rels {
		for _, c := range r.FromColumns {
			if _, ok := e.colIdx[c]; !ok {
				return fmt.Errorf("entity %s: relation %s: column %q not declared", e.Name, r.Name, c)
			}
		}
	}
	return nil
}

// Model is implemented by the Go struct bound to an Entity's rows.
// Concrete model types are plain structs with `sql:"column_name"` tags
// (consumed by dialect/sql.ScanSlice); Model only needs to name its table
// so generic ActiveModel/query code can look up the right Entity.
type Model interface {
	TableName() string
}

// Registry is a lookup of entities by name, populated once at init time by
// the package that declares a set of related entities.
type Registry struct {
	entities map[string]*Entity
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entities: make(map[string]*Entity)}
}

// Register adds e to the registry, after validating it. Returns an error on
// validation failure or on a duplicate name.
func (r *Registry) Register(e *Entity) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if _, ok := r.entities[e.Name]; ok {
		return fmt.Errorf("entity registry: duplicate entity %q", e.Name)
	}
	r.entities[e.Name] = e
	return nil
}

// MustRegister is Register, panicking on error, for use in package-level
// var initialization blocks.
func (r *Registry) MustRegister(e *Entity) *Entity {
	if err := r.Register(e); err != nil {
		panic(err)
	}
	return e
}

// Get returns the entity registered under name, or false.
func (r *Registry) Get(name string) (*Entity, bool) {
	e, ok := r.entities[name]
	return e, ok
}
