package entity

// ReferentialAction describes what happens to dependent rows when the
// referenced row is updated or deleted. Ported from the cascade-action
// vocabulary used by the project's schema-annotation layer. It is metadata
// only: Relation records it in OnDelete/OnUpdate, but neither ActiveModel
// nor the query layer acts on it, and it is not translated into FOREIGN KEY
// clauses.
type ReferentialAction uint8

const (
	// Cascade propagates the delete/update to dependent rows.
	Cascade ReferentialAction = iota
	// SetNull sets the dependent foreign key column to NULL.
	SetNull
	// Restrict refuses the operation if dependent rows exist.
	Restrict
	// SetDefault sets the dependent foreign key column to its default value.
	SetDefault
	// NoAction performs no implicit action; the same as Restrict for this
	// engine's purposes, kept distinct to mirror the SQL standard's vocabulary.
	NoAction
)

func (a ReferentialAction) String() string {
	switch a {
	case Cascade:
		return "CASCADE"
	case SetNull:
		return "SET NULL"
	case Restrict:
		return "RESTRICT"
	case SetDefault:
		return "SET DEFAULT"
	default:
		return "NO ACTION"
	}
}

// RelationKind identifies the cardinality and direction of a Relation.
type RelationKind uint8

const (
	// HasOne is the parent side of a one-to-one relation: the referenced
	// entity's primary key is stored on the *other* table.
	HasOne RelationKind = iota
	// HasMany is the parent side of a one-to-many relation.
	HasMany
	// BelongsTo is the child side of a one-to-one or one-to-many relation:
	// this entity carries the foreign key column(s).
	BelongsTo
	// ManyToMany relates two entities through a junction table.
	ManyToMany
)

// Relation describes an edge from one Entity to another.
type Relation struct {
	Name string
	Kind RelationKind

	// To is the name of the target entity.
	To string

	// From/ToColumns list the local/foreign columns the relation joins on.
	// For HasOne/HasMany, FromColumns are this entity's primary key columns
	// and ToColumns are the target's foreign key columns; for BelongsTo it
	// is the reverse.
	FromColumns []string
	ToColumns   []string

	// SelfReferencing marks a relation whose target is this same entity
	// (e.g. a category's parent_id), which forces ActiveModel's composite
	// save to use a two-pass write: insert with the self-referential column
	// NULL, then update it once the row's own key is known.
	SelfReferencing bool

	// Junction holds the join-table description for ManyToMany relations; nil otherwise.
	Junction *Junction

	OnDelete ReferentialAction
	OnUpdate ReferentialAction
}

// Junction describes the join table of a ManyToMany relation.
type Junction struct {
	Table string
	// FromColumns/ToColumns are the junction table's foreign key columns
	// pointing back at the owning entity and at Relation.To, respectively.
	FromColumns []string
	ToColumns   []string
}
