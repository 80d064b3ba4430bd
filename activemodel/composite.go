package activemodel

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/syssam/velox/dialect"
	"github.com/syssam/velox/dialect/sql"
	"github.com/syssam/velox/entity"
	"github.com/syssam/velox/value"

	veloxerr "github.com/syssam/velox"
)

// TraversalMode selects how ActiveModel.SaveComposite reconciles a declared
// child association against the database.
type TraversalMode uint8

const (
	// Unloaded children are ignored entirely during save - the association
	// wasn't fetched or assigned for this operation.
	Unloaded TraversalMode = iota
	// Append creates any child with a NotSet primary key, linking it to the
	// parent via the relation's foreign key. Existing children are left
	// untouched.
	Append
	// Replace reconciles the child set against whatever currently exists in
	// the database for this relation: children absent from the new list are
	// deleted, children with no primary key are inserted, and retained
	// children are updated. Re-saving an identical Replace list is a no-op.
	Replace
)

// Unset is an alias for Unloaded, matching the lifecycle section's name for
// a traversal mode that participates in neither read nor write.
const Unset = Unloaded

// ChildSet is one declared child association: the relation it traverses off
// the owning model's entity, the entity its children are bound to, the
// traversal mode save reconciles it under, and the desired child models.
type ChildSet struct {
	Relation entity.Relation
	Entity   *entity.Entity
	Mode     TraversalMode
	Children []*ActiveModel
}

// SetChildren declares relationName as a child association of m under the
// given traversal mode. relationName must name a HasOne/HasMany relation
// declared on m's entity; childEntity is the relation's target entity
// (this engine has no global registry to resolve entity.Relation.To from,
// so callers - which already hold the target entity to build its children -
// supply it directly).
func (m *ActiveModel) SetChildren(relationName string, mode TraversalMode, childEntity *entity.Entity, children ...*ActiveModel) error {
	rel, ok := m.entity.Relation(relationName)
	if !ok {
		return fmt.Errorf("activemodel: %s: unknown relation %q", m.entity.Name, relationName)
	}
	if rel.Kind != entity.HasOne && rel.Kind != entity.HasMany {
		return fmt.Errorf("activemodel: %s: relation %q is not a child association (kind %v)", m.entity.Name, relationName, rel.Kind)
	}
	if m.children == nil {
		m.children = make(map[string]*ChildSet)
	}
	m.children[relationName] = &ChildSet{Relation: rel, Entity: childEntity, Mode: mode, Children: children}
	return nil
}

// Children returns the models declared for relationName via SetChildren. It
// fails with a *NotLoadedError if the relation was never declared on m - the
// association exists on the entity but this particular model was never
// given data for it, as opposed to SetChildren having declared it Unloaded
// on purpose (which Children reports as an empty, nil-error slice).
func (m *ActiveModel) Children(relationName string) ([]*ActiveModel, error) {
	cs, ok := m.children[relationName]
	if !ok {
		return nil, veloxerr.NewNotLoadedError(relationName)
	}
	if cs.Mode == Unloaded {
		return nil, nil
	}
	return cs.Children, nil
}

// topologicalChildOrder returns m's declared child relation names ordered
// parents before children: self-referencing relations - whose foreign key
// can only be resolved once both sides' primary keys exist - are deferred to
// the end, since SaveComposite gives those a two-pass write. Order is
// otherwise by relation name, for determinism; non-self-referencing child
// relations never depend on one another; they only ever depend on m, which
// is always saved first.
func (m *ActiveModel) topologicalChildOrder() []string {
	names := make([]string, 0, len(m.children))
	for name := range m.children {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := m.children[names[i]].Relation, m.children[names[j]].Relation
		if ri.SelfReferencing != rj.SelfReferencing {
			return rj.SelfReferencing
		}
		return names[i] < names[j]
	})
	return names
}

// SaveComposite saves m itself, then reconciles each of its declared child
// associations in turn: Append links new children under m's now-known
// primary key, Replace reconciles the declared list against whatever rows
// currently exist for the relation, and Unloaded associations are skipped.
// Self-referencing relations get a two-pass write, so a cycle among
// not-yet-inserted rows of the same entity never blocks on an unresolved
// foreign key.
func (m *ActiveModel) SaveComposite(ctx context.Context, ex dialect.ExecQuerier, d string) error {
	if err := m.Save(ctx, ex, d); err != nil {
		return err
	}
	for _, name := range m.topologicalChildOrder() {
		cs := m.children[name]
		switch cs.Mode {
		case Unloaded:
			continue
		case Append:
			if err := m.saveAppend(ctx, ex, d, cs); err != nil {
				return fmt.Errorf("activemodel: %s: save composite: relation %q: %w", m.entity.Name, name, err)
			}
		case Replace:
			if err := m.saveReplace(ctx, ex, d, cs); err != nil {
				return fmt.Errorf("activemodel: %s: save composite: relation %q: %w", m.entity.Name, name, err)
			}
		}
	}
	return nil
}

// linkForeignKey copies parent's relation.FromColumns values onto child's
// relation.ToColumns - the foreign key wiring every child write needs
// before it can be saved.
func linkForeignKey(parent *ActiveModel, rel entity.Relation, child *ActiveModel) error {
	for i, fromCol := range rel.FromColumns {
		v, ok := parent.Get(fromCol)
		if !ok {
			return fmt.Errorf("relation %s: parent column %q is not set", rel.Name, fromCol)
		}
		if err := child.Set(rel.ToColumns[i], v); err != nil {
			return err
		}
	}
	return nil
}

func (m *ActiveModel) saveAppend(ctx context.Context, ex dialect.ExecQuerier, d string, cs *ChildSet) error {
	for _, child := range cs.Children {
		if cs.Relation.SelfReferencing {
			if err := m.saveSelfReferential(ctx, ex, d, child, cs.Relation); err != nil {
				return err
			}
			continue
		}
		if err := linkForeignKey(m, cs.Relation, child); err != nil {
			return err
		}
		if err := child.SaveComposite(ctx, ex, d); err != nil {
			return err
		}
	}
	return nil
}

// saveSelfReferential writes child without its self-referential foreign key
// set, then links and updates it in a second pass once both this row's and
// child's primary keys are final - the two-pass write a cycle through a
// self-referencing relation (e.g. reports_to) requires.
func (m *ActiveModel) saveSelfReferential(ctx context.Context, ex dialect.ExecQuerier, d string, child *ActiveModel, rel entity.Relation) error {
	for _, toCol := range rel.ToColumns {
		child.fields[toCol] = NotSet[value.Value]()
	}
	if err := child.SaveComposite(ctx, ex, d); err != nil {
		return err
	}
	if err := linkForeignKey(m, rel, child); err != nil {
		return err
	}
	return child.Update(ctx, ex, d)
}

// saveReplace reconciles cs.Children against whatever rows currently exist
// in the database for this relation: rows whose primary key isn't present
// among cs.Children are deleted, children with no primary key are inserted,
// and the rest are updated - all linked via the relation's foreign key.
func (m *ActiveModel) saveReplace(ctx context.Context, ex dialect.ExecQuerier, d string, cs *ChildSet) error {
	rel := cs.Relation
	pkCols := cs.Entity.PrimaryKeyColumns()
	if len(pkCols) == 0 {
		return fmt.Errorf("relation %s: target entity %s has no primary key", rel.Name, cs.Entity.Name)
	}

	keep := make(map[string]struct{}, len(cs.Children))
	for _, child := range cs.Children {
		if child.hasPrimaryKey() {
			k, err := pkTupleKey(child, pkCols)
			if err != nil {
				return err
			}
			keep[k] = struct{}{}
		}
	}

	fkPred, err := relationPredicate(m, rel)
	if err != nil {
		return err
	}
	existing, err := fetchPrimaryKeys(ctx, ex, d, cs.Entity, fkPred)
	if err != nil {
		return err
	}
	for _, row := range existing {
		k, err := pkValuesKey(row, pkCols)
		if err != nil {
			return err
		}
		if _, ok := keep[k]; ok {
			continue
		}
		pred, err := pkRowPredicate(row, pkCols)
		if err != nil {
			return err
		}
		db := sql.Dialect(d).Delete(cs.Entity.Table).Where(pred)
		query, args := db.Query()
		var res sql.Result
		if err := ex.Exec(ctx, query, args, &res); err != nil {
			return fmt.Errorf("relation %s: deleting stale child: %w", rel.Name, err)
		}
	}

	for _, child := range cs.Children {
		if err := linkForeignKey(m, rel, child); err != nil {
			return err
		}
		if err := child.SaveComposite(ctx, ex, d); err != nil {
			return err
		}
	}
	return nil
}

// relationPredicate builds the WHERE predicate selecting rows related to
// parent via rel: each of rel.ToColumns equal to the corresponding
// rel.FromColumns value already Set/Unchanged on parent.
func relationPredicate(parent *ActiveModel, rel entity.Relation) (*sql.Predicate, error) {
	preds := make([]*sql.Predicate, len(rel.FromColumns))
	for i, fromCol := range rel.FromColumns {
		v, ok := parent.Get(fromCol)
		if !ok {
			return nil, fmt.Errorf("relation %s: parent column %q is not set", rel.Name, fromCol)
		}
		dv, err := value.ToDriverValue(v)
		if err != nil {
			return nil, err
		}
		preds[i] = sql.EQ(rel.ToColumns[i], dv)
	}
	if len(preds) == 1 {
		return preds[0], nil
	}
	return sql.And(preds...), nil
}

// fetchPrimaryKeys runs SELECT <pk columns> FROM ent WHERE pred and returns
// each matching row's primary key values.
func fetchPrimaryKeys(ctx context.Context, ex dialect.ExecQuerier, d string, ent *entity.Entity, pred *sql.Predicate) ([]map[string]value.Value, error) {
	pkCols := ent.PrimaryKeyColumns()
	sel := sql.Dialect(d).Select(pkCols...).From(sql.Table(ent.Table)).Where(pred)
	query, args := sel.Query()
	var rows sql.Rows
	if err := ex.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("fetching existing children: %w", err)
	}
	defer rows.Close()
	var out []map[string]value.Value
	for rows.Next() {
		raws := make([]any, len(pkCols))
		dests := make([]any, len(pkCols))
		for i := range raws {
			dests[i] = &raws[i]
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, fmt.Errorf("scanning existing child key: %w", err)
		}
		row := make(map[string]value.Value, len(pkCols))
		for i, col := range pkCols {
			c, ok := ent.Column(col)
			if !ok {
				continue
			}
			v, err := value.FromDriverValue(raws[i], c.Type.Kind())
			if err != nil {
				return nil, err
			}
			row[col] = v
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// pkTupleKey renders child's primary key columns into an opaque, comparable
// string, used to match its identity against a freshly queried row without
// needing a comparable Go type for composite keys of arbitrary arity.
func pkTupleKey(m *ActiveModel, pkCols []string) (string, error) {
	var sb strings.Builder
	for _, col := range pkCols {
		v, ok := m.Get(col)
		if !ok {
			return "", fmt.Errorf("primary key column %q is not set", col)
		}
		sb.WriteString(v.String())
		sb.WriteByte(0)
	}
	return sb.String(), nil
}

func pkValuesKey(row map[string]value.Value, pkCols []string) (string, error) {
	var sb strings.Builder
	for _, col := range pkCols {
		v, ok := row[col]
		if !ok {
			return "", fmt.Errorf("primary key column %q missing from result row", col)
		}
		sb.WriteString(v.String())
		sb.WriteByte(0)
	}
	return sb.String(), nil
}

func pkRowPredicate(row map[string]value.Value, pkCols []string) (*sql.Predicate, error) {
	preds := make([]*sql.Predicate, len(pkCols))
	for i, col := range pkCols {
		dv, err := value.ToDriverValue(row[col])
		if err != nil {
			return nil, err
		}
		preds[i] = sql.EQ(col, dv)
	}
	if len(preds) == 1 {
		return preds[0], nil
	}
	return sql.And(preds...), nil
}
