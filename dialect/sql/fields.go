package sql

// This file provides the package-level Field* helpers referenced by the
// generic field wrappers in predicate.go (StringField, IntField, etc). Each
// helper closes over a column name and, when invoked against a concrete
// Selector, qualifies it via Selector.C before delegating to the matching
// Predicate constructor - so generated predicate.User/predicate.Cake
// functions read naturally as func(*sql.Selector) regardless of the
// underlying entity's table alias.

// FieldEQ returns a predicate asserting that column name equals v.
func FieldEQ[T any](name string, v T) func(*Selector) {
	return func(s *Selector) { s.Where(EQ(s.C(name), v)) }
}

// FieldNEQ returns a predicate asserting that column name does not equal v.
func FieldNEQ[T any](name string, v T) func(*Selector) {
	return func(s *Selector) { s.Where(NEQ(s.C(name), v)) }
}

// FieldGT returns a predicate asserting that column name is greater than v.
func FieldGT[T any](name string, v T) func(*Selector) {
	return func(s *Selector) { s.Where(GT(s.C(name), v)) }
}

// FieldGTE returns a predicate asserting that column name is greater than or equal to v.
func FieldGTE[T any](name string, v T) func(*Selector) {
	return func(s *Selector) { s.Where(GTE(s.C(name), v)) }
}

// FieldLT returns a predicate asserting that column name is less than v.
func FieldLT[T any](name string, v T) func(*Selector) {
	return func(s *Selector) { s.Where(LT(s.C(name), v)) }
}

// FieldLTE returns a predicate asserting that column name is less than or equal to v.
func FieldLTE[T any](name string, v T) func(*Selector) {
	return func(s *Selector) { s.Where(LTE(s.C(name), v)) }
}

// FieldIn returns a predicate asserting that column name is one of vs.
func FieldIn[T any](name string, vs ...T) func(*Selector) {
	return FieldInGeneric(name, vs...)
}

// FieldNotIn returns a predicate asserting that column name is none of vs.
func FieldNotIn[T any](name string, vs ...T) func(*Selector) {
	return FieldNotInGeneric(name, vs...)
}

// FieldContains returns a predicate asserting that column name contains v as a substring.
func FieldContains(name, v string) func(*Selector) {
	return func(s *Selector) { s.Where(Contains(s.C(name), v)) }
}

// FieldContainsFold is the case-insensitive variant of FieldContains.
func FieldContainsFold(name, v string) func(*Selector) {
	return func(s *Selector) { s.Where(ContainsFold(s.C(name), v)) }
}

// FieldHasPrefix returns a predicate asserting that column name starts with v.
func FieldHasPrefix(name, v string) func(*Selector) {
	return func(s *Selector) { s.Where(HasPrefix(s.C(name), v)) }
}

// FieldHasSuffix returns a predicate asserting that column name ends with v.
func FieldHasSuffix(name, v string) func(*Selector) {
	return func(s *Selector) { s.Where(HasSuffix(s.C(name), v)) }
}

// FieldEqualFold returns a case-insensitive equality predicate.
func FieldEqualFold(name, v string) func(*Selector) {
	return func(s *Selector) { s.Where(EqualFold(s.C(name), v)) }
}

// FieldIsNull returns a predicate asserting that column name is NULL.
func FieldIsNull(name string) func(*Selector) {
	return func(s *Selector) { s.Where(IsNull(s.C(name))) }
}

// FieldNotNull returns a predicate asserting that column name is not NULL.
func FieldNotNull(name string) func(*Selector) {
	return func(s *Selector) { s.Where(NotNull(s.C(name))) }
}
