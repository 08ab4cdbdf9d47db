// Package types provides domain models shared across rulequery components.
//
// Zero-dependency design: types.go, rules.go and errors.go use only the standard
// library so the translator core can be embedded without pulling in transport or
// storage deps. ID utilities in ids.go import uuid but are isolated.
package types

import "strings"

// Condition is the logical combinator of a rule group.
// Stored upper-cased once validated; raw input may use any case.
type Condition string

const (
	ConditionAnd Condition = "AND"
	ConditionOr  Condition = "OR"
)

// ParseCondition validates s case-insensitively and returns the canonical form.
func ParseCondition(s string) (Condition, error) {
	switch c := Condition(strings.ToUpper(s)); c {
	case ConditionAnd, ConditionOr:
		return c, nil
	default:
		return "", &ConditionError{Condition: s}
	}
}

// Clause names one of the three bool-query buckets.
type Clause string

const (
	ClauseMust    Clause = "must"
	ClauseMustNot Clause = "must_not"
	ClauseShould  Clause = "should"
)

// Category is the query DSL keyword that shapes a leaf clause.
type Category string

const (
	CategoryTerm     Category = "term"
	CategoryTerms    Category = "terms"
	CategoryWildcard Category = "wildcard"
	CategoryRange    Category = "range"
	CategoryExists   Category = "exists"
)

// Document is a JSON-serializable query fragment.
// Values are maps, slices, strings, numbers, bools or nil.
type Document map[string]any

// TranslationID represents a UUIDv7 identifier of one recorded translation.
type TranslationID string

// ClientID identifies the caller an API key was issued to.
type ClientID string

// Resource limits enforced by the translator.
const (
	// MaxTreeDepth bounds recursion over nested groups.
	// 32 levels is far beyond what rule-editing UIs produce.
	MaxTreeDepth = 32

	// MaxRules bounds the number of leaves accepted per request by the service.
	MaxRules = 10000

	// MaxListValues bounds in/not_in lists, after splitting.
	MaxListValues = 1024

	// MaxFieldLength bounds field names. Elasticsearch itself rejects much longer paths.
	MaxFieldLength = 256
)

// ValueType is the rule editor's declared type of a filter value (Rule.Type).
type ValueType string

const (
	ValueTypeString   ValueType = "string"
	ValueTypeInteger  ValueType = "integer"
	ValueTypeDouble   ValueType = "double"
	ValueTypeBoolean  ValueType = "boolean"
	ValueTypeDate     ValueType = "date"
	ValueTypeTime     ValueType = "time"
	ValueTypeDatetime ValueType = "datetime"
)
