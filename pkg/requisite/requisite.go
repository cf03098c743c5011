// Package requisite evaluates the conditions that gate manifest entries.
//
// A requisite is a list of clauses joined by '&' or '|'. There is no
// grouping and no precedence: each operator folds the running result with
// the next clause, left to right, so "A | B & C" means "(A | B) & C".
//
// Clauses:
//
//	name           name is defined
//	!name          name is not defined
//	name:v1,v2     name is defined and equals one of the values, ignoring case
//	name:          same as name
//	!name:v1,v2    negation of the value check
//
// When name is the framework variable the values are framework
// requirements (see framework.Satisfies), evaluated even when the variable
// is not defined.
package requisite

import (
	"strings"

	"github.com/arthur-debert/deployer/pkg/constants"
	"github.com/arthur-debert/deployer/pkg/framework"
	"github.com/arthur-debert/deployer/pkg/variables"
)

const (
	opAnd = '&'
	opOr  = '|'
)

// Extract removes the <...> clause from text and returns the remaining
// text and the clause body. Without a clause the requisite is empty.
func Extract(text string) (string, string) {
	start := strings.IndexByte(text, '<')
	if start < 0 {
		return strings.TrimSpace(text), ""
	}
	end := strings.LastIndexByte(text, '>')
	if end < start {
		return strings.TrimSpace(text), ""
	}
	rest := text[:start] + text[end+1:]
	return strings.TrimSpace(rest), strings.TrimSpace(text[start+1 : end])
}

// Combine joins two requisites with '&', dropping empty ones.
func Combine(a, b string) string {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " & " + b
}

// Evaluate reports whether expr holds against lookup. An empty expression
// always holds.
func Evaluate(lookup variables.Lookup, expr string) bool {
	result := true
	first := true
	pending := byte(opAnd)

	fold := func(clause string) {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			return
		}
		value := evaluateClause(lookup, clause)
		switch {
		case first:
			result = value
			first = false
		case pending == opOr:
			result = result || value
		default:
			result = result && value
		}
	}

	start := 0
	for i := 0; i < len(expr); i++ {
		if c := expr[i]; c == opAnd || c == opOr {
			fold(expr[start:i])
			pending = c
			start = i + 1
		}
	}
	fold(expr[start:])
	return result
}

func evaluateClause(lookup variables.Lookup, clause string) bool {
	negated := strings.HasPrefix(clause, "!")
	if negated {
		clause = strings.TrimSpace(clause[1:])
	}

	name, values, hasValues := strings.Cut(clause, ":")
	name = strings.TrimSpace(name)
	values = strings.TrimSpace(values)

	matched := false
	stored, defined := lookup.Get(name)
	switch {
	case !hasValues || values == "":
		matched = defined
	case strings.EqualFold(name, constants.VarFramework):
		matched = framework.Satisfies(stored, values)
	case defined:
		matched = containsFold(values, stored)
	}

	if negated {
		return !matched
	}
	return matched
}

func containsFold(list, value string) bool {
	for _, candidate := range strings.Split(list, ",") {
		if strings.EqualFold(strings.TrimSpace(candidate), value) {
			return true
		}
	}
	return false
}
