// Package query parses the restricted SELECT grammar sqlitepeek
// understands: a projection, an optional COUNT(*), a single table, and an
// optional single-column equality filter.
package query

import (
	"fmt"
	"strings"

	"github.com/joeandaverde/sqlitepeek/internal/dberr"
)

// Filter is a single `col = value` equality predicate.
type Filter struct {
	Column string
	Value  string
}

// Statement is a parsed SELECT.
type Statement struct {
	CountStar bool
	Columns   []string
	Table     string
	Filter    *Filter
}

// Parse parses sql into a Statement. A statement that is not a SELECT
// fails with ErrUnsupported; a SELECT outside the restricted grammar fails
// with ErrParse.
func Parse(sql string) (*Statement, error) {
	toks := tokenize(sql)
	if len(toks) > 0 && toks[len(toks)-1] == ";" {
		toks = toks[:len(toks)-1]
	}
	if len(toks) == 0 || !eqFold(toks[0], "select") {
		return nil, fmt.Errorf("not a SELECT statement: %w", dberr.ErrUnsupported)
	}

	stmt := &Statement{}
	i := 1

	if i < len(toks) && eqFold(toks[i], "count") {
		if i+3 >= len(toks) || toks[i+1] != "(" || toks[i+2] != "*" || toks[i+3] != ")" {
			return nil, fmt.Errorf("malformed COUNT(*): %w", dberr.ErrParse)
		}
		stmt.CountStar = true
		i += 4
	} else {
		start := i
		for i < len(toks) && !eqFold(toks[i], "from") {
			i++
		}
		if i == start {
			return nil, fmt.Errorf("missing column list: %w", dberr.ErrParse)
		}
		for _, t := range toks[start:i] {
			if t == "," {
				continue
			}
			stmt.Columns = append(stmt.Columns, t)
		}
		if len(stmt.Columns) == 0 {
			return nil, fmt.Errorf("missing column list: %w", dberr.ErrParse)
		}
	}

	if i >= len(toks) || !eqFold(toks[i], "from") {
		return nil, fmt.Errorf("expected FROM: %w", dberr.ErrParse)
	}
	i++
	if i >= len(toks) {
		return nil, fmt.Errorf("missing table name: %w", dberr.ErrParse)
	}
	stmt.Table = toks[i]
	i++

	if i < len(toks) {
		if !eqFold(toks[i], "where") {
			return nil, fmt.Errorf("unexpected token %q: %w", toks[i], dberr.ErrParse)
		}
		i++
		if i+2 >= len(toks) || toks[i+1] != "=" {
			return nil, fmt.Errorf("malformed WHERE clause: %w", dberr.ErrParse)
		}
		stmt.Filter = &Filter{Column: toks[i], Value: toks[i+2]}
		i += 3
	}

	if i != len(toks) {
		return nil, fmt.Errorf("unexpected trailing input: %w", dberr.ErrParse)
	}

	return stmt, nil
}

func eqFold(a, b string) bool {
	return strings.EqualFold(a, b)
}

// tokenize splits sql into identifier/literal tokens and the punctuation
// `(`, `)`, `,`, `=`, `;`, `*`. Identifiers may be `"`-quoted; literals may be
// bare words or `'`-quoted strings, both emitted with quotes stripped.
func tokenize(sql string) []string {
	var toks []string
	i, n := 0, len(sql)
	for i < n {
		c := sql[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(' || c == ')' || c == ',' || c == '=' || c == ';' || c == '*':
			toks = append(toks, string(c))
			i++
		case c == '"' || c == '\'':
			j := i + 1
			for j < n && sql[j] != c {
				j++
			}
			toks = append(toks, sql[i+1:j])
			i = j + 1
		default:
			j := i
			for j < n && !strings.ContainsRune(" \t\n\r(),=;", rune(sql[j])) {
				j++
			}
			toks = append(toks, sql[i:j])
			i = j
		}
	}
	return toks
}
