package metadata

import (
	"fmt"
	"strings"

	"github.com/joeandaverde/sqlitepeek/internal/dberr"
)

// ColumnDefinition is one column of a CREATE TABLE statement, in the
// order declared.
type ColumnDefinition struct {
	Name       string
	Type       string
	PrimaryKey bool
}

// ParseCreateTable parses a stored `CREATE TABLE <ident> (<col_def>, ...)`
// string into its column definitions, in declared order. Keywords are
// matched case-insensitively; `"`-quoted identifiers are supported.
func ParseCreateTable(sql string) ([]ColumnDefinition, error) {
	toks := tokenizeDDL(sql)
	if len(toks) < 4 || !eqFold(toks[0], "create") || !eqFold(toks[1], "table") {
		return nil, fmt.Errorf("not a CREATE TABLE statement: %w", dberr.ErrParse)
	}

	// toks[2] is the table name; find the opening paren that follows it.
	open := -1
	for i := 3; i < len(toks); i++ {
		if toks[i] == "(" {
			open = i
			break
		}
	}
	if open == -1 {
		return nil, fmt.Errorf("missing column list: %w", dberr.ErrParse)
	}

	close := matchingParen(toks, open)
	if close == -1 {
		return nil, fmt.Errorf("unbalanced parens: %w", dberr.ErrParse)
	}

	segments := splitTopLevel(toks[open+1:close])
	var cols []ColumnDefinition
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		cols = append(cols, columnDefFromTokens(seg))
	}

	return cols, nil
}

func columnDefFromTokens(toks []string) ColumnDefinition {
	col := ColumnDefinition{Name: toks[0]}
	rest := toks[1:]

	for i := 0; i < len(rest); i++ {
		if eqFold(rest[i], "primary") && i+1 < len(rest) && eqFold(rest[i+1], "key") {
			col.PrimaryKey = true
			continue
		}
		if eqFold(rest[i], "key") || eqFold(rest[i], "autoincrement") || eqFold(rest[i], "not") || eqFold(rest[i], "null") {
			continue
		}
		if col.Type == "" {
			col.Type = strings.ToLower(rest[i])
		}
	}

	return col
}

// ParseCreateIndex parses a stored `CREATE INDEX <ident> ON <ident>
// (<ident>)` string, returning the indexed table and column.
func ParseCreateIndex(sql string) (table string, column string, err error) {
	toks := tokenizeDDL(sql)
	if len(toks) < 4 || !eqFold(toks[0], "create") || !eqFold(toks[1], "index") {
		return "", "", fmt.Errorf("not a CREATE INDEX statement: %w", dberr.ErrParse)
	}

	i := 3
	for i < len(toks) && !eqFold(toks[i], "on") {
		i++
	}
	if i >= len(toks)-1 {
		return "", "", fmt.Errorf("missing ON clause: %w", dberr.ErrParse)
	}
	table = toks[i+1]

	open := -1
	for j := i + 2; j < len(toks); j++ {
		if toks[j] == "(" {
			open = j
			break
		}
	}
	if open == -1 || open+1 >= len(toks) {
		return "", "", fmt.Errorf("missing index column: %w", dberr.ErrParse)
	}

	return table, toks[open+1], nil
}

func eqFold(a, b string) bool {
	return strings.EqualFold(a, b)
}

func matchingParen(toks []string, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch toks[i] {
		case "(":
			depth++
		case ")":
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits toks on commas that aren't nested inside parens,
// as used to separate a CREATE TABLE's column definitions.
func splitTopLevel(toks []string) [][]string {
	var segments [][]string
	var cur []string
	depth := 0
	for _, t := range toks {
		switch {
		case t == "(":
			depth++
			cur = append(cur, t)
		case t == ")":
			depth--
			cur = append(cur, t)
		case t == "," && depth == 0:
			segments = append(segments, cur)
			cur = nil
		default:
			cur = append(cur, t)
		}
	}
	if len(cur) > 0 {
		segments = append(segments, cur)
	}
	return segments
}

// tokenizeDDL splits a DDL string into identifier/keyword tokens and the
// punctuation `(`, `)`, `,`. A double-quoted span is emitted as a single
// token with its quotes stripped.
func tokenizeDDL(s string) []string {
	var toks []string
	i, n := 0, len(s)
	for i < n {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(' || c == ')' || c == ',':
			toks = append(toks, string(c))
			i++
		case c == '"':
			j := i + 1
			for j < n && s[j] != '"' {
				j++
			}
			toks = append(toks, s[i+1:j])
			i = j + 1
		default:
			j := i
			for j < n && !strings.ContainsRune(" \t\n\r(),", rune(s[j])) {
				j++
			}
			toks = append(toks, s[i:j])
			i = j
		}
	}
	return toks
}
