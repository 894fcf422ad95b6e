package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCountStar(t *testing.T) {
	stmt, err := Parse("SELECT COUNT(*) FROM apples")
	require.NoError(t, err)
	require.True(t, stmt.CountStar)
	require.Equal(t, "apples", stmt.Table)
	require.Nil(t, stmt.Filter)
}

func TestParseColumnList(t *testing.T) {
	stmt, err := Parse("SELECT name, color FROM apples")
	require.NoError(t, err)
	require.Equal(t, []string{"name", "color"}, stmt.Columns)
	require.Equal(t, "apples", stmt.Table)
}

func TestParseWhereClause(t *testing.T) {
	stmt, err := Parse("SELECT name, color FROM apples WHERE color = 'Yellow'")
	require.NoError(t, err)
	require.NotNil(t, stmt.Filter)
	require.Equal(t, "color", stmt.Filter.Column)
	require.Equal(t, "Yellow", stmt.Filter.Value)
}

func TestParseTrailingSemicolon(t *testing.T) {
	stmt, err := Parse("SELECT name FROM apples;")
	require.NoError(t, err)
	require.Equal(t, []string{"name"}, stmt.Columns)
}

func TestParseBareLiteral(t *testing.T) {
	stmt, err := Parse("SELECT id FROM companies WHERE country = eritrea")
	require.NoError(t, err)
	require.Equal(t, "eritrea", stmt.Filter.Value)
}

func TestParseRejectsNonSelect(t *testing.T) {
	_, err := Parse("INSERT INTO apples VALUES (1)")
	require.Error(t, err)
}

func TestParseMalformedCount(t *testing.T) {
	_, err := Parse("SELECT COUNT(id) FROM apples")
	require.Error(t, err)
}
