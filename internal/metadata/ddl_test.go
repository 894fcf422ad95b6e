package metadata

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCreateTable(t *testing.T) {
	sql := `CREATE TABLE apples (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL, color TEXT)`

	cols, err := ParseCreateTable(sql)
	require.NoError(t, err)
	require.Len(t, cols, 3)

	require.Equal(t, "id", cols[0].Name)
	require.True(t, cols[0].PrimaryKey)

	require.Equal(t, "name", cols[1].Name)
	require.False(t, cols[1].PrimaryKey)
	require.Equal(t, "text", cols[1].Type)

	require.Equal(t, "color", cols[2].Name)
}

func TestParseCreateTableQuotedIdentifiers(t *testing.T) {
	sql := `create table "my table" ("weird name" text)`

	cols, err := ParseCreateTable(sql)
	require.NoError(t, err)
	require.Len(t, cols, 1)
	require.Equal(t, "weird name", cols[0].Name)
}

func TestParseCreateTableRejectsOtherStatements(t *testing.T) {
	_, err := ParseCreateTable(`CREATE INDEX idx ON apples (color)`)
	require.Error(t, err)
}

func TestParseCreateIndex(t *testing.T) {
	table, column, err := ParseCreateIndex(`CREATE INDEX idx_color ON apples (color)`)
	require.NoError(t, err)
	require.Equal(t, "apples", table)
	require.Equal(t, "color", column)
}
