// Command sqlitepeek reads a SQLite database file and reports schema
// metadata or evaluates a single restricted SELECT statement against it.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/cli"
	"github.com/sirupsen/logrus"

	"flag"

	sqlitepeek "github.com/joeandaverde/sqlitepeek"
	"github.com/joeandaverde/sqlitepeek/internal/dberr"
	"github.com/joeandaverde/sqlitepeek/internal/query"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("sqlitepeek", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	ui := &cli.BasicUi{Reader: os.Stdin, Writer: os.Stdout, ErrorWriter: os.Stderr}

	rest := fs.Args()
	if len(rest) != 2 {
		ui.Error("usage: sqlitepeek <dbname> <command>")
		return 1
	}
	dbname, command := rest[0], rest[1]

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	db, err := sqlitepeek.Open(dbname, log)
	if err != nil {
		ui.Error(fmt.Sprintf("error: %v", err))
		return 1
	}
	defer db.Close()

	switch command {
	case ".dbinfo":
		info := db.Info()
		ui.Output(fmt.Sprintf("database page size: %d", info.PageSize))
		ui.Output(fmt.Sprintf("number of tables: %d", info.NumberOfTables))
		return 0
	case ".tables":
		ui.Output(strings.Join(db.Tables(), " "))
		return 0
	default:
		return runQuery(ui, db, command)
	}
}

func runQuery(ui cli.Ui, db *sqlitepeek.DB, command string) int {
	result, err := db.Query(command)
	if err != nil {
		if errors.Is(err, dberr.ErrUnknownTable) {
			if stmt, perr := query.Parse(command); perr == nil {
				ui.Error(fmt.Sprintf("error: no such table '%s'", stmt.Table))
				return 1
			}
		}
		ui.Error(fmt.Sprintf("error: %v", err))
		return 1
	}

	if result.Count != nil {
		ui.Output(fmt.Sprintf("%d", *result.Count))
		return 0
	}
	for _, row := range result.Rows {
		ui.Output(row)
	}
	return 0
}
