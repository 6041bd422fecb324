// Package repl implements the line-oriented operational shell: a
// bufio.Scanner loop over stdin dispatching built-in commands and
// handing everything else to the query layer as a SQL-like statement.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/arrowdb/lsmdb/pkg/catalog"
	"github.com/arrowdb/lsmdb/pkg/query"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

const helpText = `commands:
  help               show this text
  tables             list known tables
  stats [name]       show engine stats for one table, or every table
  flush              flush every table's memtable to a new SST
  exit | quit        flush everything and leave
  <sql>              run a CREATE/DROP TABLE, INSERT, UPDATE, DELETE, or SELECT statement`

// REPL runs the interactive loop against a catalog.
type REPL struct {
	catalog *catalog.Catalog
	engine  *query.Engine
	out     io.Writer
}

// New wraps a catalog with its query engine and an output writer.
func New(c *catalog.Catalog, out io.Writer) *REPL {
	return &REPL{catalog: c, engine: query.New(c), out: out}
}

// Run reads lines from in until exit/quit or EOF, dispatching each to
// a built-in command or the query engine. ctx bounds nothing on the
// engine's own synchronous calls today; it is threaded through so a
// future caller can cancel a long-running statement or backup upload
// without touching the engine's methods themselves.
func (r *REPL) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(r.out, headerStyle.Render("lsmdb — type 'help' for commands"))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "exit", "quit":
			if err := r.catalog.FlushAll(); err != nil {
				fmt.Fprintln(r.out, errorStyle.Render(err.Error()))
			}
			return nil
		case "help":
			fmt.Fprintln(r.out, helpStyle.Render(helpText))
			continue
		case "tables":
			r.printTables()
			continue
		case "flush":
			if err := r.catalog.FlushAll(); err != nil {
				fmt.Fprintln(r.out, errorStyle.Render(err.Error()))
			} else {
				fmt.Fprintln(r.out, "ok")
			}
			continue
		}

		if strings.HasPrefix(strings.ToLower(line), "stats") {
			r.printStats(strings.TrimSpace(line[len("stats"):]))
			continue
		}

		r.runStatement(line)
	}
	return scanner.Err()
}

func (r *REPL) printTables() {
	names := r.catalog.List()
	if len(names) == 0 {
		fmt.Fprintln(r.out, "(no tables)")
		return
	}
	for _, n := range names {
		fmt.Fprintln(r.out, n)
	}
}

func (r *REPL) printStats(name string) {
	names := []string{name}
	if name == "" {
		names = r.catalog.List()
	}
	for _, n := range names {
		_, eng, err := r.catalog.Open(n)
		if err != nil {
			fmt.Fprintln(r.out, errorStyle.Render(err.Error()))
			continue
		}
		stats, err := eng.Stats()
		if err != nil {
			fmt.Fprintln(r.out, errorStyle.Render(err.Error()))
			continue
		}
		fmt.Fprintf(r.out, "%s: memtable=%d sstables=%d total_records=%d\n",
			n, stats.MemtableSize, stats.SSTableCount, stats.TotalRecords)
	}
}

func (r *REPL) runStatement(stmt string) {
	res, err := r.engine.Execute(stmt)
	if err != nil {
		fmt.Fprintln(r.out, errorStyle.Render(err.Error()))
		return
	}
	if res.Message != "" {
		fmt.Fprintln(r.out, res.Message)
		return
	}
	renderTable(r.out, res.Columns, res.Rows)
}

func renderTable(out io.Writer, columns []string, rows [][]string) {
	if len(columns) > 0 {
		fmt.Fprintln(out, headerStyle.Render(strings.Join(columns, " | ")))
	}
	for _, row := range rows {
		fmt.Fprintln(out, strings.Join(row, " | "))
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "(0 rows)")
	}
}
