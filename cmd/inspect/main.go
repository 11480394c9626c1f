package main

import (
	"dm-lab/infrastructure/storage"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	flag "github.com/spf13/pflag"
)

func main() {
	_ = godotenv.Load()
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error while loading config: %v\n", err)
		os.Exit(2)
	}
	dbPath := flag.StringP("db", "d", cfg.BadgerFilepath, "Path to badger DB")
	prefix := flag.StringP("prefix", "p", "", "Keyspace to scan (msg:, contact:, user:...), all keyspaces when empty")
	limit := flag.IntP("limit", "n", 100, "Maximum rows per keyspace, 0 for no limit")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "no database path: use --db or BADGER_FILEPATH")
		os.Exit(2)
	}

	db, err := openDB(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error while opening Badger: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	prefixes := storage.Prefixes()
	if *prefix != "" {
		prefixes = []string{*prefix}
	}

	table := newTable()
	for _, p := range prefixes {
		records, err := storage.ScanRecords(db, p, *limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error while scanning %s: %v\n", p, err)
			os.Exit(1)
		}
		for _, record := range records {
			table.Append([]string{record.Key, kindLabel(record.Kind, cfg.Colours), record.At, record.Summary})
		}
	}
	table.Render()
}

func newTable() *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Timestamp", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

var kindColours = map[string]color.Color{
	storage.KindMessage: color.FgGreen,
	storage.KindContact: color.FgCyan,
	storage.KindUser:    color.FgYellow,
	storage.KindUnknown: color.FgRed,
}

func kindLabel(kind string, colours bool) string {
	c, ok := kindColours[kind]
	if !colours || !ok {
		return kind
	}
	return color.New(c, color.OpBold).Render(kind)
}

// openDB opens read-only and ignores the lock, so a running server can be inspected.
func openDB(path string) (*badger.DB, error) {
	return badger.Open(badger.DefaultOptions(path).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLogger(nil))
}
