package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/hetulpatel/LiveEdge/internal/config"
	"github.com/hetulpatel/LiveEdge/internal/logging"
	"github.com/hetulpatel/LiveEdge/internal/storage/sqlite"
)

func main() {
	config.LoadDotEnv()
	logging.InitFromEnv()

	limit := flag.Int("n", 20, "number of recent relay calls to list")
	clearCalls := flag.Bool("clear", false, "delete all audited relay calls")
	drop := flag.Bool("drop", false, "drop the relay_calls table")
	flag.Parse()

	cfg, err := config.LoadRelay()
	if err != nil {
		logging.Fatalf("[relay-audit] load config: %v", err)
	}
	store, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		logging.Fatalf("[relay-audit] open sqlite: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch {
	case *drop:
		if err := store.DropTables(ctx); err != nil {
			logging.Fatalf("[relay-audit] drop tables: %v", err)
		}
		logging.Infof("[relay-audit] relay_calls dropped at %s", store.Path())
		return
	case *clearCalls:
		if err := store.ClearTables(ctx); err != nil {
			logging.Fatalf("[relay-audit] clear tables: %v", err)
		}
		logging.Infof("[relay-audit] relay_calls cleared at %s", store.Path())
		return
	}

	calls, err := store.RecentRelayCalls(ctx, *limit)
	if err != nil {
		logging.Fatalf("[relay-audit] query: %v", err)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tPROVIDER\tTYPE\tSTATUS\tCACHED\tSEARCHES\tLATENCY\tPROMPT\tERROR")
	for _, c := range calls {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%t\t%d\t%s\t%d\t%s\n",
			c.CreatedAt.Local().Format(time.DateTime), c.Provider, c.ScanType, c.Status, c.Cached,
			c.SearchCount, c.Latency.Round(time.Millisecond), c.PromptChars, c.Error)
	}
	w.Flush()
}
