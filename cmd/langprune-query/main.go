package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"langprune/internal/database"
	"langprune/internal/exitcodes"
)

func main() {
	dbPath := pflag.String("db", "/var/lib/langprune/history.db", "Path to prune history database")
	recent := pflag.Int("recent", 0, "Show N most recent removals")
	run := pflag.String("run", "", "Show every removal from one run ID")
	entry := pflag.String("entry", "", "Filter by entry name (SQL LIKE syntax, e.g. 'fr%')")
	stats := pflag.Bool("stats", false, "Show removal statistics")
	days := pflag.Int("days", 30, "Number of days for statistics")
	prune := pflag.Int("prune-older-than", 0, "Delete history rows older than N days")
	jsonOutput := pflag.Bool("json", false, "Output in JSON format")
	pflag.Parse()

	db, err := database.NewPruneDB(*dbPath)
	if err != nil {
		log.Fatalf("ERROR: Failed to open database %s: %v", *dbPath, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("ERROR: Failed to close database: %v", err)
		}
	}()

	switch {
	case *stats:
		showStats(db, *days, *jsonOutput)
	case *recent > 0:
		records, err := db.Recent(*recent)
		printOrFail(records, err, *jsonOutput)
	case *run != "":
		records, err := db.ByRun(*run)
		printOrFail(records, err, *jsonOutput)
	case *entry != "":
		records, err := db.ByEntry(*entry)
		printOrFail(records, err, *jsonOutput)
	case *prune > 0:
		n, err := db.DeleteOldRecords(*prune)
		if err != nil {
			log.Fatalf("ERROR: Failed to delete old records: %v", err)
		}
		if err := db.Vacuum(); err != nil {
			log.Printf("ERROR: Failed to vacuum database: %v", err)
		}
		fmt.Printf("Deleted %d records older than %d days\n", n, *prune)
	default:
		pflag.Usage()
		fmt.Println("\nExamples:")
		fmt.Println("  langprune-query --recent 10        # Show 10 most recent removals")
		fmt.Println("  langprune-query --stats            # Show removal statistics")
		fmt.Println("  langprune-query --entry 'fr%'      # Show removals of French locales")
		fmt.Println("  langprune-query --run <id>         # Show one run")
		os.Exit(exitcodes.InvalidConfig)
	}
}

func showStats(db *database.PruneDB, days int, jsonOutput bool) {
	stats, err := db.GetStats(days)
	if err != nil {
		log.Fatalf("ERROR: Failed to get statistics: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Prune Statistics (Last %d days)\n", days)
	fmt.Printf("Period: %s to %s\n\n", stats.StartDate.Format("2006-01-02"), stats.EndDate.Format("2006-01-02"))
	fmt.Printf("Runs:            %d\n", stats.Runs)
	fmt.Printf("Removed:         %d\n", stats.TotalDeleted)
	fmt.Printf("Dry-run planned: %d\n", stats.TotalDryRun)
	fmt.Printf("Errors:          %d\n\n", stats.TotalErrors)

	printCounts("By Platform:", stats.ByPlatform)
	printCounts("Most Removed Entries:", stats.TopEntries)
}

func printCounts(title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	fmt.Println(title)
	for _, k := range keys {
		fmt.Printf("  %-20s %d\n", k, counts[k])
	}
	fmt.Println()
}

func printOrFail(records []database.Record, err error, jsonOutput bool) {
	if err != nil {
		log.Fatalf("ERROR: Query failed: %v", err)
	}

	if jsonOutput {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return
	}

	if len(records) == 0 {
		fmt.Println("No records found")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTimestamp\tRun\tAction\tPlatform\tEntry\tDir\tError")
	_, _ = fmt.Fprintln(w, "--\t---------\t---\t------\t--------\t-----\t---\t-----")
	for _, r := range records {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Timestamp.Format("2006-01-02 15:04:05"), r.RunID, r.Action,
			r.Platform, r.Entry, r.ResourceDir, r.ErrorMessage)
	}
	_ = w.Flush()
}
