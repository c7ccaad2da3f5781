// Command-line entry point for the bid-package parser.
//
// Input is raw trip-schedule text (fixed-width bid package output). The
// tool reads the whole file, segments it into trips and emits JSON for the
// selected report. All subcommands default to stdin/stdout.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"bidpack_parser/internal/analysis"
	"bidpack_parser/internal/bidpack"
	"bidpack_parser/internal/heatmap"
	"bidpack_parser/internal/report"
	"bidpack_parser/internal/storage"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "bidpack_parser - commands:")
	fmt.Fprintln(w, "  analyze  - aggregate metrics (counts, credit, red-eyes, commutability)")
	fmt.Fprintln(w, "  trips    - per-trip detail records (split trips expanded)")
	fmt.Fprintln(w, "  heatmap  - per-day staffing counts for the bid month")
	fmt.Fprintln(w, "  toplegs  - busiest routes, occurrence-weighted")
	fmt.Fprintln(w, "  bases    - trip distribution per base")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  bidpack_parser <command> [-input package.txt] [-output out.json] [-pretty]")
	fmt.Fprintln(w, "                 [-base ALL|ATL|...] [-front 630] [-back 1080] [-short-commute]")
	fmt.Fprintln(w, "                 [-month 1-12|name] [-year YYYY] [-stats]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - Input is raw bid-package text, not JSON.")
	fmt.Fprintln(w, "  - trips accepts -db trips.sqlite to also store the records locally.")
	fmt.Fprintln(w, "")
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	cmd := strings.ToLower(os.Args[1])
	switch cmd {
	case "analyze", "trips", "heatmap", "toplegs", "bases":
		run(cmd, os.Args[2:])
	case "-h", "--help", "help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage(os.Stderr)
		os.Exit(2)
	}
}

func run(cmd string, args []string) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	inPath := fs.String("input", "", "Input bid-package text file (default: stdin)")
	outPath := fs.String("output", "", "Output JSON file (default: stdout)")
	pretty := fs.Bool("pretty", false, "Pretty-print JSON output")
	base := fs.String("base", "All Bases", "Base filter (All Bases, ATL, BOS, NYC, DTW, SLC, MSP, SEA, LAX)")
	front := fs.Int("front", 630, "Front-commutable report threshold, minutes since midnight")
	back := fs.Int("back", 1080, "Back-commutable release threshold, minutes since midnight")
	shortCommute := fs.Bool("short-commute", false, "Include 1-2 day trips in commutability figures")
	monthFlag := fs.String("month", "", "Bid month (1-12 or name, required for heatmap)")
	year := fs.Int("year", 0, "Bid year (required for heatmap)")
	limit := fs.Int("limit", 20, "Route count for toplegs")
	dbPath := fs.String("db", "", "SQLite file to store trip records (trips only)")
	showStats := fs.Bool("stats", false, "Print basic counters to stderr")
	_ = fs.Parse(args)

	text, err := readInput(*inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read input: %v\n", err)
		os.Exit(1)
	}

	opts := analysis.DefaultOptions()
	opts.BaseFilter = *base
	opts.FrontMinutes = *front
	opts.BackMinutes = *back
	opts.IncludeShortCommute = *shortCommute
	opts.BidYear = *year
	if *monthFlag != "" {
		m, ok := parseMonth(*monthFlag)
		if !ok {
			fmt.Fprintf(os.Stderr, "Invalid month: %s\n", *monthFlag)
			os.Exit(2)
		}
		opts.BidMonth = m
	}

	if cmd == "heatmap" && (opts.BidMonth == 0 || opts.BidYear == 0) {
		fmt.Fprintln(os.Stderr, "heatmap requires -month and -year")
		os.Exit(2)
	}

	var result any
	var tripCount int
	switch cmd {
	case "analyze":
		result = analysis.Analyze(text, opts)
	case "trips":
		trips := analysis.DetailedTrips(text, opts)
		tripCount = len(trips)
		if *dbPath != "" {
			if err := storeTrips(*dbPath, opts, trips); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to store trips: %v\n", err)
				os.Exit(1)
			}
		}
		result = trips
	case "heatmap":
		result = heatmap.Build(text, opts)
	case "toplegs":
		result = report.TopLegs(text, opts, *limit)
	case "bases":
		result = report.BaseDistribution(text, opts)
	}

	enc, err := marshalJSON(result, *pretty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "JSON encode error: %v\n", err)
		os.Exit(1)
	}
	if err := writeOutput(*outPath, enc); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
		os.Exit(1)
	}

	if *showStats {
		segments := len(bidpack.Segment(text))
		parsed := len(analysis.Records(text, opts))
		fmt.Fprintf(os.Stderr,
			"stats: segments=%d parsed=%d skipped(no_departure_or_filtered)=%d details=%d\n",
			segments, parsed, segments-parsed, tripCount,
		)
	}
}

func storeTrips(path string, opts analysis.Options, trips []analysis.TripDetail) error {
	db, err := storage.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.InsertDetails(opts.BidMonth, opts.BidYear, trips)
}

func readInput(path string) (string, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func marshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

func parseMonth(s string) (time.Month, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= 12 {
			return time.Month(n), true
		}
		return 0, false
	}
	name := strings.ToUpper(strings.TrimSpace(s))
	for m := time.January; m <= time.December; m++ {
		full := strings.ToUpper(m.String())
		if name == full || (len(name) == 3 && name == full[:3]) {
			return m, true
		}
	}
	return 0, false
}
