// Package main provides the bidpack-feed worker.
//
// The worker subscribes to a NATS subject carrying JSON bid-package
// envelopes ({"source": "...", "fleet": "A220", "month": "January",
// "year": 2026, "text": "..."}), analyzes each package and publishes the
// aggregate result. With -store it also records the package and its
// per-trip details in PostgreSQL and ClickHouse.
//
// Usage:
//
//	bidpack_feed [options]
//
// Options:
//
//	-nats-url URL       NATS server (default: nats://127.0.0.1:4222, env: NATS_URL)
//	-subject SUBJ       Subscribe subject (default: bidpack.packages)
//	-results SUBJ       Publish subject for results (default: bidpack.results)
//	-queue NAME         Queue group (default: bidpack-workers)
//	-store              Persist packages and trip details to PostgreSQL/ClickHouse
//	-pg-* / -ch-*       Database connection settings (see -h)
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"

	"bidpack_parser/internal/analysis"
	"bidpack_parser/internal/bidpack"
	"bidpack_parser/internal/storage"
)

// feedResult is the message published for every analyzed package.
type feedResult struct {
	Source    string           `json:"source"`
	Fleet     string           `json:"fleet"`
	BidMonth  int              `json:"bid_month"`
	BidYear   int              `json:"bid_year"`
	TripCount int              `json:"trip_count"`
	Result    *analysis.Result `json:"result"`
	Error     string           `json:"error,omitempty"`
}

func main() {
	natsURL := flag.String("nats-url", envOrDefault("NATS_URL", nats.DefaultURL), "NATS server URL")
	subject := flag.String("subject", "bidpack.packages", "Subject to subscribe to")
	resultSubject := flag.String("results", "bidpack.results", "Subject to publish results to")
	queue := flag.String("queue", "bidpack-workers", "Queue group name")
	store := flag.Bool("store", false, "Persist packages and trip details to PostgreSQL/ClickHouse")

	pgHost := flag.String("pg-host", envOrDefault("POSTGRES_HOST", "localhost"), "PostgreSQL host")
	pgPort := flag.Int("pg-port", envOrDefaultInt("POSTGRES_PORT", 5432), "PostgreSQL port")
	pgUser := flag.String("pg-user", envOrDefault("POSTGRES_USER", "bidpack"), "PostgreSQL user")
	pgPassword := flag.String("pg-password", envOrDefault("POSTGRES_PASSWORD", "bidpack"), "PostgreSQL password")
	pgDB := flag.String("pg-database", envOrDefault("POSTGRES_DATABASE", "bidpack_state"), "PostgreSQL database")

	chHost := flag.String("ch-host", envOrDefault("CLICKHOUSE_HOST", "localhost"), "ClickHouse host")
	chPort := flag.Int("ch-port", envOrDefaultInt("CLICKHOUSE_PORT", 9000), "ClickHouse port")
	chUser := flag.String("ch-user", envOrDefault("CLICKHOUSE_USER", "default"), "ClickHouse user")
	chPassword := flag.String("ch-password", envOrDefault("CLICKHOUSE_PASSWORD", ""), "ClickHouse password")
	chDB := flag.String("ch-database", envOrDefault("CLICKHOUSE_DATABASE", "bidpack"), "ClickHouse database")

	flag.Parse()

	ctx := context.Background()

	var db *storage.DB
	if *store {
		cfg := storage.Config{
			ClickHouse: storage.ClickHouseConfig{
				Host: *chHost, Port: *chPort, Database: *chDB,
				User: *chUser, Password: *chPassword,
			},
			Postgres: storage.PostgresConfig{
				Host: *pgHost, Port: *pgPort, Database: *pgDB,
				User: *pgUser, Password: *pgPassword,
			},
		}
		var err error
		db, err = storage.Open(ctx, cfg)
		if err != nil {
			log.Fatalf("open databases: %v", err)
		}
		defer db.Close()
		if err := db.CreateSchemas(ctx); err != nil {
			log.Fatalf("create schemas: %v", err)
		}
		log.Printf("Storage: PostgreSQL %s:%d, ClickHouse %s:%d", *pgHost, *pgPort, *chHost, *chPort)
	}

	nc, err := nats.Connect(*natsURL,
		nats.Name("bidpack-feed"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		log.Fatalf("connect to NATS at %s: %v", *natsURL, err)
	}
	defer nc.Close()

	w := &worker{nc: nc, db: db, resultSubject: *resultSubject}

	sub, err := nc.QueueSubscribe(*subject, *queue, w.handle)
	if err != nil {
		log.Fatalf("subscribe to %s: %v", *subject, err)
	}
	log.Printf("Subscribed to %s (queue %s), publishing results to %s", *subject, *queue, *resultSubject)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Printf("Shutting down")
	_ = sub.Drain()
	_ = nc.Drain()
}

type worker struct {
	nc            *nats.Conn
	db            *storage.DB
	resultSubject string
}

// handle analyzes one incoming bid-package envelope. A malformed envelope
// is logged and dropped; a parseable package always produces a result,
// even if no trips were found.
func (w *worker) handle(msg *nats.Msg) {
	var env bidpack.Envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		log.Printf("drop message: bad envelope: %v", err)
		return
	}
	if strings.TrimSpace(env.Text) == "" {
		log.Printf("drop message from %q: empty text", env.Source)
		return
	}

	doc := env.ToDocument()
	if doc == nil {
		log.Printf("drop message from %q: empty document", env.Source)
		return
	}
	opts := analysis.DefaultOptions()
	opts.BidMonth = doc.Month
	opts.BidYear = doc.Year

	result := analysis.Analyze(doc.Text, opts)
	details := analysis.DetailedTrips(doc.Text, opts)
	log.Printf("analyzed package source=%q fleet=%q month=%d year=%d trips=%d occurrences=%d",
		env.Source, doc.Fleet, doc.Month, doc.Year, len(details), result.TotalTrips)

	out := feedResult{
		Source:    env.Source,
		Fleet:     doc.Fleet,
		BidMonth:  int(doc.Month),
		BidYear:   doc.Year,
		TripCount: len(details),
		Result:    result,
	}

	if w.db != nil {
		if err := w.persist(doc, env.Source, opts, result, details); err != nil {
			log.Printf("persist package source=%q: %v", env.Source, err)
			out.Error = err.Error()
		}
	}

	payload, err := json.Marshal(out)
	if err != nil {
		log.Printf("marshal result: %v", err)
		return
	}

	subject := w.resultSubject
	if msg.Reply != "" {
		subject = msg.Reply
	}
	if err := w.nc.Publish(subject, payload); err != nil {
		log.Printf("publish result to %s: %v", subject, err)
	}
}

func (w *worker) persist(doc *bidpack.Document, source string, opts analysis.Options, result *analysis.Result, details []analysis.TripDetail) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pkgID, err := w.db.PG.UpsertPackage(ctx, source, doc.Fleet, doc.Month, doc.Year, doc.Text)
	if err != nil {
		return err
	}
	if _, err := w.db.PG.RecordRun(ctx, pkgID, opts.BaseFilter, opts.FrontMinutes, opts.BackMinutes, result); err != nil {
		return err
	}
	if err := w.db.PG.MarkAnalyzed(ctx, pkgID, len(details)); err != nil {
		return err
	}
	return w.db.CH.InsertDetails(ctx, doc.Fleet, doc.Month, doc.Year, details)
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
