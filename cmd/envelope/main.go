package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/composition.report/internal/db"
	"github.com/banshee-data/composition.report/internal/fsutil"
	"github.com/banshee-data/composition.report/internal/monitoring"
	"github.com/banshee-data/composition.report/internal/version"
)

var (
	configFile  = flag.String("config", "", "Path to an analysis config JSON file (default: built-in defaults)")
	posFile     = flag.String("pos", "", "Path to the POS ion file")
	rrngFile    = flag.String("rrng", "", "Path to the RRNG range file")
	species     = flag.String("species", "", "Comma-separated 1-based species indices, overrides selected_species")
	dbFile      = flag.String("db", "", "Path to the SQLite result store (disabled when empty)")
	htmlFile    = flag.String("html", "", "Write the interactive HTML report to this path")
	plotsDir    = flag.String("plots", "", "Write PNG charts into this directory")
	listen      = flag.String("serve", "", "After the run, serve the report and admin routes on this address")
	showVersion = flag.Bool("version", false, "Print version information and exit")
)

var logf = monitoring.Tagged("envelope")

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("envelope"))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := options{
		ConfigPath: *configFile,
		POSPath:    *posFile,
		RRNGPath:   *rrngFile,
		Species:    *species,
		DBPath:     *dbFile,
		HTMLPath:   *htmlFile,
		PlotsDir:   *plotsDir,
	}
	out, err := run(ctx, fsutil.OSFileSystem{}, opts, os.Stdout)
	if err != nil {
		log.Fatalf("analysis failed: %v", err)
	}

	if *listen == "" {
		return
	}
	if err := serve(ctx, *listen, out, opts.DBPath); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

// serve exposes the rendered report at / and, when a result store is
// configured, the stored runs under /api/runs and the tsweb debug routes
// under /debug/.
func serve(ctx context.Context, addr string, out *outcome, dbPath string) error {
	mux := newMux(out)
	if dbPath != "" {
		store, err := db.NewDB(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.AttachAdminRoutes(mux); err != nil {
			return err
		}
		store.AttachRunRoutes(mux)
	}

	server := &http.Server{Addr: addr, Handler: mux}
	errc := make(chan error, 1)
	go func() {
		logf("serving report on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logf("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logf("HTTP server shutdown error: %v", err)
		return server.Close()
	}
	return nil
}

func newMux(out *outcome) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(out.HTML)
	})
	mux.HandleFunc("/summary", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		for _, b := range out.Collector.Texts {
			fmt.Fprintf(w, "%s\n\n%s\n", b.Title, b.Body)
		}
	})
	return mux
}
