// Command vaultd runs the vault server: a line-protocol TCP listener
// backed by a write-ahead log, wired together the way the teacher's
// cmd/Hermes/main.go wires store, wal and server — generalized into a
// Cobra command per the pack's CLI convention (ppriyankuu-godkv's
// cmd/client, cuemby-warren/MIcQo-gridhouse manifests).
package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"vaultd/server"
	"vaultd/store"
	"vaultd/wal"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type flags struct {
	bindAddr       string
	walPath        string
	maxConnections int
	syncEveryWrite bool
	storeMode      string
	shards         int
	logLevel       string
	metricsAddr    string
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "vaultd",
		Short: "A durable, line-protocol key-value server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(f)
		},
	}

	def := server.DefaultConfig()
	cmd.Flags().StringVar(&f.bindAddr, "bind-addr", def.BindAddr, "address to listen on")
	cmd.Flags().StringVar(&f.walPath, "wal-path", def.WALPath, "write-ahead log file path")
	cmd.Flags().IntVar(&f.maxConnections, "max-connections", 0, "cap on concurrent connections (0 = unbounded)")
	cmd.Flags().BoolVar(&f.syncEveryWrite, "sync-every-write", false, "fsync after every WAL append")
	cmd.Flags().StringVar(&f.storeMode, "store-mode", "locked", "keyspace concurrency strategy: locked, eventloop or sharded")
	cmd.Flags().IntVar(&f.shards, "shards", 16, "shard count when --store-mode=sharded")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "info", "zerolog level: debug, info, warn, error")
	cmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", "", "optional address to serve /metrics on (empty disables)")

	return cmd
}

func run(f *flags) error {
	log := newLogger(f.logLevel)

	st, err := newStore(f.storeMode, f.shards)
	if err != nil {
		return err
	}

	w, err := wal.Open(wal.Config{Path: f.walPath, Sync: syncPolicy(f.syncEveryWrite)})
	if err != nil {
		log.Error().Err(err).Str("path", f.walPath).Msg("failed to open wal")
		return err
	}
	defer w.Close()

	durable, err := store.NewDurable(st, w)
	if err != nil {
		log.Error().Err(err).Msg("wal replay failed")
		return err
	}
	log.Info().Int("keys", durable.Len()).Msg("wal replay complete")

	registry := prometheus.NewRegistry()
	srv := server.NewServer(server.Config{
		BindAddr:       f.bindAddr,
		WALPath:        f.walPath,
		MaxConnections: f.maxConnections,
	}, durable, registry, log)

	if f.metricsAddr != "" {
		go serveMetrics(f.metricsAddr, registry, log)
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errc:
		return err
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
		srv.Stop()
		err := <-errc
		// Stop itself doesn't wait for handlers to drain (spec.md
		// §4.5); the daemon, as the external caller, waits here so the
		// process doesn't exit out from under live connections.
		srv.Wait()
		return err
	}
}

func newStore(mode string, shards int) (store.Store, error) {
	switch mode {
	case "", "locked":
		return store.NewLocked(), nil
	case "eventloop":
		return store.NewEventLoop(64), nil
	case "sharded":
		return store.NewSharded(shards), nil
	default:
		return nil, &unknownStoreModeError{mode: mode}
	}
}

type unknownStoreModeError struct{ mode string }

func (e *unknownStoreModeError) Error() string {
	return "unknown --store-mode: " + e.mode
}

func syncPolicy(everyWrite bool) wal.SyncPolicy {
	if everyWrite {
		return wal.SyncEveryWrite
	}
	return wal.SyncOnFlush
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

func serveMetrics(addr string, reg *prometheus.Registry, log zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	log.Info().Str("addr", addr).Msg("serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("metrics server failed")
	}
}
