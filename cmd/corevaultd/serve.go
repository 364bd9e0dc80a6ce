package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/corevault/corevault/internal/backup"
	"github.com/corevault/corevault/internal/enhancer"
	"github.com/corevault/corevault/internal/gateway"
	"github.com/corevault/corevault/internal/linker"
	"github.com/corevault/corevault/internal/logging"
	"github.com/corevault/corevault/internal/pathcfg"
	"github.com/corevault/corevault/internal/store"
	"github.com/corevault/corevault/internal/telemetry"
	"github.com/corevault/corevault/internal/vector"
	"github.com/corevault/corevault/internal/watchbus"
)

var (
	maxBackupsFlag int
	noVectorFlag   bool
	enhanceFlag    bool
	enhancerModel  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "run the gateway, reading requests as newline-delimited JSON on stdin",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&maxBackupsFlag, "max-backups", 10, "number of rotated snapshots to retain")
	serveCmd.Flags().BoolVar(&noVectorFlag, "no-vector", false, "disable the semantic vector index; linking falls back to keyword-only")
	serveCmd.Flags().BoolVar(&enhanceFlag, "enhance", false, "auto-fill missing memory titles/summaries via the Anthropic API (requires ANTHROPIC_API_KEY)")
	serveCmd.Flags().StringVar(&enhancerModel, "enhancer-model", "", "model name passed to the enhancer (defaults to a small Claude model)")
}

// runServe wires every subsystem together and serves gateway.Request
// objects read one-per-line from stdin, writing gateway.Response objects
// one-per-line to stdout. This is the simplest transport that exercises
// the full stack; a richer transport (unix socket, HTTP) can sit in front
// of the same Server without touching this wiring.
func runServe(cmd *cobra.Command, args []string) error {
	log := logging.New(logLevel)

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("serve: resolving working directory: %w", err)
	}
	roots, err := pathcfg.Resolve(cwd)
	if err != nil {
		return fmt.Errorf("serve: resolving data roots: %w", err)
	}

	s, err := store.Open(roots)
	if err != nil {
		return fmt.Errorf("serve: opening store: %w", err)
	}
	defer s.Close()

	var vecIndex linker.VectorIndex
	var embedIndex gateway.EmbeddingIndex
	if !noVectorFlag {
		idx, err := vector.Open(roots.DataRoot)
		if err != nil {
			log.Warn("vector index unavailable, linking falls back to keyword-only", "error", err)
		} else {
			defer idx.Close()
			vecIndex = vector.ForLinker(idx)
			embedIndex = idx
		}
	}

	l := linker.New(s, vecIndex)

	snap, err := backup.New(roots, maxBackupsFlag)
	if err != nil {
		return fmt.Errorf("serve: setting up backups: %w", err)
	}

	bus := watchbus.New()
	watcher, err := watchbus.NewWatcher(bus, roots.MemoriesRoot, roots.TasksRoot)
	if err != nil {
		return fmt.Errorf("serve: starting watcher: %w", err)
	}
	defer watcher.Close()
	go watcher.Run()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if shutdown, err := telemetry.Init(); err != nil {
		log.Warn("telemetry disabled", "error", err)
	} else {
		defer shutdown(ctx)
	}

	server := gateway.New(s, l, snap, bus)
	server.Recorder = telemetry.NewGatewayRecorder()
	server.Vector = embedIndex

	if enhanceFlag {
		e, err := enhancer.NewAnthropicEnhancer("", enhancerModel)
		if err != nil {
			log.Warn("memory title/summary enhancement disabled", "error", err)
		} else {
			server.Enhancer = e
		}
	}

	log.Info("corevaultd serving", "memories_root", roots.MemoriesRoot, "tasks_root", roots.TasksRoot)

	return serveLoop(ctx, server, log)
}

func serveLoop(ctx context.Context, server *gateway.Server, log *slog.Logger) error {
	dec := json.NewDecoder(os.Stdin)
	enc := json.NewEncoder(os.Stdout)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		var req gateway.Request
		if err := dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.Error("serve: decoding request", "error", err)
			return fmt.Errorf("serve: decoding request: %w", err)
		}

		resp := server.Dispatch(ctx, req)
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("serve: encoding response: %w", err)
		}
	}
}
