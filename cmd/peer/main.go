package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/specialistvlad/flowsync/internal/app"
	"github.com/specialistvlad/flowsync/internal/cli"
	"github.com/specialistvlad/flowsync/internal/ctxlog"
	"github.com/specialistvlad/flowsync/internal/dotexport"
	"github.com/specialistvlad/flowsync/internal/graph"
	"github.com/specialistvlad/flowsync/internal/peer"
	"github.com/specialistvlad/flowsync/internal/protocol"
)

// main is the entrypoint for the headless flowsync participant.
func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, outW io.Writer, args []string) error {
	opts, shouldExit, err := cli.ParsePeer(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	logger := app.NewLogger(opts.LogLevel, opts.LogFormat, outW).With("service", "flowsync-peer")
	ctx = ctxlog.WithLogger(ctx, logger)

	dialCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	client, err := peer.Dial(dialCtx, peer.DialConfig{
		URL:                opts.URL,
		Namespace:          opts.Namespace,
		InsecureSkipVerify: opts.Insecure,
		Timeout:            opts.Timeout,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	replica := client.Replica()
	replica.Observe(func(origin peer.Origin, ev protocol.Event) {
		logger.Debug("Diagram changed.", "origin", origin.String(), "event", ev.String())
	})

	if err := client.WaitLoaded(dialCtx); err != nil {
		return fmt.Errorf("no diagram received: %w", err)
	}
	logger.Info("Diagram received.",
		"nodes", replica.Graph().NodeCount(), "links", replica.Graph().LinkCount())

	if err := act(ctx, replica, opts); err != nil {
		return err
	}

	if opts.Stay > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(opts.Stay):
		}
	}

	return save(ctx, replica.Graph(), opts)
}

// act performs the requested local actions in order.
func act(ctx context.Context, replica *peer.Replica, opts *cli.PeerOptions) error {
	logger := ctxlog.FromContext(ctx)

	if opts.LoadPath != "" {
		data, err := os.ReadFile(opts.LoadPath)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", opts.LoadPath, err)
		}
		s, err := graph.ParseSnapshot(data)
		if err != nil {
			return err
		}
		if err := replica.Load(ctx, s); err != nil {
			return err
		}
		logger.Info("Diagram loaded.", "path", opts.LoadPath, "nodes", len(s.Nodes), "links", len(s.Links))
	}

	if opts.Clear {
		if err := replica.Clear(ctx); err != nil {
			return err
		}
		logger.Info("Diagram cleared.")
	}

	for i, text := range opts.CreateNodes {
		bounds := graph.Bounds{X: 10 + float64(i)*50, Y: 10, Width: 30, Height: 30}
		id, err := replica.CreateNode(ctx, bounds, text, graph.ShapeRectangle)
		if err != nil {
			return err
		}
		logger.Info("Node created.", "id", id, "text", text)
	}
	return nil
}

// save writes the requested exports. A failed write is logged and reported
// without stopping the other one.
func save(ctx context.Context, g *graph.Graph, opts *cli.PeerOptions) error {
	logger := ctxlog.FromContext(ctx)
	var errs []error

	if opts.SavePath != "" {
		data, err := g.MarshalSnapshot()
		if err == nil {
			err = os.WriteFile(opts.SavePath, data, 0o644)
		}
		if err != nil {
			logger.Error("Failed to save diagram.", "path", opts.SavePath, "error", err)
			errs = append(errs, err)
		} else {
			logger.Info("Diagram saved.", "path", opts.SavePath)
		}
	}

	if opts.DotPath != "" {
		out, err := dotexport.Render(g.Snapshot())
		if err == nil {
			err = os.WriteFile(opts.DotPath, []byte(out), 0o644)
		}
		if err != nil {
			logger.Error("Failed to export DOT.", "path", opts.DotPath, "error", err)
			errs = append(errs, err)
		} else {
			logger.Info("DOT exported.", "path", opts.DotPath)
		}
	}

	return errors.Join(errs...)
}
