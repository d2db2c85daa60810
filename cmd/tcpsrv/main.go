package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/vctt94/threecardpoker/pkg/logging"
	"github.com/vctt94/threecardpoker/pkg/server"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		host         string
		port         int
		portFile     string
		seed         int64
		debugLevel   string
		logFile      string
		maxLogFiles  int
		healthPort   int
		writeTimeout time.Duration
		rejectNeg    bool
	)
	def := server.DefaultServerConfig()
	flag.StringVar(&host, "host", "127.0.0.1", "Host to listen on")
	flag.IntVar(&port, "port", 0, "Port to listen on (0 for random free port)")
	flag.StringVar(&portFile, "portfile", "", "If set, write selected port to this file")
	flag.Int64Var(&seed, "seed", 0, "Deterministic RNG seed for decks (0 = random)")
	flag.StringVar(&debugLevel, "debuglevel", "info", "Logging level: trace, debug, info, warn, error")
	flag.StringVar(&logFile, "logfile", "", "Path to log file (stdout only when empty)")
	flag.IntVar(&maxLogFiles, "maxlogfiles", 3, "Maximum number of rotated log files")
	flag.IntVar(&healthPort, "healthport", -1, "Port for the gRPC health endpoint (-1 = disabled, 0 = random)")
	flag.DurationVar(&writeTimeout, "writetimeout", def.WriteTimeout, "Deadline for each write to a client")
	flag.BoolVar(&rejectNeg, "rejectnegative", false, "Ignore requests carrying negative wagers")
	flag.Parse()

	logBackend, err := logging.NewLogBackend(logging.LogConfig{
		LogFile:     logFile,
		DebugLevel:  debugLevel,
		MaxLogFiles: maxLogFiles,
	})
	if err != nil {
		return fmt.Errorf("failed to init logging: %w", err)
	}
	defer logBackend.Close()
	log := logBackend.Logger("SRVR")

	if seed == 0 {
		// Allow env override for convenience
		if env := os.Getenv("POKER_SEED"); env != "" {
			if v, err := strconv.ParseInt(env, 10, 64); err == nil {
				seed = v
			}
		}
	}

	cfg := def
	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	cfg.Seed = seed
	cfg.WriteTimeout = writeTimeout
	cfg.RejectNegativeWagers = rejectNeg
	if healthPort >= 0 {
		cfg.HealthAddr = net.JoinHostPort(host, strconv.Itoa(healthPort))
	}
	cfg.OnStatus = func(line string) { log.Infof("%s", line) }

	lis, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	// Optionally write chosen port
	if portFile != "" {
		_, p, _ := net.SplitHostPort(lis.Addr().String())
		if err := os.WriteFile(portFile, []byte(p), 0600); err != nil {
			lis.Close()
			return fmt.Errorf("failed to write port file: %w", err)
		}
	}

	srv := server.NewServer(cfg, logBackend)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := srv.Serve(lis)
		if errors.Is(err, server.ErrServerClosed) {
			return nil
		}
		return err
	})

	if cfg.HealthAddr != "" {
		hl, err := net.Listen("tcp", cfg.HealthAddr)
		if err != nil {
			srv.Stop()
			return fmt.Errorf("failed to listen for health checks: %w", err)
		}
		g.Go(func() error { return srv.Health().Serve(hl) })
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Infof("Shutting down")
		srv.Stop()
		if cfg.HealthAddr != "" {
			srv.Health().Stop()
		}
		return nil
	})

	return g.Wait()
}
