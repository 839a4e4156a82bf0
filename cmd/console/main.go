package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/liquidstate/liquidstate-engine-go/pool/manager"
	"github.com/liquidstate/liquidstate-engine-go/streams/jsonrpc/server"
	"github.com/liquidstate/liquidstate-engine-go/streams/jsonrpc/stateops"
)

type config struct {
	FeeBps   uint64
	Listen   string
	LogLevel string
}

func loadConfig() (*config, error) {
	cfg := &config{}
	flag.Uint64Var(&cfg.FeeBps, "fee", 0, "trading fee parameter in basis points, valid interval [0, 1000)")
	flag.StringVar(&cfg.Listen, "listen", "", "websocket listen address; empty runs the in-process demo session")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()
	return cfg, nil
}

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rootLogHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})
	rootLogger := slog.New(rootLogHandler)
	slog.SetDefault(rootLogger)

	prometheusRegistry := prometheus.DefaultRegisterer

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ops, err := stateops.NewStateOps(rootLogger.With("component", "stateops"), prometheusRegistry)
	if err != nil {
		return fmt.Errorf("failed to initialize state ops: %w", err)
	}

	mgr, err := manager.New(&manager.Config{
		FeeBps: cfg.FeeBps,
		Logger: rootLogger.With("component", "manager"),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize pool manager: %w", err)
	}

	svc, err := server.NewPoolService(&server.Config{
		PoolID:  1,
		Manager: mgr,
		Ops:     ops,
		Logger:  rootLogger.With("component", "pool-service"),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize pool service: %w", err)
	}

	rpcServer := rpc.NewServer()
	defer rpcServer.Stop()
	if err := svc.Register(rpcServer); err != nil {
		return fmt.Errorf("failed to register pool service: %w", err)
	}

	if cfg.Listen != "" {
		return serve(ctx, rootLogger, rpcServer, cfg.Listen)
	}
	return demo(ctx, rpcServer)
}

// serve exposes the pool service over websocket until the context is
// canceled.
func serve(ctx context.Context, logger *slog.Logger, rpcServer *rpc.Server, addr string) error {
	httpServer := &http.Server{
		Addr:    addr,
		Handler: rpcServer.WebsocketHandler([]string{"*"}),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Serving pool state stream", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// demo runs a scripted liquidity session against the in-process rpc server
// and prints the resulting balances.
func demo(ctx context.Context, rpcServer *rpc.Server) error {
	rpcClient := rpc.DialInProc(rpcServer)
	defer rpcClient.Close()

	alice := common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob := common.HexToAddress("0x00000000000000000000000000000000000000b1")

	var holdings server.HoldingsResult
	if err := rpcClient.CallContext(ctx, &holdings, "amm_faucet", alice, amount(1000), amount(1000)); err != nil {
		return err
	}
	if err := rpcClient.CallContext(ctx, &holdings, "amm_faucet", bob, amount(500), amount(500)); err != nil {
		return err
	}

	var minted hexutil.Big
	if err := rpcClient.CallContext(ctx, &minted, "amm_provide", alice, amount(100), amount(100)); err != nil {
		return err
	}
	fmt.Printf("alice provided 100/100, minted %s shares\n", minted.ToInt())

	var equivalent hexutil.Big
	if err := rpcClient.CallContext(ctx, &equivalent, "amm_equivalentToken1Estimate", amount(50)); err != nil {
		return err
	}
	fmt.Printf("depositing 50 token2 requires %s token1\n", equivalent.ToInt())

	if err := rpcClient.CallContext(ctx, &minted, "amm_provide", bob, amount(50), amount(50)); err != nil {
		return err
	}
	fmt.Printf("bob provided 50/50, minted %s shares\n", minted.ToInt())

	var estimate server.WithdrawResult
	if err := rpcClient.CallContext(ctx, &estimate, "amm_withdrawEstimate", &minted); err != nil {
		return err
	}
	fmt.Printf("burning bob's shares would release %s/%s\n", estimate.AmountToken1.ToInt(), estimate.AmountToken2.ToInt())

	var withdrawn server.WithdrawResult
	if err := rpcClient.CallContext(ctx, &withdrawn, "amm_withdraw", bob, &minted); err != nil {
		return err
	}
	fmt.Printf("bob withdrew %s/%s\n", withdrawn.AmountToken1.ToInt(), withdrawn.AmountToken2.ToInt())

	var details server.PoolDetailsResult
	if err := rpcClient.CallContext(ctx, &details, "amm_poolDetails"); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TOTAL TOKEN1\tTOTAL TOKEN2\tTOTAL SHARES\tFEE BPS")
	fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
		details.TotalToken1.ToInt(),
		details.TotalToken2.ToInt(),
		details.TotalShares.ToInt(),
		details.FeeBps,
	)
	return w.Flush()
}

func amount(v int64) *hexutil.Big {
	return (*hexutil.Big)(big.NewInt(v))
}
