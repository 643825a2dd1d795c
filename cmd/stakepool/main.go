// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// stakepool serves a staking pool ledger over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakepool/api"
	"github.com/vechain/stakepool/asset"
	"github.com/vechain/stakepool/cmd/stakepool/httpserver"
	"github.com/vechain/stakepool/eventdb"
	"github.com/vechain/stakepool/genesis"
	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/metrics"
	"github.com/vechain/stakepool/staker"
)

var (
	version       string
	gitCommit     string
	gitTag        string
	copyrightYear string

	clockCheckInterval = time.Hour

	flags = []cli.Flag{
		configFlag,
		devFlag,
		dataDirFlag,
		cacheFlag,
		apiAddrFlag,
		apiCorsFlag,
		apiTimeoutFlag,
		apiEventsLimitFlag,
		apiBacklogFlag,
		apiPprofFlag,
		apiPolicyWritesFlag,
		apiSlowQueriesThresholdFlag,
		enableAPILogsFlag,
		skipEventsFlag,
		verbosityFlag,
		jsonLogsFlag,
		enableMetricsFlag,
		metricsAddrFlag,
		enableAdminFlag,
		adminAddrFlag,
	}
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Stakepool",
		Usage:     "Staking pool ledger with time based reward emission",
		Copyright: fmt.Sprintf("2025-%s VeChain Foundation <https://vechain.org/>", copyrightYear),
		Flags:     flags,
		Action:    run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	lvl, err := readIntFromUInt64Flag(ctx.Uint64(verbosityFlag.Name))
	if err != nil {
		return errors.Wrap(err, "parse verbosity flag")
	}
	logLevel := initLogger(lvl, ctx.Bool(jsonLogsFlag.Name))
	defer func() { log.Info("exited") }()

	exitSignal := handleExitSignal()

	isDev := ctx.Bool(devFlag.Name)
	cfg, err := loadConfig(ctx.String(configFlag.Name), isDev)
	if err != nil {
		return err
	}
	id, err := cfg.ID()
	if err != nil {
		return err
	}

	var (
		mainDB      kv.StoreCloser
		eventDB     *eventdb.EventDB
		instanceDir = "Memory"
	)
	if isDev {
		mainDB = kv.NewMemLevelDB()
		if !ctx.Bool(skipEventsFlag.Name) {
			if eventDB, err = eventdb.NewMem(); err != nil {
				return err
			}
		}
	} else {
		if instanceDir, err = makeInstanceDir(ctx.String(dataDirFlag.Name), id); err != nil {
			return err
		}
		cacheMB, err := readIntFromUInt64Flag(ctx.Uint64(cacheFlag.Name))
		if err != nil {
			return errors.Wrap(err, "parse cache flag")
		}
		if mainDB, err = openMainDB(instanceDir, cacheMB); err != nil {
			return err
		}
		if !ctx.Bool(skipEventsFlag.Name) {
			if eventDB, err = openEventDB(instanceDir); err != nil {
				mainDB.Close()
				return err
			}
		}
	}
	defer func() { log.Info("closing main database..."); mainDB.Close() }()
	if eventDB != nil {
		defer func() { log.Info("closing event database..."); eventDB.Close() }()
	}

	ledger := asset.NewStore(kv.Bucket("asset").NewStore(mainDB), cfg.Pool)
	if _, err := cfg.Setup(mainDB, ledger); err != nil {
		return err
	}

	stk, err := staker.New(cfg.Pool, mainDB, ledger, func() uint64 { return uint64(time.Now().Unix()) })
	if err != nil {
		return err
	}
	if eventDB != nil {
		stk.AddSink(eventDB)
	}

	metricsURL := ""
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return fmt.Errorf("unable to start metrics server - %w", err)
		}
		metricsURL = url
		defer func() { log.Info("stopping metrics server..."); closeFunc() }()
	}

	var apiLogs atomic.Bool
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	adminURL := ""
	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc, err := httpserver.StartAdminServer(ctx.String(adminAddrFlag.Name), logLevel, &apiLogs)
		if err != nil {
			return fmt.Errorf("unable to start admin server - %w", err)
		}
		adminURL = url
		defer func() { log.Info("stopping admin server..."); closeFunc() }()
	}

	handler, closeSubs := api.New(stk, eventDB, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		EventsLimit:          ctx.Uint64(apiEventsLimitFlag.Name),
		SubscriptionBacklog:  int(min(ctx.Uint64(apiBacklogFlag.Name), 1<<20)),
		PprofOn:              ctx.Bool(apiPprofFlag.Name),
		EnableReqLogger:      &apiLogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		EnablePolicyWrites:   isDev || ctx.Bool(apiPolicyWritesFlag.Name),
	})
	defer func() { log.Info("closing subscriptions..."); closeSubs() }()

	apiURL, srvCloser, err := httpserver.StartAPIServer(
		ctx.String(apiAddrFlag.Name),
		handler,
		time.Duration(ctx.Uint64(apiTimeoutFlag.Name))*time.Millisecond,
	)
	if err != nil {
		return err
	}
	defer func() { log.Info("stopping API server..."); srvCloser() }()

	printStartupMessage(cfg, instanceDir, apiURL, metricsURL, adminURL, isDev)

	g, gctx := errgroup.WithContext(exitSignal)
	g.Go(func() error {
		return clockCheckLoop(gctx)
	})
	return g.Wait()
}

func clockCheckLoop(ctx context.Context) error {
	ticker := time.NewTicker(clockCheckInterval)
	defer ticker.Stop()

	checkClockOffset()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			checkClockOffset()
		}
	}
}

func printStartupMessage(cfg *genesis.Config, instanceDir, apiURL, metricsURL, adminURL string, isDev bool) {
	id, _ := cfg.ID()
	fmt.Printf(`Starting %v
    Pool         [ %v ]
    Genesis      [ %v ]
    Admin        [ %v ]
    Emission     [ %v, %vs ]
    Instance dir [ %v ]
    API portal   [ %v ]
    Metrics      [ %v ]
    Admin portal [ %v ]
`,
		fullVersion(),
		cfg.Pool,
		id,
		cfg.Admin,
		time.Unix(int64(cfg.EmissionStart), 0).UTC(), cfg.EmissionDuration,
		instanceDir,
		apiURL,
		orNone(metricsURL),
		orNone(adminURL),
	)
	if !isDev {
		return
	}
	fmt.Println("    Dev accounts:")
	for i, addr := range genesis.DevAccounts() {
		fmt.Printf("      #%d %v\n", i, addr)
	}
}

func orNone(s string) string {
	if s == "" {
		return "Disabled"
	}
	return s
}
