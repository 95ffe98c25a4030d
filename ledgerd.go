// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"

	"github.com/ledgerd/ledgerd/internal/progresslog"
	"github.com/ledgerd/ledgerd/internal/version"
	"github.com/ledgerd/ledgerd/mining"
	"github.com/ledgerd/ledgerd/wire"
)

// newCPUMiner returns a CPU miner for the provided chain that pays to the
// configured mining addresses in turn and logs the progress of the generated
// blocks.
func newCPUMiner(cfg *config, chain mining.Chain) (*mining.CPUMiner, error) {
	payScripts := make([][]byte, 0, len(cfg.miningAddrs))
	for _, addr := range cfg.miningAddrs {
		script, err := addr.PayToAddrScript()
		if err != nil {
			return nil, err
		}
		payScripts = append(payScripts, script)
	}

	progress := progresslog.New("Generated", ledgerdLog)
	return mining.NewCPUMiner(&mining.CPUMinerConfig{
		ChainParams:  cfg.params,
		Chain:        chain,
		PayScripts:   payScripts,
		BlockMaxSize: int(cfg.BlockMaxSize),
		BlockConnected: func(block *wire.MsgBlock) {
			progress.LogProgress(block, false)
		},
	}), nil
}

// ledgerdMain is the real main function for ledgerd.  It is necessary to work
// around the fact that deferred functions do not run when os.Exit() is called.
func ledgerdMain() error {
	// Load configuration and parse command line.  This function also
	// initializes logging and configures it accordingly.
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	cfg, _, err := loadConfig(appName, os.Args[1:])
	if err != nil {
		usageMessage := fmt.Sprintf("Use %s -h to show usage", appName)
		fmt.Fprintln(os.Stderr, err)
		var e errSuppressUsage
		if !errors.As(err, &e) {
			fmt.Fprintln(os.Stderr, usageMessage)
		}
		return err
	}
	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	// Get a context that will be canceled when a shutdown signal has been
	// triggered from an OS signal such as SIGINT (Ctrl+C).
	ctx := shutdownListener()
	defer ledgerdLog.Info("Shutdown complete")

	// Show version and home dir at startup.
	ledgerdLog.Infof("Version %s (Go version %s %s/%s)", version.String(),
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
	ledgerdLog.Infof("Home dir: %s", cfg.HomeDir)
	ledgerdLog.Infof("Active network: %s", cfg.params.Name)
	if cfg.NoFileLogging {
		ledgerdLog.Info("File logging disabled")
	}

	// Enable http profile server if requested.
	var profiler profileServer
	defer profiler.Stop()
	if cfg.Profile != "" {
		if err := profiler.Start(cfg.Profile); err != nil {
			ledgerdLog.Warnf("unable to start profile server: %v", err)
			return err
		}
	}

	// Write cpu profile if requested.
	if cfg.CPUProfile != "" {
		f, err := os.Create(cfg.CPUProfile)
		if err != nil {
			ledgerdLog.Errorf("Unable to create cpu profile: %v", err)
			return err
		}
		pprof.StartCPUProfile(f)
		defer f.Close()
		defer pprof.StopCPUProfile()
	}

	// Write mem profile if requested.
	if cfg.MemProfile != "" {
		f, err := os.Create(cfg.MemProfile)
		if err != nil {
			ledgerdLog.Errorf("Unable to create mem profile: %v", err)
			return err
		}
		defer f.Close()
		defer pprof.WriteHeapProfile(f)
	}

	// Return now if a shutdown signal was triggered.
	if shutdownRequested(ctx) {
		return nil
	}

	// Load the block database.
	db, err := loadBlockDB(cfg)
	if err != nil {
		ledgerdLog.Errorf("%v", err)
		return err
	}
	defer func() {
		// Ensure the database is sync'd and closed on shutdown.
		ledgerdLog.Infof("Gracefully shutting down the block database...")
		db.Close()
	}()

	// Return now if a shutdown signal was triggered.
	if shutdownRequested(ctx) {
		return nil
	}

	// Load the chain, starting a new one when the database is empty.
	chain, err := loadBlockChain(ctx, cfg, db)
	if err != nil {
		ledgerdLog.Errorf("Unable to load the block chain: %v", err)
		return err
	}

	if !cfg.Generate {
		// Block until the context is cancelled which happens when the
		// interrupt signal is received.
		<-ctx.Done()
		return nil
	}

	miner, err := newCPUMiner(cfg, chain)
	if err != nil {
		ledgerdLog.Errorf("Unable to create the CPU miner: %v", err)
		return err
	}
	if cfg.NumBlocks == 0 {
		if err := miner.Run(ctx); err != nil {
			ledgerdLog.Errorf("CPU miner failed: %v", err)
			return err
		}
		return nil
	}

	hashes, err := miner.GenerateNBlocks(ctx, cfg.NumBlocks)
	if err != nil && !shutdownRequested(ctx) {
		ledgerdLog.Errorf("Unable to generate blocks: %v", err)
		return err
	}
	best := chain.BestSnapshot()
	ledgerdLog.Infof("Generated %d blocks, best block %v (height %d)",
		len(hashes), best.Hash, best.Height)
	return nil
}

func main() {
	// Work around defer not working after os.Exit()
	if err := ledgerdMain(); err != nil {
		os.Exit(1)
	}
}
