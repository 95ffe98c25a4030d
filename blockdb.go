// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ledgerd/ledgerd/blockchain"
	"github.com/ledgerd/ledgerd/database"
	"github.com/ledgerd/ledgerd/mining"
	"github.com/ledgerd/ledgerd/txscript"
)

const (
	// blockDbNamePrefix is the prefix for the block database name.  The
	// database type is appended to this value to form the full block
	// database name.
	blockDbNamePrefix = "blocks"
)

// removeDB removes the database at the provided path.  The fi parameter MUST
// agree with the provided path.
func removeDB(dbPath string, fi os.FileInfo) error {
	if fi.IsDir() {
		return os.RemoveAll(dbPath)
	}

	return os.Remove(dbPath)
}

// removeRegressionDB removes the existing regression test database if running
// in regression test mode and it already exists.
func removeRegressionDB(cfg *config, dbPath string) error {
	// Don't do anything if not in regression test mode.
	if !cfg.RegNet {
		return nil
	}

	// Remove the old regression test database if it already exists.
	fi, err := os.Stat(dbPath)
	if err == nil {
		ledgerdLog.Infof("Removing regression test database from '%s'",
			dbPath)
		return removeDB(dbPath, fi)
	}

	return nil
}

// blockDbPath returns the path to the block database given a database type.
func blockDbPath(dataDir, dbType string) string {
	// The database name is based on the database type.
	dbName := blockDbNamePrefix + "_" + dbType
	if dbType == "bolt" {
		dbName = dbName + ".db"
	}
	return filepath.Join(dataDir, dbName)
}

// warnMultipleDBs shows a warning if multiple block database types are detected.
// This is not a situation most users want.  It is handy for development however
// to support multiple side-by-side databases.
func warnMultipleDBs(cfg *config) {
	var duplicateDbPaths []string
	for _, dbType := range database.SupportedDrivers() {
		if dbType == cfg.DbType {
			continue
		}

		// Store db path as a duplicate db if it exists.
		dbPath := blockDbPath(cfg.DataDir, dbType)
		if fileExists(dbPath) {
			duplicateDbPaths = append(duplicateDbPaths, dbPath)
		}
	}

	// Warn if there are extra databases.
	if len(duplicateDbPaths) > 0 {
		selectedDbPath := blockDbPath(cfg.DataDir, cfg.DbType)
		ledgerdLog.Warnf("WARNING: There are multiple block chain databases "+
			"using different database types.\nYou probably don't want to "+
			"waste disk space by having more than one.\nYour current database "+
			"is located at [%v].\nThe additional database is located at %v",
			selectedDbPath, duplicateDbPaths)
	}
}

// loadBlockDB loads (or creates when needed) the block database taking into
// account the selected database backend and returns a handle to it.  It also
// warns the user if there are multiple databases which consume space on the
// file system and ensures the regression test database is clean when in
// regression test mode.
func loadBlockDB(cfg *config) (database.DB, error) {
	warnMultipleDBs(cfg)

	dbPath := blockDbPath(cfg.DataDir, cfg.DbType)

	// The regression test is special in that it needs a clean database for
	// each run, so remove it now if it already exists.
	if err := removeRegressionDB(cfg, dbPath); err != nil {
		return nil, err
	}

	// Open the existing database or create a new one as needed.
	ledgerdLog.Infof("Loading block database from '%s'", dbPath)
	db, err := database.Open(cfg.DbType, dbPath)
	if err != nil {
		// Return the error if it's not because the database doesn't exist.
		if !errors.Is(err, database.ErrDbDoesNotExist) {
			return nil, err
		}

		// Create the data dir if it does not exist.
		if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
			return nil, err
		}
		db, err = database.Create(cfg.DbType, dbPath)
		if err != nil {
			return nil, err
		}
	}

	ledgerdLog.Info("Block database loaded")
	return db, nil
}

// loadBlockChain loads the chain stored in the provided database.  A new chain
// is started from the deterministic genesis block of the active network when
// the database is empty and the network supports block generation.
func loadBlockChain(ctx context.Context, cfg *config, db database.DB) (*blockchain.BlockChain, error) {
	chainCfg := blockchain.Config{
		DB:                   db,
		ChainParams:          cfg.params,
		SigCache:             txscript.NewSigCache(cfg.SigCacheMaxSize),
		RecentBlockCacheSize: cfg.BlockCacheSize,
	}
	chain, err := blockchain.New(ctx, &chainCfg)
	if !errors.Is(err, blockchain.ErrMissingGenesis) {
		return chain, err
	}

	// Only networks that support generation are able to produce a genesis
	// block in reasonable time.
	if !cfg.params.GenerateSupported {
		return nil, fmt.Errorf("the database does not contain a %s chain "+
			"and a new one can not be started on this network",
			cfg.params.Name)
	}
	ledgerdLog.Infof("Generating the %s genesis block", cfg.params.Name)
	genesis, err := mining.GenesisBlock(ctx, cfg.params)
	if err != nil {
		return nil, err
	}
	chainCfg.GenesisBlock = genesis
	return blockchain.New(ctx, &chainCfg)
}
