// Copyright (c) 2016-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bdb

import (
	"fmt"

	"github.com/decred/slog"
	"github.com/ledgerd/ledgerd/database"
)

var log = slog.Disabled

const (
	// DbType is the database type name for this driver.
	DbType = "bolt"
)

// parseArgs parses the arguments from the database Open/Create methods.
func parseArgs(funcName string, args ...interface{}) (string, error) {
	if len(args) != 1 {
		str := fmt.Sprintf("invalid arguments to %s.%s -- expected "+
			"database path", DbType, funcName)
		return "", database.MakeError(database.ErrInvalid, str, nil)
	}

	dbPath, ok := args[0].(string)
	if !ok || dbPath == "" {
		str := fmt.Sprintf("first argument to %s.%s is invalid -- "+
			"expected database path string", DbType, funcName)
		return "", database.MakeError(database.ErrInvalid, str, nil)
	}

	return dbPath, nil
}

func init() {
	driver := database.Driver{
		DbType: DbType,
		Create: func(args ...interface{}) (database.DB, error) {
			dbPath, err := parseArgs("Create", args...)
			if err != nil {
				return nil, err
			}
			return openDB(dbPath, true)
		},
		Open: func(args ...interface{}) (database.DB, error) {
			dbPath, err := parseArgs("Open", args...)
			if err != nil {
				return nil, err
			}
			return openDB(dbPath, false)
		},
		UseLogger: func(logger slog.Logger) {
			log = logger
		},
	}
	if err := database.RegisterDriver(driver); err != nil {
		panic(fmt.Sprintf("Failed to register database driver '%s': %v",
			DbType, err))
	}
}
