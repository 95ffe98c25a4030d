// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2016-2025 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database_test

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/ledgerd/ledgerd/database"
	_ "github.com/ledgerd/ledgerd/database/bdb"
	_ "github.com/ledgerd/ledgerd/database/ldb"
)

// checkDbError ensures the passed error is a database.Error that wraps the
// passed error kind.
func checkDbError(t *testing.T, testName string, gotErr error, wantErr database.ErrorKind) bool {
	t.Helper()

	var dbErr database.Error
	if !errors.As(gotErr, &dbErr) {
		t.Errorf("%s: unexpected error type - got %T, want %T",
			testName, gotErr, database.Error{})
		return false
	}
	if !errors.Is(gotErr, wantErr) {
		t.Errorf("%s: unexpected error kind - got %v (%v), want %v",
			testName, dbErr.Err, dbErr.Description, wantErr)
		return false
	}

	return true
}

// TestSupportedDrivers ensures both bundled drivers register themselves.
func TestSupportedDrivers(t *testing.T) {
	got := database.SupportedDrivers()
	want := []string{"bolt", "leveldb"}
	if len(got) < len(want) {
		t.Fatalf("unexpected drivers -- got %v, want %v", got, want)
	}
	found := make(map[string]bool)
	for _, dbType := range got {
		found[dbType] = true
	}
	for _, dbType := range want {
		if !found[dbType] {
			t.Errorf("driver %q is not registered", dbType)
		}
	}
}

// TestAddDuplicateDriver ensures that adding a duplicate driver does not
// overwrite an existing one.
func TestAddDuplicateDriver(t *testing.T) {
	supportedDrivers := database.SupportedDrivers()
	if len(supportedDrivers) == 0 {
		t.Errorf("no backends to test")
		return
	}
	dbType := supportedDrivers[0]

	// bogusCreateDB is a function which acts as a bogus create and open
	// driver function and intentionally returns a failure that can be
	// detected if the interface allows a duplicate driver to overwrite an
	// existing one.
	bogusCreateDB := func(args ...interface{}) (database.DB, error) {
		return nil, fmt.Errorf("duplicate driver allowed for database "+
			"type [%v]", dbType)
	}

	// Create a driver that tries to replace an existing one.  Set its
	// create and open functions to a function that causes a test failure if
	// they are invoked.
	driver := database.Driver{
		DbType: dbType,
		Create: bogusCreateDB,
		Open:   bogusCreateDB,
	}
	testName := "duplicate driver registration"
	err := database.RegisterDriver(driver)
	checkDbError(t, testName, err, database.ErrDbTypeRegistered)
}

// TestCreateOpenFail ensures that errors which occur while opening or closing
// a database are handled properly.
func TestCreateOpenFail(t *testing.T) {
	// bogusCreateDB is a function which acts as a bogus create and open
	// driver function that intentionally returns a failure which can be
	// detected.
	dbType := "createopenfail"
	openError := fmt.Errorf("failed to create or open database for "+
		"database type [%v]", dbType)
	bogusCreateDB := func(args ...interface{}) (database.DB, error) {
		return nil, openError
	}

	// Create and add driver that intentionally fails when created or opened
	// to ensure errors on database open and create are handled properly.
	driver := database.Driver{
		DbType: dbType,
		Create: bogusCreateDB,
		Open:   bogusCreateDB,
	}
	database.RegisterDriver(driver)

	// Ensure creating a database with the new type fails with the expected
	// error.
	_, err := database.Create(dbType)
	if !errors.Is(err, openError) {
		t.Errorf("expected error not received - got: %v, want %v", err,
			openError)
		return
	}

	// Ensure opening a database with the new type fails with the expected
	// error.
	_, err = database.Open(dbType)
	if !errors.Is(err, openError) {
		t.Errorf("expected error not received - got: %v, want %v", err,
			openError)
		return
	}
}

// TestCreateOpenUnsupported ensures that attempting to create or open an
// unsupported database type is handled properly.
func TestCreateOpenUnsupported(t *testing.T) {
	// Ensure creating a database with an unsupported type fails with the
	// expected error.
	testName := "create with unsupported database type"
	dbType := "unsupported"
	_, err := database.Create(dbType)
	if !checkDbError(t, testName, err, database.ErrDbUnknownType) {
		return
	}

	// Ensure opening a database with the an unsupported type fails with the
	// expected error.
	testName = "open with unsupported database type"
	_, err = database.Open(dbType)
	checkDbError(t, testName, err, database.ErrDbUnknownType)
}

// testBucketOps exercises the bucket operations of the provided database.
func testBucketOps(t *testing.T, db database.DB) {
	t.Helper()
	bucketName := []byte("test")
	pairs := []struct{ key, value string }{
		{"c", "charlie"},
		{"a", "alpha"},
		{"b", "bravo"},
	}

	// Store the pairs along with a key in a second bucket to make sure
	// buckets do not bleed into each other.
	err := db.Update(func(tx database.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}
		for _, pair := range pairs {
			if err := bucket.Put([]byte(pair.key), []byte(pair.value)); err != nil {
				return err
			}
		}
		// Writes are visible within the same transaction.
		if got := bucket.Get([]byte("a")); !bytes.Equal(got, []byte("alpha")) {
			return fmt.Errorf("read own write: got %q", got)
		}
		other, err := tx.CreateBucketIfNotExists([]byte("tes"))
		if err != nil {
			return err
		}
		return other.Put([]byte("ta"), []byte("other"))
	})
	if err != nil {
		t.Fatalf("Update: unexpected error: %v", err)
	}

	// Ensure the pairs are iterated in key order.
	err = db.View(func(tx database.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return fmt.Errorf("bucket %q does not exist", bucketName)
		}
		if bucket.Writable() {
			return fmt.Errorf("bucket in read-only tx claims to be writable")
		}
		var keys []string
		err := bucket.ForEach(func(k, v []byte) error {
			keys = append(keys, string(k))
			return nil
		})
		if err != nil {
			return err
		}
		if fmt.Sprint(keys) != "[a b c]" {
			return fmt.Errorf("unexpected iteration order %v", keys)
		}
		if tx.Bucket([]byte("missing")) != nil {
			return fmt.Errorf("missing bucket exists")
		}
		if bucket.Get([]byte("missing")) != nil {
			return fmt.Errorf("missing key exists")
		}

		// Writes must fail in a read-only transaction.
		err = bucket.Put([]byte("d"), []byte("delta"))
		if !errors.Is(err, database.ErrTxNotWritable) {
			return fmt.Errorf("unexpected read-only put error: %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}

	// Ensure a failed update leaves the database untouched.
	errRollback := errors.New("rollback")
	err = db.Update(func(tx database.Tx) error {
		bucket := tx.Bucket(bucketName)
		if err := bucket.Delete([]byte("a")); err != nil {
			return err
		}
		return errRollback
	})
	if !errors.Is(err, errRollback) {
		t.Fatalf("unexpected rollback error: %v", err)
	}
	err = db.View(func(tx database.Tx) error {
		if tx.Bucket(bucketName).Get([]byte("a")) == nil {
			return fmt.Errorf("rolled back delete was applied")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}

	// Ensure deleting a bucket removes all of its keys but not those of
	// other buckets.
	err = db.Update(func(tx database.Tx) error {
		if err := tx.DeleteBucket(bucketName); err != nil {
			return err
		}
		err := tx.DeleteBucket(bucketName)
		if !errors.Is(err, database.ErrBucketNotFound) {
			return fmt.Errorf("unexpected error deleting missing bucket: %v",
				err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	err = db.View(func(tx database.Tx) error {
		if tx.Bucket(bucketName) != nil {
			return fmt.Errorf("deleted bucket still exists")
		}
		other := tx.Bucket([]byte("tes"))
		if other == nil || !bytes.Equal(other.Get([]byte("ta")), []byte("other")) {
			return fmt.Errorf("neighbor bucket was modified")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
}

// TestDrivers ensures every bundled driver implements the interface contract
// and persists data across a close and reopen.
func TestDrivers(t *testing.T) {
	for _, dbType := range []string{"leveldb", "bolt"} {
		t.Run(dbType, func(t *testing.T) {
			dbPath := filepath.Join(t.TempDir(), "db")

			_, err := database.Open(dbType, dbPath)
			checkDbError(t, "open missing", err, database.ErrDbDoesNotExist)

			db, err := database.Create(dbType, dbPath)
			if err != nil {
				t.Fatalf("Create: unexpected error: %v", err)
			}
			if db.Type() != dbType {
				t.Fatalf("unexpected type %q", db.Type())
			}
			testBucketOps(t, db)

			err = db.Update(func(tx database.Tx) error {
				bucket, err := tx.CreateBucketIfNotExists([]byte("persist"))
				if err != nil {
					return err
				}
				return bucket.Put([]byte("key"), []byte("value"))
			})
			if err != nil {
				t.Fatalf("Update: unexpected error: %v", err)
			}
			if err := db.Close(); err != nil {
				t.Fatalf("Close: unexpected error: %v", err)
			}
			err = db.View(func(tx database.Tx) error { return nil })
			checkDbError(t, "view after close", err, database.ErrDbNotOpen)

			_, err = database.Create(dbType, dbPath)
			checkDbError(t, "create existing", err, database.ErrDbExists)

			db, err = database.Open(dbType, dbPath)
			if err != nil {
				t.Fatalf("Open: unexpected error: %v", err)
			}
			defer db.Close()
			err = db.View(func(tx database.Tx) error {
				bucket := tx.Bucket([]byte("persist"))
				if bucket == nil {
					return fmt.Errorf("bucket was not persisted")
				}
				if got := bucket.Get([]byte("key")); !bytes.Equal(got, []byte("value")) {
					return fmt.Errorf("unexpected value %q", got)
				}
				return nil
			})
			if err != nil {
				t.Fatalf("View: %v", err)
			}
		})
	}
}

// TestMemoryLevelDB ensures an in-memory leveldb database can be created.
func TestMemoryLevelDB(t *testing.T) {
	db, err := database.Create("leveldb", "")
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}
	defer db.Close()
	testBucketOps(t, db)

	_, err = database.Open("leveldb", "")
	checkDbError(t, "open in-memory", err, database.ErrDbDoesNotExist)

	_, err = database.Create("leveldb")
	checkDbError(t, "missing path", err, database.ErrInvalid)
}
