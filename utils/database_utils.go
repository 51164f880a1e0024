// database_utils should be the canonical place to put shared DB utils.
// It should not include:
// 1. Any util that doesn't manipulate DB
// 2. Any util that contains business logic
package utils

import (
	"fmt"
	"path/filepath"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	TestDBPrefix         = "testonlydb_"
	TestDBNameCharLength = 8
)

// GetDBConnection opens a gorm connection with the given driver. dsn is a
// postgres connection string or a sqlite file path.
func GetDBConnection(driver string, dsn string) (*gorm.DB, error) {
	switch driver {
	case DriverPostgres:
		return getDB(postgres.Open(dsn))
	case DriverSQLite:
		return getDB(sqlite.Open(dsn))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// CreateTempDB creates a sqlite DB in the test's temp dir. Note that this
// function should only be called in a testing environment with test state
// manager testing.T. The file and connection are released after the test,
// user will not need to drop the database explicitly.
func CreateTempDB(t *testing.T) (*gorm.DB, string) {
	t.Helper()
	dbName := TestDBPrefix + RandomAlphabetString(TestDBNameCharLength)
	path := filepath.Join(t.TempDir(), dbName+".db")

	db, err := GetDBConnection(DriverSQLite, path)
	if err != nil {
		t.Fatalf("fail to create temp DB with name %s: %v", dbName, err)
	}

	t.Cleanup(func() {
		// Proactively close the connection instead of deferring to GC, the temp
		// dir can not be removed on some platforms while the file is open.
		conn, err := db.DB()
		if err == nil {
			conn.Close()
		}
	})

	return db, dbName
}

func getDB(dialector gorm.Dialector) (db *gorm.DB, err error) {
	return gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}
