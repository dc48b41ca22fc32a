package testsupport

import (
	"database/sql"
	"fmt"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
)

var memoryDBCounter atomic.Int64

// SQLiteMemoryDSN returns a DSN for a private in-memory database. Connections opened
// with the same DSN share the database; every call yields a new one.
func SQLiteMemoryDSN(name string) string {
	return fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_fk=1", name, memoryDBCounter.Add(1))
}

func NewSQLiteMemoryDB(name string) (*sql.DB, error) {
	return sql.Open("sqlite3", SQLiteMemoryDSN(name))
}
