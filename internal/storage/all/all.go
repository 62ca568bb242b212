// Package all registers every storage backend via blank imports. Binaries
// import it once so config-selected kinds resolve through storage.New.
package all

import (
	_ "tabetl/internal/storage/mssql"
	_ "tabetl/internal/storage/mysql"
	_ "tabetl/internal/storage/postgres"
	_ "tabetl/internal/storage/sqlite"
)
