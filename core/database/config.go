package database

const (
	// DriverSQLite selects the embedded SQLite store. Name is the file path.
	DriverSQLite = "sqlite"
	// DriverMySQL selects a MySQL server.
	DriverMySQL = "mysql"
)

// Config holds configuration for the database connection.
type Config struct {
	// Driver is the database driver (sqlite, mysql).
	Driver string `mapstructure:"driver" default:"sqlite"`
	// Host is the database host. Ignored for sqlite.
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the database port. Ignored for sqlite.
	Port int `mapstructure:"port" default:"3306"`
	// User is the database user. Ignored for sqlite.
	User string `mapstructure:"user" default:"root"`
	// Password is the database password. Ignored for sqlite.
	Password string `mapstructure:"password" default:""`
	// Name is the database name, or the file path for sqlite.
	Name string `mapstructure:"name" default:"emby-tagger.db"`
	// TimeoutSeconds bounds connection setup and I/O.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
