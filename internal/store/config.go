package store

// Config controls where the store keeps its database.
type Config struct {
	// StoragePath is the directory holding the database file. Empty means
	// the current directory.
	StoragePath string `yaml:"storage_path"`

	// DBName is the database file name inside StoragePath.
	DBName string `yaml:"db_name"`

	// ObservationLimit caps how many observations Observations returns when
	// the caller passes no limit.
	ObservationLimit int `yaml:"observation_limit"`
}

func DefaultConfig() Config {
	return Config{
		StoragePath:      "~/.ziva",
		DBName:           "ziva.db",
		ObservationLimit: 100,
	}
}
