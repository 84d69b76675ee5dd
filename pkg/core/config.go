package core

// Config holds the settings needed to open a table on some backend.
// Backends read the fields they care about and ignore the rest;
// backend-specific knobs travel in Options.
type Config struct {
	Backend  string
	Path     string
	Paths    []string
	Table    string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Schema   string
	Options  map[string]string
}
