package config

// Application constants
const (
	AppName = "eodread"

	DefaultDataDir   = "data"
	DefaultOutputDir = "data/canonical"
	DefaultWorkers   = 4

	// Log Settings
	DefaultLogLevel   = "info"
	DefaultLogFile    = "logs/eodread.log"
	MaxLogFileSizeMB  = 100
	MaxLogFileAgeDays = 30
	MaxLogFileBackups = 10
)
