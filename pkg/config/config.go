package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	DB                 string // connection string for the database
	WaitForServices    string // duration to wait for other services to be ready
	LogLevel           string // sets the log level (zap log level values)
	SQLLogLevel        string // sets the log level for sql subsystem
	LogFormat          string // text vs json
	LogFilter          string // zapfilter rules applied to the json logger
	MigrationSourceURL string // location of migration files
	MetricsPort        int    // port for prometheus metrics (0 = disabled)

	JolpicaURL     string // base URL of the season results provider
	SessionURL     string // base URL of the session lap provider
	CacheDir       string // directory for cached session provider responses
	OutputDir      string // directory for collected interchange files
	DataDir        string // directory containing interchange files to load
	Years          []int  // seasons to collect
	MaxRaces       int    // cap on races per season (0 = all)
	RequestTimeout string // per-request socket timeout
	RequestDelay   string // minimum delay between provider calls
	RacePause      string // pause between whole races

	BatchSize int // rows per persistence batch
)

// Config holds processed configuration values used by the application.
type Config struct {
	SkipMetricsPass bool // if true, the stint metrics post-pass is skipped
}
