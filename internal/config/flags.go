package config

import (
	"os"

	"github.com/spf13/pflag"
)

// newFlagSet binds every flag to a copy of cfg so that the YAML overlay can
// be applied first and only explicitly set flags win afterwards.
//
// Supported flags:
//
//	--config string              YAML config file (falls back to $NEVROTH_CONFIG)
//	-a, --addr string            HTTP listen address
//	--db-driver string           sqlite3 or postgres
//	-d, --db-dsn string          database DSN
//	-s, --secret-key string      JWT HMAC secret
//	--token-ttl duration         access token lifetime
//	--habit-edit-window duration window for flipping a day's status
//	--required-habits int        habits selected per user
//	--timezone string            IANA zone used for "today"
//	--message-retention duration age after which chat messages are purged
//	--cleanup-interval duration  how often the purge runs
//	--send-buffer int            per-connection outbound queue
//	--log-level, --log-format, --log-file
func newFlagSet(cfg *Config) (*pflag.FlagSet, *Config, *string) {
	flagged := *cfg
	fs := pflag.NewFlagSet("nevroth", pflag.ContinueOnError)

	configPath := fs.String("config", os.Getenv(EnvConfigPath), "path to YAML config file")

	fs.StringVarP(&flagged.Addr, "addr", "a", flagged.Addr, "address and port to run server")
	fs.StringVar(&flagged.DatabaseDriver, "db-driver", flagged.DatabaseDriver, "database driver (sqlite3, postgres)")
	fs.StringVarP(&flagged.DatabaseDSN, "db-dsn", "d", flagged.DatabaseDSN, "database DSN")
	fs.StringVarP(&flagged.SecretKey, "secret-key", "s", flagged.SecretKey, "secret key")
	fs.DurationVar(&flagged.AccessTokenTTL, "token-ttl", flagged.AccessTokenTTL, "access token validity")
	fs.DurationVar(&flagged.HabitEditWindow, "habit-edit-window", flagged.HabitEditWindow, "habit progress edit window")
	fs.IntVar(&flagged.RequiredHabits, "required-habits", flagged.RequiredHabits, "number of habits a user selects")
	fs.StringVar(&flagged.Timezone, "timezone", flagged.Timezone, "timezone used to decide today")
	fs.DurationVar(&flagged.MessageRetention, "message-retention", flagged.MessageRetention, "chat message retention")
	fs.DurationVar(&flagged.CleanupInterval, "cleanup-interval", flagged.CleanupInterval, "chat message cleanup interval")
	fs.IntVar(&flagged.SendBuffer, "send-buffer", flagged.SendBuffer, "websocket outbound queue length")
	fs.StringVar(&flagged.Log.Level, "log-level", flagged.Log.Level, "log level")
	fs.StringVar(&flagged.Log.Format, "log-format", flagged.Log.Format, "log format (text, json)")
	fs.StringVar(&flagged.Log.File, "log-file", flagged.Log.File, "rotated log file (default stderr)")

	return fs, &flagged, configPath
}

// applyFlags copies the flags that were set on the command line into cfg.
func applyFlags(fs *pflag.FlagSet, flagged, cfg *Config) {
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = flagged.Addr
		case "db-driver":
			cfg.DatabaseDriver = flagged.DatabaseDriver
		case "db-dsn":
			cfg.DatabaseDSN = flagged.DatabaseDSN
		case "secret-key":
			cfg.SecretKey = flagged.SecretKey
		case "token-ttl":
			cfg.AccessTokenTTL = flagged.AccessTokenTTL
		case "habit-edit-window":
			cfg.HabitEditWindow = flagged.HabitEditWindow
		case "required-habits":
			cfg.RequiredHabits = flagged.RequiredHabits
		case "timezone":
			cfg.Timezone = flagged.Timezone
		case "message-retention":
			cfg.MessageRetention = flagged.MessageRetention
		case "cleanup-interval":
			cfg.CleanupInterval = flagged.CleanupInterval
		case "send-buffer":
			cfg.SendBuffer = flagged.SendBuffer
		case "log-level":
			cfg.Log.Level = flagged.Log.Level
		case "log-format":
			cfg.Log.Format = flagged.Log.Format
		case "log-file":
			cfg.Log.File = flagged.Log.File
		}
	})
}
