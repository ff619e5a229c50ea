package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagPID      = flag.Int("pid", 0, "Host process ID")
	flagProfiles = flag.String("profiles", "", "Path to edit profile file")
	flagNoWatch  = flag.Bool("no-watch", false, "Do not reload profiles on change")
	flagInterval = flag.Duration("interval", 0, "Tick interval")
	flagLayout   = flag.String("layout", "", "Structure layout version")

	flagActorTable Hex
)

func init() {
	flag.TextVar(&flagActorTable, "actor-table", Hex(0), "Actor table address (skips the signature scan)")
}

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagPID > 0 {
		cfg.Process.PID = *flagPID
	}
	if *flagProfiles != "" {
		cfg.Profiles.Path = *flagProfiles
	}
	if *flagNoWatch {
		cfg.Profiles.Watch = false
	}
	if *flagInterval > 0 {
		cfg.Actors.TickInterval = *flagInterval
	}
	if *flagLayout != "" {
		cfg.Layout.Version = *flagLayout
	}
	if flagActorTable != 0 {
		cfg.Actors.Table = flagActorTable
	}
}
