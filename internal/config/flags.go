package config

import "github.com/spf13/pflag"

// Flags holds command-line overrides. Zero values leave the config untouched.
type Flags struct {
	Config  string
	Debug   bool
	Rules   string
	Meshes  string
	Output  string
	Workers int
	DryRun  bool
	LogFile string
}

// Register adds the flags to fs.
func (f *Flags) Register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.Config, "config", "c", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Rules, "rules", "", "Rule documents directory")
	fs.StringVar(&f.Meshes, "meshes", "", "Meshes directory")
	fs.StringVarP(&f.Output, "output", "o", "", "Output directory")
	fs.IntVarP(&f.Workers, "workers", "j", 0, "Number of meshes patched in parallel")
	fs.BoolVar(&f.DryRun, "dry-run", false, "Patch meshes without writing them")
	fs.StringVar(&f.LogFile, "log-file", "", "Also write logs to this file")
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Rules != "" {
		cfg.Paths.Rules = f.Rules
	}
	if f.Meshes != "" {
		cfg.Paths.Meshes = f.Meshes
	}
	if f.Output != "" {
		cfg.Paths.Output = f.Output
	}
	if f.Workers > 0 {
		cfg.Run.Workers = f.Workers
	}
	if f.DryRun {
		cfg.Run.DryRun = true
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
}
