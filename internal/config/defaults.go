// Package config provides configuration loading and defaults for pathnorm.
package config

import "time"

// DefaultConfigDir is the default location for pathnorm configuration.
const DefaultConfigDir = "~/.config/pathnorm"

// DefaultSuitesDir is where call logs are looked up when no directory is given.
const DefaultSuitesDir = "suites"

// DefaultSuitePattern selects call logs within the suites directory. Every
// file is a call log, whatever its extension.
const DefaultSuitePattern = "**/*"

// DefaultDBPath is the results database location.
const DefaultDBPath = "./data/results.db"

// DefaultRetention is how many runs the results database keeps.
const DefaultRetention = 50

// DefaultBench holds the default benchmark settings.
var DefaultBench = Bench{
	Iterations: 10,
	MinTime:    500 * time.Millisecond,
	Warmup:     1,
}

// DefaultStress holds the default stress settings.
var DefaultStress = Stress{
	Workers:  8,
	Duration: 5 * time.Second,
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color:  true,
	Format: "text",
}
