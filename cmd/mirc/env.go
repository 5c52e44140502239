package main

import "github.com/xyproto/env/v2"

// envDefaults are flag defaults taken from the environment.
type envDefaults struct {
	jobs       int
	trace      string
	traceLevel string
	noColor    bool
}

func loadEnvDefaults() envDefaults {
	return envDefaults{
		jobs:       env.Int("MIRC_JOBS", 0),
		trace:      env.Str("MIRC_TRACE"),
		traceLevel: env.Str("MIRC_TRACE_LEVEL", "off"),
		noColor:    env.Bool("MIRC_NO_COLOR") || env.Has("NO_COLOR"),
	}
}
