package structures

import (
	"flag"
	"net/http"
)

type Route struct {
	Url     string
	Handler http.Handler
}

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

func ParseFlags() *CliFlags {
	flags := &CliFlags{}
	flag.StringVar(&flags.ConfigPath, "c", "config.yaml", "path to the configuration file")
	flag.BoolVar(&flags.DebugMode, "d", false, "enable debug mode")
	flag.Parse()
	return flags
}
