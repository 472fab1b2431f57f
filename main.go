package main

import (
	"flag"
	"fmt"
	"os"

	"weschedule/internal/di"
	"weschedule/internal/structures"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	debug := flag.Bool("debug", false, "enable debug mode")
	flag.Parse()

	_, err := di.InitApp(&structures.CliFlags{
		ConfigPath: *configPath,
		DebugMode:  *debug,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "weschedule: %s\n", err)
		os.Exit(1)
	}
}
