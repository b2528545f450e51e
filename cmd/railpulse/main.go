package main

import (
	"fmt"
	"os"

	"railpulse/internal/di"
	"railpulse/internal/structures"
)

func main() {
	flags := structures.ParseFlags()
	if _, err := di.InitApp(flags); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start application: %v\n", err)
		os.Exit(1)
	}
}
