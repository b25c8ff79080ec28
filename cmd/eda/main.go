package main

import (
	"os"

	"github.com/couchcryptid/flight-delay-eda/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
