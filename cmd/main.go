package main

import (
	"os"

	"github.com/mateusoliveiradev1/bot-hawk-esports-sub008/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
