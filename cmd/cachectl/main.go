package main

import (
	"os"

	"github.com/DavidPARK0417/draiger-sub002/cmd/cachectl/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
