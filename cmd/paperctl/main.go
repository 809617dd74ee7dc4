package main

import (
	"os"

	"papertrading/cmd/paperctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
