package main

import (
	"os"

	"eodingest/cmd/eodread/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
