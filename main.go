package main

import (
	"os"

	"github.com/AnyUserName/stackblur/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
