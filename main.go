package main

import (
	"os"

	"github.com/jandubois/readycheck/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
