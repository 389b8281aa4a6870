package main

import (
	"os"

	"github.com/ayusman/mudra/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
