package main

import (
	"os"

	"github.com/meenmo/curvefit/cmd/curvefit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
