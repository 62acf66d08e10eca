package main

import (
	"os"

	cmd "github.com/hferrand/inkstream/internal"
	"github.com/hferrand/inkstream/internal/logger"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logger.LogError(err.Error())
		os.Exit(1)
	}
}
