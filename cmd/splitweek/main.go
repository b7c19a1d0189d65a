package main

import (
	"github.com/mmynk/splitweek/internal/cli"
	"github.com/mmynk/splitweek/pkg/logging"
)

func main() {
	logging.Setup()
	cli.Execute()
}
