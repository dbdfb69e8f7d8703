package main

import (
	"os"

	"tonelli/internal/cli"
	"tonelli/internal/log"
)

func main() {
	app := cli.NewApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		log.DefaultLogger().Errorw("tonelli failed", "err", err)
		os.Exit(1)
	}
}
