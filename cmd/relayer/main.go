package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "relayer",
		Usage: "Relay confirmed bridge lock events from a source chain to mint actions on a destination chain",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run the relay loop",
				Flags:  runFlags(),
				Action: run,
			},
			{
				Name:   "reset",
				Usage:  "Delete the persisted checkpoint so the next run starts fresh at the confirmed head",
				Flags:  resetFlags(),
				Action: reset,
			},
		},
	}
	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
