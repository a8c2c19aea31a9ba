package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"medstore/m/internal/app"
	"medstore/m/internal/config"
)

func main() {
	cfg := config.Load()

	var running *app.App
	cliApp := &cli.App{
		Name:  cfg.AppName,
		Usage: "pharmacy billing and inventory",
		Before: func(c *cli.Context) error {
			if c.Args().Len() == 0 || c.Args().First() == "help" {
				return nil
			}
			a, err := app.Start(c.Context, cfg)
			if err != nil {
				return err
			}
			running = a
			return nil
		},
		After: func(c *cli.Context) error {
			if running == nil {
				return nil
			}
			return running.Close(c.Context)
		},
		Commands: commands(func() *app.App { return running }),
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
