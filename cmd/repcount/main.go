package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "repcount",
		Usage: "count jumps, squats and bends from a camera or video",
		Flags: commonFlags(),
		Commands: []*cli.Command{
			serveCommand(),
			analyzeCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatalf("repcount: %v", err)
	}
}
