package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/ayusman/repcount/internal/app"
	"github.com/ayusman/repcount/internal/counter"
	"github.com/ayusman/repcount/internal/tracker"
)

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "count repetitions in a recorded video and print the totals",
		ArgsUsage: "<video>",
		Action:    runAnalyze,
	}
}

func runAnalyze(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("analyze needs exactly one video path")
	}
	path := c.Args().First()

	st, err := openStore(c)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	cfg, err := appConfig(c, st)
	if err != nil {
		return err
	}
	cfg.VideoPath = path

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	plugins := startPlugins(c, a)
	defer plugins.Close()
	defer a.Stop()

	if _, err := a.BeginSession("file:" + path); err != nil {
		return err
	}

	counts, err := a.Analyze()
	if err != nil {
		return err
	}

	printCounts(c.App.Writer, counts)
	return nil
}

// printCounts writes one "person N: kind - count" line per counter.
func printCounts(w io.Writer, counts []tracker.PersonCounts) {
	if len(counts) == 0 {
		fmt.Fprintln(w, "nobody visible at the end of the video")
		return
	}
	for _, pc := range counts {
		for _, kind := range counter.Kinds {
			fmt.Fprintf(w, "person %d: %s - %d\n", pc.Person, kind, pc.Counts[kind])
		}
	}
}
