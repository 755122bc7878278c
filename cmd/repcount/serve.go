package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ayusman/repcount/internal/app"
	"github.com/ayusman/repcount/internal/server"
	"github.com/ayusman/repcount/internal/tray"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "count live from a camera (or a video) and serve the dashboard",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "HTTP listen address",
				Value:   ":8080",
				EnvVars: []string{"REPCOUNT_ADDR"},
			},
			&cli.IntFlag{
				Name:    "camera",
				Usage:   "camera device ID",
				EnvVars: []string{"REPCOUNT_CAMERA"},
			},
			&cli.StringFlag{
				Name:  "video",
				Usage: "play back a recorded video instead of the camera",
			},
			&cli.BoolFlag{
				Name:  "tray",
				Usage: "show a system tray menu",
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
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
	cfg.CameraID = c.Int("camera")
	cfg.VideoPath = c.String("video")

	a, err := app.New(cfg)
	if err != nil {
		return err
	}

	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Engine:    a,
		Frames:    a,
	})
	a.OnEvents(srv.Publish)

	plugins := startPlugins(c, a)
	defer plugins.Close()

	source := fmt.Sprintf("camera:%d", cfg.CameraID)
	if cfg.VideoPath != "" {
		source = "file:" + cfg.VideoPath
	}
	if _, err := a.BeginSession(source); err != nil {
		return err
	}
	if err := a.Start(); err != nil {
		return fmt.Errorf("start pipeline: %w", err)
	}
	defer a.Stop()

	addr := c.String("addr")
	serveErr := make(chan error, 1)
	go func() {
		fmt.Printf("Starting server on %s\n", addr)
		serveErr <- srv.ListenAndServe(addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	quit := make(chan struct{})
	if c.Bool("tray") {
		t := tray.New()
		t.OnToggle(a.SetEnabled)
		t.OnReset(a.ResetCounts)
		t.OnDashboard(func() { openBrowser(dashboardURL(addr)) })
		t.OnQuit(func() { close(quit) })
		a.OnEvents(t.ShowEvents)

		// systray must own the main goroutine, so the wait moves to a helper.
		go func() {
			waitForExit(sigCh, quit, serveErr, a.Done())
			t.Quit()
		}()
		t.Run()
	} else {
		waitForExit(sigCh, quit, serveErr, a.Done())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	return nil
}

// waitForExit blocks until a signal, a tray quit, a server failure or the
// end of a played back video.
func waitForExit(sigCh <-chan os.Signal, quit <-chan struct{}, serveErr <-chan error, done <-chan struct{}) {
	select {
	case sig := <-sigCh:
		log.Printf("Received %v, shutting down", sig)
	case <-quit:
		log.Println("Quit from tray")
	case err := <-serveErr:
		if err != nil {
			log.Printf("Server failed: %v", err)
		}
	case <-done:
		log.Println("Pipeline finished")
	}
}

func dashboardURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.repcount/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".repcount", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
