// Command dester opens an automated browser and drops into an interactive
// debugging session bound to it. Useful for trying out selectors and page
// flows live before committing them to a script.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/dester-dev/dester/pkg/dagger"
	"github.com/dester-dev/dester/pkg/driver"
)

// availableBrowsers names the browsers this build can drive. Unknown names
// fall back to chrome with a notice, matching the -browser flag contract.
var availableBrowsers = map[string]bool{
	"chrome": true,
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: dester [flags]\n\nOpens a browser and starts an interactive debugging session bound to it.\n\nFlags:\n")
		flag.PrintDefaults()
	}

	browserName := flag.String("browser", "", "browser to drive (default: config value or chrome)")
	headless := flag.Bool("headless", false, "run the browser without a visible window")
	startURL := flag.String("url", "", "navigate to this URL before starting the session")
	configPath := flag.String("config", "", "path to configuration file (default: dester.yaml if present)")
	envFile := flag.String("env", ".env", "path to .env file (ignored if missing)")
	verbose := flag.Bool("verbose", false, "log driver and installer activity")
	flag.Parse()

	if err := loadDotEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := run(*browserName, *startURL, *configPath, *headless, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(browserName, startURL, configPath string, headless, verbose bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if browserName == "" {
		browserName = cfg.Browser
	}
	if browserName != "" && !availableBrowsers[browserName] {
		fmt.Fprintf(os.Stderr, "unknown browser %q, running chrome\n", browserName)
	}

	log := zap.NewNop()
	if verbose {
		log, err = zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
	}

	opts := []driver.Option{
		driver.WithWindowSize(cfg.Window.Width, cfg.Window.Height),
		driver.WithWindowPosition(cfg.Window.X, cfg.Window.Y),
		driver.WithLogger(log),
	}
	if headless || cfg.Headless {
		opts = append(opts, driver.WithHeadless())
	}
	if wait, err := cfg.implicitWait(); err != nil {
		return err
	} else if wait > 0 {
		opts = append(opts, driver.WithWait(wait))
	}
	for name, value := range cfg.Flags {
		opts = append(opts, driver.WithFlag(name, value))
	}

	drv, err := driver.New(ctx, opts...)
	if err != nil {
		return err
	}
	defer drv.Close()

	if startURL != "" {
		if err := drv.Navigate(ctx, startURL); err != nil {
			return err
		}
	}

	err = dagger.Debug(ctx, map[string]any{"driver": drv})
	if errors.Is(err, context.Canceled) {
		// Operator hit Ctrl+C; the deferred Close still tears the browser down.
		return nil
	}

	return err
}

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
