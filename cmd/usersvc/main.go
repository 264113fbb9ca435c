package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"user-management-service/cmd/usersvc/app"
	"user-management-service/cmd/usersvc/server"
)

// CLI flags parsed from command line.
type cliFlags struct {
	Mode       string
	ConfigPath string
	Version    bool
}

// version is set at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var flags cliFlags

	fs := flag.NewFlagSet("usersvc", flag.ContinueOnError)
	fs.StringVar(&flags.Mode, "mode", "", "front-end to run: console or http (overrides APP_MODE)")
	fs.StringVar(&flags.ConfigPath, "config", defaultConfigPath(), "directory containing app.env (overrides CONFIG_PATH)")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if flags.Version {
		fmt.Println(version)
		return nil
	}

	application, err := app.New(context.Background(), app.Options{
		ConfigPath: flags.ConfigPath,
		Mode:       flags.Mode,
	})
	if err != nil {
		return err
	}

	ctx, stop := server.WithSignal(context.Background(), application.Logger)
	defer stop()

	return application.Run(ctx)
}

// defaultConfigPath returns the configuration path
func defaultConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "."
}
