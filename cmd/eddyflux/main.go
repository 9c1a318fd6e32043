package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/chrissnell/eddyflux/internal/app"
	"github.com/chrissnell/eddyflux/internal/log"
	"github.com/chrissnell/eddyflux/pkg/config"
)

const version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

func main() {
	cfgFile := flag.String("config", "eddyflux.yaml", "Path to the YAML site configuration")
	checkOnly := flag.Bool("check", false, "Validate the configuration, print the per-site flux options and exit")
	checkSite := flag.String("site", "", "With -check, print only this site")
	logOpts := log.BindFlags(flag.CommandLine)
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("eddyflux %s\n", version)
		os.Exit(0)
	}

	if err := log.InitWithOptions(*logOpts); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	filename, _ := filepath.Abs(*cfgFile)
	provider := config.NewYAMLProvider(filename)
	defer provider.Close()

	if *checkOnly {
		if err := app.CheckConfig(provider, *checkSite, os.Stdout); err != nil {
			log.Errorf("configuration invalid: %v", err)
			os.Exit(1)
		}
		return
	}

	application := app.New(provider, log.GetSugaredLogger())
	if err := application.Run(context.Background()); err != nil {
		log.Errorf("Application error: %v", err)
		os.Exit(1)
	}
}
