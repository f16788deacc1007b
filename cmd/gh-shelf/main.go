package main

import (
	"fmt"
	"log"
	"os"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/stahnma/gh-shelf/internal/commands"
	"github.com/stahnma/gh-shelf/internal/config"
	lambdapkg "github.com/stahnma/gh-shelf/internal/lambda"
	"github.com/stahnma/gh-shelf/internal/logging"
)

var (
	GitSHA   string
	GitDirty string
)

func main() {
	cfg, err := config.Load(os.Getenv("SHELF_CONFIG"))
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	logger, err := logging.New(os.Stderr, cfg.LogFormat, cfg.DebugMode)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}

	app, err := commands.NewApp(cfg, logger, GitSHA, GitDirty)
	if err != nil {
		log.Fatalf("Error initializing application: %v", err)
	}

	if os.Getenv("LAMBDA_TASK_ROOT") != "" {
		awslambda.Start(lambdapkg.NewHandler(app))
		return
	}

	rootCmd := app.NewRootCommand()
	err = rootCmd.Execute()
	app.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
