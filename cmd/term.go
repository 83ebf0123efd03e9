package cmd

import (
	"fmt"
	"os"
	"strings"

	"portfolio-server/config"
	"portfolio-server/setup"

	"github.com/fatih/color"
)

func outputErrorAndExit(msg string, args ...interface{}) {
	msg = fmt.Sprintf(msg, args...)
	if msg != "" {
		msg = strings.ToUpper(msg[:1]) + msg[1:]
	}
	fmt.Fprintln(os.Stderr, color.New(color.FgHiRed, color.Bold).Sprint("🚨 "+msg))
	os.Exit(1)
}

func outputSuccess(msg string, args ...interface{}) {
	fmt.Println(color.New(color.FgHiGreen, color.Bold).Sprintf("✅ "+msg, args...))
}

// mustInitCli loads config and logging and connects to the database for one-shot
// commands.
func mustInitCli() *config.Config {
	cfg := setup.MustLoadConfig(configPath)
	setup.MustInitLogging(cfg)

	if err := setup.InitDb(cfg); err != nil {
		outputErrorAndExit("Error initializing database: %v", err)
	}

	return cfg
}
