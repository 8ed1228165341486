// Copyright 2025 The WordCraft Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main runs the wordcraft suggestion engine as a MessagePack IPC
server or as an interactive CLI.

Capabilities are probed once at startup: the lexical database, phonetic
index and emotion lexicon (embedded unless overridden), the POS tagger
backend, the Ollama encoder with a hash fallback, the ConceptNet client
and the learned reranker artifact. Anything missing degrades to its
unavailable form and the engine keeps serving.

# Usage

Start the IPC server:

	wordcraft

Run the CLI with debug logging:

	wordcraft -c -d -ctx horror

Use a specific config file and data directory:

	wordcraft -config ./config.toml -data ./data

# Configuration

The config file lives at ~/.config/wordcraft/config.toml and is created
with defaults on first run. WORDCRAFT_DISABLE_RERANKER and
WORDCRAFT_RERANKER_ARTIFACT override the reranker settings.

# Command Line Flags

	-version  Show current version
	-d        Enable debug logging
	-c        Run the CLI instead of the IPC server
	-config   Path to a config file
	-rebuild-config  Rewrite the default config file with defaults
	-data     Directory overriding the embedded data files
	-ctx      CLI starting context
	-mode     CLI starting mode
	-limit    CLI result limit for word tools
	-offline  Skip the network and encoder probes

All logs go to stderr; stdout carries the IPC stream.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/bastiangx/wordcraft/internal/cli"
	"github.com/bastiangx/wordcraft/internal/logger"
	"github.com/bastiangx/wordcraft/internal/utils"
	"github.com/bastiangx/wordcraft/pkg/config"
	"github.com/bastiangx/wordcraft/pkg/server"
	"github.com/bastiangx/wordcraft/pkg/suggest"
	"github.com/bastiangx/wordcraft/pkg/wordtools"
)

const (
	Version = "0.3.0-beta"
	AppName = "wordcraft"
	gh      = "https://github.com/bastiangx/wordcraft"
)

// sigHandler runs cleanup and exits on SIGINT or SIGTERM.
func sigHandler(cleanup func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		cleanup()
		os.Exit(0)
	}()
}

// main wires config, resources, the engine and the word tools, then hands
// control to the server or the CLI.
func main() {
	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	configFile := flag.String("config", "", "Path to a custom config file")
	dataDir := flag.String("data", "", "Directory with wordnet/phonetics/emotions/contexts TOML files (embedded data when empty)")
	cliContext := flag.String("ctx", defaultConfig.CLI.DefaultContext, "CLI starting context (config value unless set)")
	cliModeName := flag.String("mode", defaultConfig.CLI.DefaultMode, "CLI starting mode: write, edit or rewrite (config value unless set)")
	limit := flag.Int("limit", 0, "CLI result limit for word tools (0 for the default)")
	offline := flag.Bool("offline", false, "Disable ConceptNet and use hash embeddings")
	rebuildConfig := flag.Bool("rebuild-config", false, "Rewrite the default config file with built-in defaults")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger.Setup(*debugMode)

	if *rebuildConfig {
		if err := config.RebuildConfigFile(); err != nil {
			log.Fatalf("Failed to rebuild config: %v", err)
		}
		fmt.Fprintf(os.Stderr, "Rebuilt config at %s\n", config.GetActiveConfigPath(""))
	}

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	cfg, configPath := config.LoadConfigWithPriority(*configFile)
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(configPath))
	if *dataDir != "" {
		cfg.Lexicon.DataDir = *dataDir
	}
	if *offline {
		cfg.Network.Enabled = false
		cfg.Embed.Provider = "hash"
	}

	ctx := context.Background()
	res := suggest.DetectResources(ctx, cfg)
	sigHandler(func() {
		if err := res.Close(); err != nil {
			log.Warnf("Closing resources: %v", err)
		}
	})
	defer res.Close()

	engine := suggest.NewEngine(cfg, res)
	if err := engine.Init(ctx); err != nil {
		log.Errorf("Engine init failed, serving fallbacks: %v", err)
	}
	tools := wordtools.New(res, engine, cfg.Rerank)
	caps := res.Capabilities()
	log.Debug("Capabilities", "caps", caps)
	log.Debug("Runtime", "info", utils.RuntimeInfo())

	if *cliMode {
		log.SetReportTimestamp(false)
		opts := cli.Options{
			Context:   cfg.CLI.DefaultContext,
			Mode:      cfg.CLI.DefaultMode,
			Limit:     *limit,
			ShowNotes: cfg.CLI.ShowNotes,
		}
		if explicit["ctx"] {
			opts.Context = *cliContext
		}
		if explicit["mode"] {
			opts.Mode = *cliModeName
		}
		if err := cli.NewInputHandler(engine, tools, opts).Start(ctx); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(engine, tools, server.Options{
		Config:       cfg.Server,
		Capabilities: caps,
		Version:      Version,
	})
	showStartupInfo(caps)
	if err := srv.Start(ctx); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func printVersion() {
	l := logger.NewWithConfig("", log.InfoLevel, false, false, log.TextFormatter)
	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	l.SetStyles(styles)

	l.Print("")
	l.Print("[ WordCraft ] Context-aware word suggestions for writers")
	l.Print("", "version", Version)
	l.Print("")
	l.Print("use -h or --help to see available options")
	l.Print("Github Repo", "gh", gh)
}

// showStartupInfo prints the detected capabilities to stderr.
func showStartupInfo(caps map[string]string) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)
	defer log.SetLevel(currentLevel)

	fmt.Fprintln(os.Stderr, "===========")
	fmt.Fprintln(os.Stderr, " WordCraft ")
	fmt.Fprintln(os.Stderr, "===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	for _, k := range []string{"lexicon", "tagger", "encoder", "network", "reranker"} {
		log.Info(k, "status", caps[k])
	}
	log.Info("status: ready")
	fmt.Fprintln(os.Stderr, "===========")
}
