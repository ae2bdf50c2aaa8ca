package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"

	"github.com/mmynk/roulette/internal/client"
)

const usage = `usage: %s [OPTIONS] <command> [args]

commands:
  register <email> <username> <password>
  login <email> <password>
  me
  wheel
  open
  close [round]
  spin [round]
  bet <target:amount>...      e.g. bet red:10 17:2.50
  balance
  deposit <amount>
  history [user-id]
  users
  rounds
  wagers
  watch                       follow the table and keep the balance in sync

options:
`

func main() {
	serverFlag := flag.String("server", getEnv("ROULETTE_SERVER", "http://localhost:8080"), "server base URL")
	tableFlag := flag.String("table", "", "table id (server default when empty)")
	roundFlag := flag.Int64("round", 0, "round number (active round when zero)")
	sessionFlag := flag.String("session", defaultSessionPath(), "file holding the session token")
	debugFlag := flag.Bool("debug", false, "verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, usage, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *debugFlag {
		pterm.DefaultLogger.Level = pterm.LogLevelDebug
	}
	slog.SetDefault(slog.New(pterm.NewSlogHandler(&pterm.DefaultLogger)))

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := client.New(*serverFlag, nil)
	sess := &session{path: *sessionFlag}
	if token, err := sess.load(); err != nil {
		slog.Warn("Failed to read session", "path", sess.path, "error", err)
	} else {
		c.SetToken(token)
	}

	app := &app{
		client:  c,
		session: sess,
		table:   *tableFlag,
		round:   *roundFlag,
	}
	if err := app.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
