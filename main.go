package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sadopc/wagecalc/internal/cli"
	"github.com/sadopc/wagecalc/internal/config"
	"github.com/sadopc/wagecalc/internal/logger"
	"github.com/sadopc/wagecalc/internal/store"
	"github.com/sadopc/wagecalc/internal/tui"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer log.Sync()

	s, err := store.New(cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		return 1
	}
	defer s.Close()

	if len(args) == 0 {
		app := tui.NewApp(s, log, cfg.Locale)
		p := tea.NewProgram(app, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			log.Error("tui exited", zap.Error(err))
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	err = cli.Execute(args, cli.Deps{Store: s, Log: log, Out: os.Stdout, Locale: cfg.Locale})
	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, cli.ErrPending):
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 3
	case errors.Is(err, cli.ErrUsage):
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 2
	default:
		log.Error("command failed", zap.Strings("args", args), zap.Error(err))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
}
