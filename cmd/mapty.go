package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/rivo/tview"

	"github.com/lowaak/mapty/internal/config"
	"github.com/lowaak/mapty/internal/geo"
	"github.com/lowaak/mapty/internal/go_func_utils"
	"github.com/lowaak/mapty/internal/logging"
	"github.com/lowaak/mapty/internal/replay"
	"github.com/lowaak/mapty/internal/tracker"
)

// Lines buffered between the logger and the log pane
const uiLogBuffer = 256

func main() {
	cfg, err := config.Load(os.Args[1:], os.Stderr)
	if errors.Is(err, config.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "mapty: %v\n", err)
		os.Exit(2)
	}

	fileWriter := logging.NewFileWriter(cfg.Log)

	if cfg.ScriptPath != "" {
		err = runScript(cfg, fileWriter)
	} else {
		err = runTerminal(cfg, fileWriter)
	}
	fileWriter.Close()

	if err != nil {
		fmt.Fprintf(os.Stderr, "mapty: %v\n", err)
		os.Exit(1)
	}
}

// session is one controller with its model and view
type session struct {
	model      *tracker.SessionModel
	controller *tracker.SessionController
	base       *tracker.BaseUIView
}

func newSession(cfg config.Config, logger *log.Logger, model *tracker.SessionModel, ui tracker.UIViewImpl) *session {
	controller := tracker.NewSessionController(tracker.SessionControllerArgs{
		Model:     model,
		Locator:   geo.NewStaticLocator(cfg.Location),
		Map:       ui,
		Form:      ui,
		List:      ui,
		Alerter:   ui,
		Scheduler: ui,
		Zoom:      cfg.Zoom,
		Logger:    logger,
	})
	base := tracker.NewBaseUIView(tracker.NewBaseUIViewArg{
		UIViewImpl: ui,
		Model:      model,
		Controller: controller,
		Logger:     logger,
	})
	return &session{model: model, controller: controller, base: base}
}

func (s *session) shutdown() {
	s.base.Shutdown()
	s.controller.Shutdown()
	s.model.Shutdown()
}

// runTerminal runs the interactive curses UI until the user quits
func runTerminal(cfg config.Config, fileWriter io.Writer) error {
	uiWriter := logging.NewUIWriter(uiLogBuffer)
	logger := logging.New(fileWriter, uiWriter)
	logger.Println("mapty: starting terminal UI")

	model := tracker.NewSessionModel(logger, uiWriter.Lines())
	ui := tracker.NewCursesUIView(logger, tview.NewApplication(), cfg.Attribution)
	s := newSession(cfg, logger, model, ui)
	defer s.shutdown()

	return s.base.Run()
}

// runScript replays a script against the console view
func runScript(cfg config.Config, fileWriter io.Writer) error {
	logger := logging.New(fileWriter)

	script, err := replay.LoadFile(cfg.ScriptPath)
	if err != nil {
		return err
	}
	logger.Printf("mapty: replaying %s (%d steps)", cfg.ScriptPath, len(script.Steps))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	model := tracker.NewSessionModel(logger, nil)
	ui := tracker.NewConsoleUIView(logger, os.Stdout, model, cfg.OutputFormat == config.FormatHTML)
	s := newSession(cfg, logger, model, ui)
	defer s.shutdown()

	type outcome struct {
		summary replay.Summary
		err     error
	}
	done := make(chan outcome, 1)
	go_func_utils.SafeGo(logger, "replay.Run", func() {
		summary, err := replay.Run(ctx, script, ui, logger)
		done <- outcome{summary: summary, err: err}
		ui.Quit()
	})

	if err := s.base.Run(); err != nil {
		return err
	}
	result := <-done
	if result.err != nil {
		return result.err
	}

	color.New(color.FgGreen).Fprintf(os.Stderr, "%d workout(s) recorded, %d submission(s) rejected\n",
		result.summary.Recorded, result.summary.Rejected)
	return nil
}
