// Package app carries what every analysis command shares: flags, config,
// the dated run folder, logging, the run summary and metrics.
package app

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/HamletTheHamster/xray-flare-loops/internal/config"
	"github.com/HamletTheHamster/xray-flare-loops/internal/latex"
	"github.com/HamletTheHamster/xray-flare-loops/internal/logger"
	"github.com/HamletTheHamster/xray-flare-loops/internal/metrics"
	"github.com/HamletTheHamster/xray-flare-loops/internal/render"
	"github.com/HamletTheHamster/xray-flare-loops/internal/results"
	"gonum.org/v1/plot"
)

// App is one running analysis command.
type App struct {
	Command string
	Note    string
	Preview bool

	Config  *config.Config
	Log     *logger.Log
	Entry   *logger.Entry
	RunDir  string
	Summary *results.Summary
	Metrics *metrics.Recorder
}

func flags(
	command string,
	args []string,
) (
	string, bool, error,
) {

	var note string
	var preview bool

	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.StringVar(&note, "note", "", "note to append folder name")
	fs.BoolVar(&preview, "preview", false, "also draw a gnuplot quick-look")
	if err := fs.Parse(args); err != nil {
		return "", false, err
	}
	return note, preview, nil
}

// Start parses args, loads the configuration and opens the run folder.
func Start(command string, args []string) (*App, error) {
	note, preview, err := flags(command, args)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	runDir := render.RunDir(cfg.FigureDir, note, time.Now())
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("run folder: %w", err)
	}

	log := logger.New(cfg.LogLevel, runDir)
	a := &App{
		Command: command,
		Note:    note,
		Preview: preview,
		Config:  cfg,
		Log:     log,
		Entry:   log.WithComponent(command),
		RunDir:  runDir,
		Summary: results.NewSummary(log.RunID, command, note),
		Metrics: metrics.New(command, log.RunID),
	}
	a.Entry.WithFields(logger.Fields{
		"run_dir":  runDir,
		"data_dir": cfg.DataDir,
		"star_id":  cfg.StarID,
	}).Info("run started")
	return a, nil
}

// Input resolves name in the data folder and records it as read.
func (a *App) Input(name string) string {
	path := a.Config.DataPath(name)
	a.Summary.Input(path)
	return path
}

// SaveFigure writes p into the run folder.
func (a *App) SaveFigure(p *plot.Plot, name string) error {
	path, err := render.Save(p, a.RunDir, name)
	if err != nil {
		return err
	}
	a.Summary.Output(path)
	a.Entry.WithFields(logger.Fields{"figure": path}).Debug("figure saved")
	return nil
}

// WriteFragment writes a LaTeX fragment into the output folder.
func (a *App) WriteFragment(name, body string) error {
	path, err := latex.WriteFragment(a.Config.OutputDir, name, body)
	if err != nil {
		return err
	}
	a.Summary.Output(path)
	a.Entry.WithFields(logger.Fields{"fragment": name, "value": body}).Info("fragment written")
	return nil
}

// WriteTable writes a CSV table into the output folder.
func (a *App) WriteTable(name string, header []string, rows [][]string) error {
	path := a.Config.OutputPath(name)
	if err := results.WriteCSV(path, header, rows); err != nil {
		return err
	}
	a.Summary.Output(path)
	return nil
}

// PreviewPlot draws a gnuplot quick-look into the run folder when -preview
// was given. A missing gnuplot is logged, not fatal.
func (a *App) PreviewPlot(name, title, xlabel, ylabel string, series ...render.Series) {
	if !a.Preview {
		return
	}
	path := filepath.Join(a.RunDir, name+"_preview.png")
	if err := render.Preview(path, title, xlabel, ylabel, series...); err != nil {
		a.Entry.WithError(err).Warn("preview skipped")
		return
	}
	a.Summary.Output(path)
}

// Finish writes the run summary and metrics next to the log.
func (a *App) Finish() error {
	if err := a.Metrics.WriteTextfile(filepath.Join(a.RunDir, "metrics.prom")); err != nil {
		return err
	}
	if err := a.Summary.Write(filepath.Join(a.RunDir, "summary.yaml")); err != nil {
		return err
	}
	a.Entry.WithFields(logger.Fields{
		"outputs": len(a.Summary.Outputs),
		"elapsed": a.Summary.Elapsed,
	}).Info("run finished")
	return nil
}

// Exit logs err, if any, and ends the process with the matching status.
func (a *App) Exit(err error) {
	if ferr := a.Finish(); ferr != nil && err == nil {
		err = ferr
	}
	if err != nil {
		a.Entry.WithError(err).Error("run failed")
		os.Exit(1)
	}
	os.Exit(0)
}
