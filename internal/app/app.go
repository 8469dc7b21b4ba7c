package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/tabflow/internal/ctxlog"
	"github.com/vk/tabflow/internal/diag"
	"github.com/vk/tabflow/internal/executor"
	"github.com/vk/tabflow/internal/hclload"
	"github.com/vk/tabflow/internal/pipeline"
	"github.com/vk/tabflow/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	config   *Config
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Without modules, every built-in block is registered.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	// A descriptor that does not match its executors is a programmer error.
	if err := reg.Validate(ctx); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	return &App{outW: outW, logger: logger, registry: reg, config: cfg}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// WriteTypes documents every block and constraint type as HCL.
func (a *App) WriteTypes(w io.Writer) error {
	return a.registry.Catalogue().WriteDocs(w)
}

// Run loads the configured pipeline file and runs its pipelines one after
// another. Diagnostics are written to the app's output with source snippets.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	params := runtimeParams(os.Environ(), a.config.EnvPrefix, a.config.Params)
	a.logger.Debug("Runtime parameters collected.", "names", paramNames(params))

	loader := hclload.New(a.registry.Catalogue(), hclload.Options{Params: params})
	res, diags := loader.LoadPath(ctx, a.config.PipelinePath)
	printer := hcl.NewDiagnosticTextWriter(a.outW, loader.Files(), 80, false)
	if len(diags) > 0 {
		if err := printer.WriteDiagnostics(diags); err != nil {
			a.logger.Error("Failed to print diagnostics.", "error", err)
		}
	}
	if diags.HasErrors() {
		return fmt.Errorf("failed to load %s: %w", a.config.PipelinePath, diags)
	}

	pipelines, err := a.selectPipelines(res)
	if err != nil {
		return err
	}
	if len(pipelines) == 0 {
		a.logger.Warn("No pipelines found, execution not required.", "path", a.config.PipelinePath)
		return nil
	}

	var errs []error
	for _, p := range pipelines {
		a.logger.Info("🚀 Starting pipeline", "pipeline", p.Name, "blocks", len(p.Blocks))
		report := executor.New(p, a.registry, executor.Options{
			Workers:     a.config.WorkerCount,
			Params:      params,
			PreviewRows: a.config.PreviewRows,
		}).Run(ctx)

		all := make(diag.List, 0, len(report.Warnings)+len(report.Diagnostics))
		all = append(all, report.Warnings...)
		all = append(all, report.Diagnostics...)
		if len(all) > 0 {
			if err := printer.WriteDiagnostics(all.HCL()); err != nil {
				a.logger.Error("Failed to print diagnostics.", "error", err)
			}
		}

		if err := report.Err(); err != nil {
			a.logger.Error("Pipeline failed.", "pipeline", p.Name, "run_id", report.RunID,
				"failed", report.Failed, "skipped", report.Skipped)
			errs = append(errs, err)
			continue
		}
		a.logger.Info("🏁 Pipeline finished", "pipeline", p.Name, "run_id", report.RunID, "blocks", len(report.Succeeded))
	}

	a.logger.Debug("App.Run method finished.")
	return errors.Join(errs...)
}

func (a *App) selectPipelines(res *hclload.Result) ([]*pipeline.Pipeline, error) {
	if a.config.Pipeline == "" {
		return res.Pipelines, nil
	}
	p, ok := res.Pipeline(a.config.Pipeline)
	if !ok {
		return nil, fmt.Errorf("pipeline %q is not declared in %s", a.config.Pipeline, a.config.PipelinePath)
	}
	return []*pipeline.Pipeline{p}, nil
}
