package executor

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/vk/tabflow/internal/ctxlog"
	"github.com/vk/tabflow/internal/diag"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// run holds everything shared by the workers of one run.
type run struct {
	exec   *Executor
	tracer trace.Tracer
	sink   *diag.Sink
	wg     sync.WaitGroup
}

// Run executes every block of the pipeline and reports the outcome. It
// returns once every block has succeeded, failed or been skipped.
func (e *Executor) Run(ctx context.Context) *Report {
	runID := uuid.NewString()
	ctx = ctxlog.With(ctx, "run_id", runID, "pipeline", e.pipeline.Name)
	logger := ctxlog.FromContext(ctx)

	r := &run{
		exec:   e,
		tracer: e.opts.TracerProvider.Tracer(tracerName),
		sink:   &diag.Sink{},
	}
	ctx, span := r.tracer.Start(ctx, "pipeline "+e.pipeline.Name, trace.WithAttributes(
		attribute.String("tabflow.run_id", runID),
		attribute.Int("tabflow.blocks", len(e.order)),
	))
	defer span.End()

	nodes := e.instantiate()
	readyChan := make(chan *runNode, len(nodes))

	logger.Info("▶️ Starting pipeline", "blocks", len(nodes), "workers", e.opts.Workers)
	logger.Debug("Initializing executor, finding root nodes...")
	r.wg.Add(len(nodes))
	for _, name := range e.order {
		if n := nodes[name]; n.depCount.Load() == 0 {
			logger.Debug("Found root node.", "block", name)
			readyChan <- n
		}
	}

	logger.Debug("Starting worker pool.", "workers", e.opts.Workers)
	for i := 0; i < e.opts.Workers; i++ {
		go r.worker(ctx, readyChan, i)
	}

	r.wg.Wait()
	close(readyChan)

	report := e.report(runID, nodes, r.sink)
	if len(report.Failed) > 0 {
		span.SetStatus(codes.Error, report.Err().Error())
		logger.Error("❌ Pipeline finished with failures", "failed", report.Failed, "skipped", report.Skipped)
	} else {
		logger.Info("✅ Finished pipeline", "succeeded", len(report.Succeeded))
	}
	return report
}

// instantiate creates fresh executor instances and wires the run graph.
func (e *Executor) instantiate() map[string]*runNode {
	nodes := make(map[string]*runNode, len(e.order))
	for _, b := range e.pipeline.Blocks {
		nodes[b.Name] = &runNode{
			name:     b.Name,
			instance: e.registry.Create(b, e.opts.Params),
		}
	}
	for _, name := range e.order {
		n := nodes[name]
		deps, _ := e.graph.Dependencies(name)
		n.depCount.Store(int32(len(deps)))
		if len(deps) == 1 {
			n.upstream = nodes[deps[0]]
		}
		dependents, _ := e.graph.Dependents(name)
		for _, d := range dependents {
			n.dependents = append(n.dependents, nodes[d])
		}
	}
	return nodes
}
