package executor

import (
	"context"

	"github.com/vk/tabflow/internal/ctxlog"
	"github.com/vk/tabflow/internal/diag"
	"github.com/vk/tabflow/internal/iotype"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// worker is the core processing loop for a single concurrent worker.
func (r *run) worker(ctx context.Context, readyChan chan *runNode, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for n := range readyChan {
		workerLogger := logger.With("workerID", workerID, "block", n.name)
		if !n.transition(Pending, Running) {
			workerLogger.Debug("Block is no longer pending, dropping it.", "state", n.State())
			continue
		}

		if err := ctx.Err(); err != nil {
			workerLogger.Warn("Context canceled, not executing block.")
			r.fail(ctx, n, diag.Errorf(diag.Node{Name: n.name, Range: n.instance.Block.Range}, "run cancelled: %v", err))
			continue
		}

		workerLogger.Debug("Worker picked up block for execution.")
		out, err := r.execute(ctx, n)
		if err != nil {
			r.fail(ctx, n, diag.From(err, diag.Node{Name: n.name, Range: n.instance.Block.Range}))
			continue
		}

		n.output = out
		n.state.Store(int32(Succeeded))
		r.preview(ctx, n)

		for _, dependent := range n.dependents {
			if dependent.depCount.Add(-1) == 0 {
				workerLogger.Debug("Unlocking dependent block.", "dependent", dependent.name)
				readyChan <- dependent
			}
		}
		r.wg.Done()
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

func (r *run) execute(ctx context.Context, n *runNode) (iotype.Value, error) {
	input := iotype.None
	if n.upstream != nil {
		input = n.upstream.output
	}

	ctx, span := r.tracer.Start(ctx, "block "+n.name, trace.WithAttributes(
		attribute.String("tabflow.block", n.name),
		attribute.String("tabflow.block_type", n.instance.Block.Type),
	))
	defer span.End()

	out, err := n.instance.Run(ctx, input, r.sink)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return out, nil
}

// fail records d for n and skips everything downstream of it.
func (r *run) fail(ctx context.Context, n *runNode, d *diag.Diagnostic) {
	ctxlog.FromContext(ctx).Error("Block execution failed.", "block", n.name, "error", d.Error())
	n.failure = d
	n.state.Store(int32(Failed))
	r.skipDependents(ctx, n, n.name)
	r.wg.Done()
}

// skipDependents recursively marks all downstream blocks as skipped and
// decrements the WaitGroup once for each of them.
func (r *run) skipDependents(ctx context.Context, n *runNode, cause string) {
	logger := ctxlog.FromContext(ctx)
	for _, dependent := range n.dependents {
		if !dependent.transition(Pending, Skipped) {
			continue
		}
		logger.Warn("Skipping dependent block due to upstream failure.", "block", dependent.name, "failed", cause)
		dependent.skippedBy = cause
		r.wg.Done()
		r.skipDependents(ctx, dependent, cause)
	}
}

// previewer is implemented by values that can render their first rows.
type previewer interface {
	Preview(rows int) string
}

func (r *run) preview(ctx context.Context, n *runNode) {
	rows := r.exec.opts.PreviewRows
	if rows <= 0 {
		return
	}
	if p, ok := n.output.(previewer); ok {
		ctxlog.FromContext(ctx).Info("Block output preview", "block", n.name, "kind", n.output.Kind(), "preview", "\n"+p.Preview(rows))
	}
}
