package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/mavenbuild/pkg/archive"
	"github.com/matzehuels/mavenbuild/pkg/artifact"
	"github.com/matzehuels/mavenbuild/pkg/errors"
	"github.com/matzehuels/mavenbuild/pkg/observability"
	"github.com/matzehuels/mavenbuild/pkg/pom"
)

// Runner executes extraction runs. Both the CLI and the HTTP adapter use it.
//
// The Runner is stateless except for the logger. Multiple goroutines can
// safely use the same Runner with different options.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. A nil logger falls back to log.Default().
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// Scan walks opts.Root and resolves the extraction plan without writing
// anything.
func (r *Runner) Scan(ctx context.Context, opts Options) (*Plan, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForScan(); err != nil {
		return nil, err
	}
	idx, err := r.walk(ctx, &opts)
	if err != nil {
		return nil, err
	}
	return Resolve(idx), nil
}

// Execute runs the complete walk → resolve → extract pipeline.
//
// Failures of single archives or manifests are recorded in the report and
// never abort the run. The returned error is non-nil only for invalid
// options, an unreadable root or cancellation; on cancellation the partial
// report is returned as well.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Report, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger

	report := newReport(&opts)
	idx, err := r.walk(ctx, &opts)
	if err != nil {
		return nil, err
	}
	report.Artifacts = idx.Total()

	plan := Resolve(idx)
	report.skipPlan(plan)
	logger.Info("resolved extraction plan",
		"steps", len(plan.Steps),
		"shadowed", len(plan.Shadowed()),
		"unkeyable", len(plan.Unkeyable))

	x := &execution{
		opts:      &opts,
		logger:    logger,
		extractor: archive.NewExtractor(opts.Fs, archive.Options{BufferSize: opts.BufferSize, Logger: logger}),
		render:    opts.RenderOptions(),
	}

	for _, pass := range Passes {
		steps := plan.Pass(pass)
		if len(steps) == 0 {
			continue
		}
		outcomes, err := x.runPass(ctx, steps)
		report.Outcomes = append(report.Outcomes, outcomes...)
		if err != nil {
			report.Canceled = true
			report.finish()
			return report, err
		}
	}

	report.finish()
	logger.Info("extraction finished",
		"succeeded", report.Summary.Succeeded,
		"skipped", report.Summary.Skipped,
		"failed", report.Summary.Failed,
		"duration", report.Duration.Round(time.Millisecond))
	return report, nil
}

func (r *Runner) walk(ctx context.Context, opts *Options) (*artifact.Index, error) {
	start := time.Now()
	idx, err := artifact.Walk(ctx, opts.Fs, opts.Root, opts.Logger)
	total, unkeyable := 0, 0
	if idx != nil {
		total, unkeyable = idx.Total(), len(idx.Unkeyable())
	}
	observability.Extraction().OnWalkComplete(ctx, opts.Root, total, unkeyable, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	opts.Logger.Info("indexed artifacts", "root", opts.Root, "total", total, "duration", time.Since(start).Round(time.Millisecond))
	return idx, nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// execution holds the per-run collaborators shared by all steps.
type execution struct {
	opts      *Options
	logger    *log.Logger
	extractor *archive.Extractor
	render    pom.RenderOptions
}

// runPass executes the steps of one pass. Steps sharing a module directory
// run in order on one goroutine; distinct modules run concurrently up to
// opts.Workers. Outcomes are returned in step order.
func (x *execution) runPass(ctx context.Context, steps []Step) ([]Outcome, error) {
	outcomes := make([]Outcome, len(steps))
	indices := lo.Range(len(steps))
	groups := lo.GroupBy(indices, func(i int) string { return steps[i].ModuleDir() })
	order := lo.Uniq(lo.Map(indices, func(i int, _ int) string { return steps[i].ModuleDir() }))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(x.opts.Workers)
	for _, dir := range order {
		group := groups[dir]
		g.Go(func() error {
			for _, i := range group {
				if err := gctx.Err(); err != nil {
					return err
				}
				outcomes[i] = x.runStep(gctx, steps[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return lo.Filter(outcomes, func(o Outcome, _ int) bool { return o.Status != "" }), err
	}
	if err := ctx.Err(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

// runStep extracts the primary archive and the merged jar of one step and
// rebuilds the manifests they leave behind.
func (x *execution) runStep(ctx context.Context, s Step) Outcome {
	start := time.Now()
	key := s.Key()
	hooks := observability.Extraction()
	hooks.OnStepStart(ctx, string(s.Pass), key)

	out := Outcome{
		Kind:   s.Pass,
		Key:    key,
		Path:   s.Primary.Path,
		Module: s.ModuleDir(),
		Status: StatusSucceeded,
	}
	dest := filepath.Join(x.opts.Destination, filepath.FromSlash(s.ModuleDir()))

	if s.Pass == artifact.KindJar {
		x.logger.Info("jarWithoutDar", "jar", key)
	}
	x.extract(ctx, s, s.Pass, s.Primary.Path, dest, &out)

	if s.Merge != nil && ctx.Err() == nil {
		x.logger.Info(mergeMessage(s.Pass), "jar", key)
		out.Merged = s.Merge.Path
		x.extract(ctx, s, artifact.KindJar, s.Merge.Path, dest, &out)
	}

	out.Duration = time.Since(start)
	hooks.OnStepComplete(ctx, string(s.Pass), key, string(out.Status), out.Duration, out.Err)
	return out
}

func mergeMessage(pass artifact.Kind) string {
	switch pass {
	case artifact.KindDar:
		return "jarMatchingDar"
	case artifact.KindEar:
		return "jarMatchingEar"
	default:
		return "jarMatchingWar"
	}
}

// extract unpacks one archive of a step into dest and folds the result into
// out.
func (x *execution) extract(ctx context.Context, s Step, kind artifact.Kind, src, dest string, out *Outcome) {
	res, err := x.extractor.Extract(ctx, kind, src, dest, func(ctx context.Context, m archive.Manifest) {
		x.manifest(ctx, s, m, out)
	})
	if res != nil {
		out.Files += res.Files
		out.Bytes += res.Bytes
		for _, n := range res.Nested {
			out.fail(fmt.Errorf("nested %s %s: %w", n.Kind, n.Entry, n.Err))
		}
	}
	if err != nil {
		if ctx.Err() == nil {
			x.logger.Error("extractionFailed", "kind", kind, "path", src, "err", err)
		}
		out.fail(err)
	}
}

// manifest rebuilds the pom.xml reported by the extractor. A standalone jar
// with an external pom uses the external one in place of its own.
func (x *execution) manifest(ctx context.Context, s Step, m archive.Manifest, out *Outcome) {
	if s.POM != nil && m.Kind == artifact.KindJar && m.Archive == s.Primary.Path {
		if err := copyFile(x.opts.Fs, s.POM.Path, m.Path); err != nil {
			x.logger.Error("ioExceptionInPomParsing", "path", s.POM.Path, "err", err)
			out.Manifests = append(out.Manifests, ManifestOutcome{Path: m.Path, Status: StatusFailed, Error: err.Error(), Err: err})
			return
		}
		x.logger.Info("pomMatchingJar", "jar", s.Key(), "pom", s.POM.Path)
		m.Present = true
	}

	if !m.Present {
		if m.Kind == artifact.KindJar {
			x.logger.Warn("noPomInJar", "jar", s.Key())
		}
		x.synthesize(ctx, m, out)
		return
	}

	_, err := pom.Reconstruct(x.opts.Fs, m.Path, m.Bundled, x.render)
	observability.Extraction().OnManifestRewrite(ctx, m.Path, len(m.Bundled), err)
	mo := ManifestOutcome{Path: m.Path, Status: StatusSucceeded, Bundled: len(m.Bundled)}
	if err != nil {
		x.logger.Error("ioExceptionInPomParsing", "path", m.Path, "err", err)
		mo.Status, mo.Error, mo.Err = StatusFailed, err.Error(), err
	}
	out.Manifests = append(out.Manifests, mo)
}

// synthesize writes the default manifest for an archive without one. A pom
// already written by an earlier archive of the same step is left alone.
func (x *execution) synthesize(ctx context.Context, m archive.Manifest, out *Outcome) {
	created, err := pom.Synthesize(x.opts.Fs, m.Path, m.Bundled, x.render)
	if err == nil && !created {
		out.Manifests = append(out.Manifests, ManifestOutcome{Path: m.Path, Status: StatusSkipped})
		return
	}
	observability.Extraction().OnManifestRewrite(ctx, m.Path, len(m.Bundled), err)
	mo := ManifestOutcome{Path: m.Path, Status: StatusSucceeded, Bundled: len(m.Bundled), Synthesized: true}
	if err != nil {
		x.logger.Error("ioExceptionInPomParsing", "path", m.Path, "err", err)
		mo.Status, mo.Error, mo.Err = StatusFailed, err.Error(), err
	} else {
		x.logger.Debug("pomSynthesized", "path", m.Path)
	}
	out.Manifests = append(out.Manifests, mo)
}

// copyFile copies an external manifest next to the extracted module,
// leaving the original in place.
func copyFile(fsys afero.Fs, src, dst string) error {
	data, err := afero.ReadFile(fsys, src)
	if err != nil {
		return errors.Wrap(errors.ErrCodeManifest, err, "read %s", src)
	}
	if err := fsys.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeManifest, err, "create %s", filepath.Dir(dst))
	}
	if err := afero.WriteFile(fsys, dst, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeManifest, err, "write %s", dst)
	}
	return nil
}
