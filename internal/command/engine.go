package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fbkclanna/vercast/internal/logging"
	"github.com/fbkclanna/vercast/internal/registry"
)

// DefaultTimeout bounds a single command attempt.
const DefaultTimeout = 20 * time.Minute

var tracer = otel.Tracer("github.com/fbkclanna/vercast/internal/command")

// VersionChecker looks up the latest published version of a package.
type VersionChecker interface {
	PublishedVersion(ctx context.Context, url, versionPath string) (string, error)
}

// Engine runs the commands of a workflow across packages.
type Engine struct {
	Workflow string
	// Root is the workspace root, used for runFromRoot commands.
	Root   string
	DryRun bool
	Logger *logging.Logger
	Runner Runner
	// Registry serves the fetch:check built-in.
	Registry VersionChecker
	Timeout  time.Duration
}

// New returns an Engine for workflow with the default shell runner,
// registry client and timeout.
func New(workflow, root string, log *logging.Logger) *Engine {
	if log == nil {
		log = logging.NopLogger()
	}
	return &Engine{
		Workflow: workflow,
		Root:     root,
		Logger:   log,
		Runner:   ShellRunner{},
		Registry: registry.New(registry.Settings{}),
		Timeout:  DefaultTimeout,
	}
}

// RunStage runs one stage for every package in order. Outputs are written
// to rec, which is returned; a nil rec starts a new record.
func (e *Engine) RunStage(ctx context.Context, pkgs []*Package, stage Stage, rec Record) (Record, error) {
	if rec == nil {
		rec = Record{}
	}
	for _, pkg := range pkgs {
		if err := e.runPackageStage(ctx, pkg, stage, rec); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

// RunPipeline runs every stage for a package before moving to the next
// package.
func (e *Engine) RunPipeline(ctx context.Context, pkgs []*Package, stages []Stage, rec Record) (Record, error) {
	if rec == nil {
		rec = Record{}
	}
	for _, pkg := range pkgs {
		for _, stage := range stages {
			if err := e.runPackageStage(ctx, pkg, stage, rec); err != nil {
				return rec, err
			}
		}
	}
	return rec, nil
}

func (e *Engine) runPackageStage(ctx context.Context, pkg *Package, stage Stage, rec Record) error {
	cmds := pkg.Stage(e.Workflow, stage)
	if !cmds.Configured() {
		return nil
	}
	key := stage.Key(e.Workflow)
	log := e.Logger.WithPackage(pkg.Name).WithStage(key)

	ctx, span := tracer.Start(ctx, "stage "+key, trace.WithAttributes(
		attribute.String("vercast.package", pkg.Name),
		attribute.Bool("vercast.dry_run", e.DryRun),
	))
	defer span.End()

	entry := rec.Entry(pkg.Name)
	var pipe strings.Builder
	if prev := entry.Get(stage).Stdout; prev != "" {
		pipe.WriteString(prev + "\n")
	}

	ran := false
	for _, configured := range cmds {
		run, spec := shouldRun(configured, e.DryRun)
		pc := e.context(pkg, *entry, pipe.String())
		if !run {
			line, err := e.describe(spec, pc)
			if err != nil {
				return err
			}
			log.Info(fmt.Sprintf("dryRun >> %s [%s%s]: %s", pkg.Name, key, fromRoot(spec), line))
			continue
		}
		out, err := e.runWithRetries(ctx, pkg, spec, pc, log)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		ran = true
		if spec.Pipe {
			if spec.Func != nil {
				log.Warn(fmt.Sprintf("We cannot pipe the function command in %s", pkg.Name))
			} else {
				pipe.WriteString(out + "\n")
			}
		}
	}

	if ran {
		entry.Set(stage, Output{Ran: true, Stdout: strings.TrimSuffix(pipe.String(), "\n")})
		if stage == StageMain && strings.Contains(e.Workflow, "publish") {
			entry.Published = true
		}
	}
	return nil
}

// shouldRun decides whether spec runs and returns the spec to run, which
// is the dry-run replacement when one is configured.
func shouldRun(spec Spec, dry bool) (bool, Spec) {
	if spec.DryRun.Force {
		return true, spec
	}
	if dry && spec.DryRun.Command != "" {
		alt := spec
		alt.Command = spec.DryRun.Command
		alt.Func = nil
		alt.Use = ""
		return true, alt
	}
	return !dry, spec
}

func fromRoot(spec Spec) string {
	if spec.RunFromRoot {
		return " run from the cwd"
	}
	return ""
}

func (e *Engine) runWithRetries(ctx context.Context, pkg *Package, spec Spec, pc *Context, log *logging.Logger) (string, error) {
	line, err := e.describe(spec, pc)
	if err != nil {
		return "", err
	}
	sched := newSchedule(spec.Retries)
	op := func() (string, error) {
		out, err := e.runOnce(ctx, pkg, spec, line, pc, log)
		if err != nil && ctx.Err() != nil {
			return "", backoff.Permanent(err)
		}
		return out, err
	}
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(sched),
		backoff.WithMaxTries(sched.attempts()),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, d time.Duration) {
			log.Error(fmt.Sprintf("%v, retrying in %s", err, d))
		}),
	)
}

func (e *Engine) runOnce(ctx context.Context, pkg *Package, spec Spec, line string, pc *Context, log *logging.Logger) (string, error) {
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	switch {
	case spec.Func != nil:
		if err := spec.Func(runCtx, pc); err != nil {
			if timedOut(ctx, runCtx) {
				return "", &TimeoutError{Package: pkg.Name, Command: line, After: timeout}
			}
			return "", &CommandError{Package: pkg.Name, Command: line, Err: err}
		}
		return "", nil
	case spec.Use == BuiltinFetchCheck:
		out, err := e.fetch(runCtx, pkg, spec, line)
		if err != nil && timedOut(ctx, runCtx) {
			return "", &TimeoutError{Package: pkg.Name, Command: line, After: timeout}
		}
		return out, err
	}

	dir := pkg.Path
	if spec.RunFromRoot || dir == "" {
		dir = e.Root
	}
	log.Debug("running command", "command", line, "dir", dir)
	w := newLineLogger(log)
	out, code, err := e.Runner.Run(runCtx, dir, line, w)
	w.Flush()
	if err != nil {
		if timedOut(ctx, runCtx) {
			return "", &TimeoutError{Package: pkg.Name, Command: line, After: timeout}
		}
		return "", &CommandError{Package: pkg.Name, Command: line, ExitCode: code, Output: out, Err: err}
	}
	return strings.TrimSpace(out), nil
}

// timedOut reports whether run hit its own deadline while parent is still live.
func timedOut(parent, run context.Context) bool {
	return errors.Is(run.Err(), context.DeadlineExceeded) && parent.Err() == nil
}

func (e *Engine) fetch(ctx context.Context, pkg *Package, spec Spec, url string) (string, error) {
	if e.Registry == nil {
		return "", fmt.Errorf("%s: no registry client for %s", pkg.Name, BuiltinFetchCheck)
	}
	path := spec.Options.VersionPath
	if path == "" {
		path = registry.DefaultVersionPath(url)
	}
	return e.Registry.PublishedVersion(ctx, url, path)
}

// describe renders the command line, or the url of a built-in.
func (e *Engine) describe(spec Spec, pc *Context) (string, error) {
	switch {
	case spec.Func != nil:
		return "function", nil
	case spec.Use != "":
		return render(spec.Options.URL, pc)
	default:
		return render(spec.Command, pc)
	}
}

// context builds the template data for pkg. A release tag that cannot be
// rendered, e.g. for a package without a manifest, is left empty.
func (e *Engine) context(pkg *Package, rec PackageRecord, pipe string) *Context {
	pc := &Context{
		Pkg:      pkg,
		PkgFile:  pkg.File,
		Release:  pkg.Release,
		Pipe:     pipe,
		Record:   rec,
		DryRun:   e.DryRun,
		Workflow: e.Workflow,
	}
	if pkg.ReleaseTag != "" {
		if tag, err := render(pkg.ReleaseTag, pc); err == nil {
			pc.Tag = tag
		}
	}
	return pc
}

// render executes text as a template against pc. Missing keys are errors.
func render(text string, pc *Context) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}
	t, err := template.New("command").Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse template %q: %w", text, err)
	}
	var b strings.Builder
	if err := t.Execute(&b, pc); err != nil {
		return "", fmt.Errorf("render template %q: %w", text, err)
	}
	return b.String(), nil
}

// Render renders text against the context of pkg with an empty record.
func (e *Engine) Render(pkg *Package, text string) (string, error) {
	return render(text, e.context(pkg, PackageRecord{}, ""))
}
