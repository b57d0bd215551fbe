// Package builder orchestrates the skill tree pipeline: discover,
// parse, link, validate, render. It exposes the generate and check
// entry points used by the CLI. Filesystem failures are returned as
// errors and mean the tool could not run; everything content-related
// comes back as diagnostics on the result.
package builder

import (
	"context"
	"os"
	"path/filepath"

	"github.com/aymanbagabas/go-udiff"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/jingkaihe/skilltree/pkg/registry"
	"github.com/jingkaihe/skilltree/pkg/sitemap"
	"github.com/jingkaihe/skilltree/pkg/skills"
	"github.com/jingkaihe/skilltree/pkg/types/tree"
	"github.com/jingkaihe/skilltree/pkg/validator"
)

// Config configures one pipeline run.
type Config struct {
	// Root is the skills directory to scan.
	Root string
	// Artifact is the sitemap filename relative to Root. Defaults to
	// sitemap.ArtifactName.
	Artifact string
	// CategoryWarnThreshold is forwarded to the validator.
	CategoryWarnThreshold int
	// Concurrency caps parallel document parsing. Zero means NumCPU.
	Concurrency int
	// Fs overrides the filesystem, primarily for tests. Defaults to the
	// OS filesystem.
	Fs afero.Fs
}

func (c Config) fs() afero.Fs {
	if c.Fs != nil {
		return c.Fs
	}
	return afero.NewOsFs()
}

func (c Config) artifact() string {
	if c.Artifact != "" {
		return c.Artifact
	}
	return sitemap.ArtifactName
}

// ArtifactPath returns the artifact location relative to the process
// working directory.
func (c Config) ArtifactPath() string {
	return filepath.Join(c.Root, c.artifact())
}

// Result carries everything one pipeline run produced.
type Result struct {
	Registry    *registry.Registry
	Diagnostics []tree.Diagnostic
	Rendered    string
}

// HasErrors reports whether any error-level diagnostic was found.
func (r *Result) HasErrors() bool {
	return tree.HasErrors(r.Diagnostics)
}

// Err folds every error-level diagnostic into a single error for
// programmatic callers, or nil when the tree is valid.
func (r *Result) Err() error {
	var merr *multierror.Error
	for _, d := range r.Diagnostics {
		if d.Severity == tree.SeverityError {
			merr = multierror.Append(merr, errors.New(d.String()))
		}
	}
	return merr.ErrorOrNil()
}

// Run executes the pipeline without touching the artifact.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	discovery := skills.NewDiscovery(cfg.Root,
		skills.WithFs(cfg.fs()),
		skills.WithConcurrency(cfg.Concurrency),
	)

	records, parseDiags, err := discovery.ParseAll(ctx)
	if err != nil {
		return nil, err
	}

	reg := registry.Build(records)

	diags := make([]tree.Diagnostic, 0, len(parseDiags)+len(reg.Diagnostics))
	diags = append(diags, parseDiags...)
	diags = append(diags, reg.Diagnostics...)
	diags = append(diags, validator.Validate(reg, validator.Options{
		CategoryWarnThreshold: cfg.CategoryWarnThreshold,
	})...)
	tree.SortDiagnostics(diags)

	return &Result{
		Registry:    reg,
		Diagnostics: diags,
		Rendered:    sitemap.Render(reg),
	}, nil
}

// Generate runs the pipeline and rewrites the artifact, but only when
// no error-level diagnostic was found. A dirty tree leaves the artifact
// untouched.
func Generate(ctx context.Context, cfg Config) (*Result, error) {
	res, err := Run(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if res.HasErrors() {
		return res, nil
	}
	if err := afero.WriteFile(cfg.fs(), cfg.ArtifactPath(), []byte(res.Rendered), 0o644); err != nil {
		return res, errors.Wrapf(err, "failed to write %s", cfg.artifact())
	}
	return res, nil
}

// CheckResult is a Result plus the comparison against the committed
// artifact.
type CheckResult struct {
	*Result
	// Missing is true when no artifact exists on disk.
	Missing bool
	// Diff is the unified diff between the committed artifact and the
	// rendered output; empty when they match.
	Diff string
}

// Stale reports whether the committed artifact diverges from what the
// current tree renders to.
func (c *CheckResult) Stale() bool {
	return c.Missing || c.Diff != ""
}

// Check runs the pipeline and compares the rendered output byte for
// byte against the committed artifact without writing anything.
func Check(ctx context.Context, cfg Config) (*CheckResult, error) {
	res, err := Run(ctx, cfg)
	if err != nil {
		return nil, err
	}

	check := &CheckResult{Result: res}
	existing, err := afero.ReadFile(cfg.fs(), cfg.ArtifactPath())
	if err != nil {
		if os.IsNotExist(err) {
			check.Missing = true
			return check, nil
		}
		return nil, errors.Wrapf(err, "failed to read %s", cfg.artifact())
	}

	if string(existing) != res.Rendered {
		check.Diff = udiff.Unified(cfg.artifact(), cfg.artifact()+" (generated)", string(existing), res.Rendered)
	}
	return check, nil
}
