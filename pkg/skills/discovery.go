package skills

import (
	"context"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/jingkaihe/skilltree/pkg/types/tree"
)

// Discovery enumerates SKILL.md documents beneath a skills root and
// parses them. The filesystem is abstracted behind afero so tests can
// run against an in-memory tree.
type Discovery struct {
	fs          afero.Fs
	root        string
	concurrency int
}

// Option configures a Discovery.
type Option func(*Discovery)

// WithFs sets the filesystem to discover skills on.
func WithFs(fs afero.Fs) Option {
	return func(d *Discovery) {
		d.fs = fs
	}
}

// WithConcurrency caps the number of documents parsed in parallel.
func WithConcurrency(n int) Option {
	return func(d *Discovery) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// NewDiscovery creates a Discovery rooted at the given directory.
func NewDiscovery(root string, opts ...Option) *Discovery {
	d := &Discovery{
		fs:          afero.NewOsFs(),
		root:        root,
		concurrency: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Paths returns the root-relative paths of every SKILL.md document,
// sorted ascending so downstream stages never depend on enumeration
// order.
func (d *Discovery) Paths() ([]string, error) {
	fsys := afero.NewIOFS(afero.NewBasePathFs(d.fs, d.root))
	matches, err := doublestar.Glob(fsys, "**/"+SkillFileName, doublestar.WithFailOnIOErrors())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to enumerate skill documents under %s", d.root)
	}
	sort.Strings(matches)
	return matches, nil
}

// ParseAll reads and parses every discovered document concurrently.
// Parsing fans out across workers and joins before returning, since the
// registry needs the complete record list. Read failures abort with an
// error; malformed documents surface as diagnostics instead.
func (d *Discovery) ParseAll(ctx context.Context) ([]*tree.Skill, []tree.Diagnostic, error) {
	paths, err := d.Paths()
	if err != nil {
		return nil, nil, err
	}

	type parsed struct {
		skill *tree.Skill
		diags []tree.Diagnostic
	}
	results := make([]parsed, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			content, err := afero.ReadFile(d.fs, filepath.Join(d.root, path))
			if err != nil {
				return errors.Wrapf(err, "failed to read %s", path)
			}
			skill, diags := Parse(path, content)
			results[i] = parsed{skill: skill, diags: diags}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var records []*tree.Skill
	var diags []tree.Diagnostic
	for _, r := range results {
		if r.skill != nil {
			records = append(records, r.skill)
		}
		diags = append(diags, r.diags...)
	}
	return records, diags, nil
}
