package orchestrator

import (
	"context"
	"os"
	"path/filepath"

	"github.com/teranos/wsgen/config"
	"github.com/teranos/wsgen/errors"
	"github.com/teranos/wsgen/transpile"
)

// Check regenerates everything into scratch and compares the result with
// the committed outputs of cfg. Nothing outside scratch is written.
func Check(ctx context.Context, cfg *config.Config, scratch string, opts ...Option) (*transpile.CheckResult, error) {
	shadow := *cfg
	shadow.Targets = make(map[string]config.TargetConfig, len(cfg.Targets))

	var trees []transpile.Tree
	for name, tc := range cfg.Targets {
		generated := config.TargetConfig{
			Folder: filepath.Join(scratch, name, "classes"),
			Tests:  filepath.Join(scratch, name, "tests"),
		}
		shadow.Targets[name] = generated
		trees = append(trees,
			transpile.Tree{Label: name, Generated: generated.Folder, Committed: tc.Folder},
			transpile.Tree{Label: name + " tests", Generated: generated.Tests, Committed: tc.Tests},
		)
	}

	if cfg.Source.TypeSurface != "" {
		data, err := os.ReadFile(cfg.Source.TypeSurface)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read type surface %s", cfg.Source.TypeSurface)
		}
		shadow.Source.TypeSurface = filepath.Join(scratch, "types", filepath.Base(cfg.Source.TypeSurface))
		if err := transpile.WriteFileAtomic(shadow.Source.TypeSurface, data); err != nil {
			return nil, err
		}
		trees = append(trees, transpile.Tree{
			Label:     "type surface",
			Generated: shadow.Source.TypeSurface,
			Committed: cfg.Source.TypeSurface,
		})
	}

	o, err := New(&shadow, opts...)
	if err != nil {
		return nil, err
	}
	if _, err := o.Run(ctx, Options{Force: true}); err != nil {
		return nil, errors.Wrap(err, "regeneration failed")
	}

	return transpile.CompareTrees(trees), nil
}
