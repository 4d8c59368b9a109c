package orchestrator

import (
	"context"
	"os"

	"github.com/teranos/wsgen/errors"
	"github.com/teranos/wsgen/logger"
	"github.com/teranos/wsgen/transpile"
	"github.com/teranos/wsgen/transpile/header"
	"github.com/teranos/wsgen/transpile/imports"
)

// generateUnits renders each unit in order, recording results in report.
// A failing unit does not stop the others.
func (o *Orchestrator) generateUnits(ctx context.Context, ids []string, force bool, report *Report) {
	log := logger.LoggerFromContext(ctx).Named("units")
	targets := len(o.dialects.Targets())

	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}
		u := o.unit(id)

		if !force && upToDate(u) {
			log.Debugw("Unit up to date", logger.FieldUnit, id)
			report.Skipped++
			report.Classes = append(report.Classes, id)
			continue
		}

		className, err := o.generateUnit(ctx, u)
		if err != nil {
			log.Errorw("Unit failed", logger.FieldUnit, id, logger.FieldError, err)
			report.Failed = append(report.Failed, UnitFailure{Unit: id, Err: err})
			continue
		}

		log.Infow("Generated unit", logger.FieldUnit, id, logger.FieldCount, targets)
		report.Generated++
		report.Classes = append(report.Classes, className)
		report.Files += targets
	}
}

// generateUnit renders every target before writing any, so a transform
// failure leaves the previous outputs in place
func (o *Orchestrator) generateUnit(ctx context.Context, u transpile.Unit) (string, error) {
	var files []*transpile.GeneratedFile
	var className string

	for _, target := range o.dialects.Targets() {
		f, name, err := o.render(ctx, u, target)
		if err != nil {
			return "", errors.Wrapf(err, "%s (%s)", u.ID, target)
		}
		files = append(files, f)
		className = name
	}

	for _, f := range files {
		if err := f.Write(); err != nil {
			return "", errors.Wrapf(err, "%s (%s)", u.ID, f.Target)
		}
	}
	return className, nil
}

// render produces one target file: resolved class declaration, engine body
// and footer, under a header carrying the parent import followed by the
// synthesized helper imports
func (o *Orchestrator) render(ctx context.Context, u transpile.Unit, target transpile.Target) (*transpile.GeneratedFile, string, error) {
	d, err := o.dialects.Get(target)
	if err != nil {
		return nil, "", err
	}

	tr, err := o.engine.Transpile(ctx, u.Source, target)
	if err != nil {
		return nil, "", err
	}

	base, err := o.resolver.Resolve(tr.Parent)
	if err != nil {
		return nil, "", err
	}

	body := d.ClassDeclaration(tr.ClassName, base) + "\n" + tr.Body
	if footer := d.ClassFooter(); footer != "" {
		body += "\n" + footer
	}

	lines := header.Assemble(d, imports.Merge(d.ClassImports(base), imports.Synthesize(body, d)))
	f, err := transpile.NewGeneratedFile(target, lines, body, u.Outputs[target])
	if err != nil {
		return nil, "", err
	}

	logger.LoggerFromContext(ctx).Debugw("Rendered unit",
		logger.FieldUnit, u.ID,
		logger.FieldTarget, string(target),
		"base", base.Kind.String())
	return f, tr.ClassName, nil
}

// upToDate reports whether every output exists and is no older than the
// canonical source
func upToDate(u transpile.Unit) bool {
	src, err := os.Stat(u.Source)
	if err != nil {
		return false
	}
	for _, out := range u.Outputs {
		info, err := os.Stat(out)
		if err != nil || info.ModTime().Before(src.ModTime()) {
			return false
		}
	}
	return true
}
