// Package typesurface keeps the streaming namespace of the shared ambient
// type declaration file in step with the generated classes.
package typesurface

import (
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/teranos/wsgen/errors"
	"github.com/teranos/wsgen/logger"
	"github.com/teranos/wsgen/transpile"
	"github.com/teranos/wsgen/transpile/util"
)

// Marker opens the managed region. The region ends at the first close brace
// that balances it.
const Marker = "export namespace pro {"

// Boilerplate declarations that precede the per-class lines
var Boilerplate = []string{
	"export const exchanges: string[]",
	"class Exchange  extends ExchangePro {}",
}

// Exporter rewrites the managed region of one declaration file.
// A single Exporter serializes its exports; callers sharing a file across
// processes must arrange exclusion themselves.
type Exporter struct {
	Path string
	mu   sync.Mutex
}

// NewExporter creates an exporter for the declaration file at path
func NewExporter(path string) *Exporter {
	return &Exporter{Path: path}
}

// Export replaces the managed region with one declaration per class name.
// A missing or unbalanced region fails with ErrTypeSurfaceDesync and leaves
// the file untouched.
func (e *Exporter) Export(classNames []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	content, err := os.ReadFile(e.Path)
	if err != nil {
		return errors.Wrapf(err, "failed to read type surface %s", e.Path)
	}

	updated, err := Render(string(content), classNames)
	if err != nil {
		return errors.Wrapf(err, "type surface %s", e.Path)
	}

	if updated == string(content) {
		logger.Debugw("Type surface unchanged", logger.FieldFile, e.Path)
		return nil
	}

	if err := transpile.WriteFileAtomic(e.Path, []byte(updated)); err != nil {
		return err
	}
	logger.Infow("Exported type surface",
		logger.FieldFile, e.Path,
		logger.FieldCount, len(classNames))
	return nil
}

// Render returns content with the managed region rebuilt for classNames.
// Names are sorted and deduplicated so repeated exports converge.
func Render(content string, classNames []string) (string, error) {
	start, end, indent, err := locate(content)
	if err != nil {
		return "", err
	}

	inner := indent + "    "
	lines := []string{indent + Marker}
	for _, b := range Boilerplate {
		lines = append(lines, inner+b)
	}
	for _, name := range util.SortedUnique(classNames) {
		lines = append(lines, inner+"class "+name+" extends Exchange {}")
	}
	lines = append(lines, indent+"}")

	return content[:start] + strings.Join(lines, "\n") + content[end:], nil
}

// Classes lists the per-class names currently declared in the managed region
func Classes(content string) ([]string, error) {
	start, end, _, err := locate(content)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, line := range strings.Split(content[start:end], "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "class ") || !strings.HasSuffix(line, " extends Exchange {}") {
			continue
		}
		names = append(names, strings.TrimSuffix(strings.TrimPrefix(line, "class "), " extends Exchange {}"))
	}
	sort.Strings(names)
	return names, nil
}

// locate finds the managed region. start is the beginning of the marker's
// line, end is just past the balancing brace, indent is the marker line's
// leading whitespace.
func locate(content string) (start, end int, indent string, err error) {
	idx := strings.Index(content, Marker)
	if idx < 0 {
		return 0, 0, "", errors.WithHintf(
			errors.Wrapf(errors.ErrTypeSurfaceDesync, "marker %q not found", Marker),
			"restore the %q block in the declaration file", Marker)
	}

	start = strings.LastIndex(content[:idx], "\n") + 1
	prefix := content[start:idx]
	if strings.TrimSpace(prefix) != "" {
		// Marker follows other text on its line; keep that text
		start = idx
		prefix = ""
	}

	depth := 1
	for i := idx + len(Marker); i < len(content); i++ {
		switch content[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return start, i + 1, prefix, nil
			}
		}
	}
	return 0, 0, "", errors.Wrapf(errors.ErrTypeSurfaceDesync, "block opened by %q is never closed", Marker)
}
