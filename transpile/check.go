package transpile

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/teranos/wsgen/errors"
)

// CheckResult holds the result of a drift check
type CheckResult struct {
	UpToDate    bool
	Differences map[string][]string // tree label -> files with differences
	// Trees indexes the compared trees by label
	Trees map[string]Tree
}

// Tree pairs a freshly generated tree with its committed counterpart.
// Either side may be a single file.
type Tree struct {
	Label     string
	Generated string
	Committed string
}

// CompareTrees compares every generated file with the committed file at the
// same relative path. Files are compared byte for byte; generated output
// carries no timestamps or other metadata.
func CompareTrees(trees []Tree) *CheckResult {
	differences := make(map[string][]string)
	byLabel := make(map[string]Tree, len(trees))
	for _, tree := range trees {
		byLabel[tree.Label] = tree
		if diffs := compareDirectory(tree.Generated, tree.Committed); len(diffs) > 0 {
			differences[tree.Label] = diffs
		}
	}
	return &CheckResult{
		UpToDate:    len(differences) == 0,
		Differences: differences,
		Trees:       byLabel,
	}
}

// Labels returns the labels of trees with differences, sorted
func (r *CheckResult) Labels() []string {
	labels := make([]string, 0, len(r.Differences))
	for label := range r.Differences {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Diff renders a unified diff from the committed to the generated version
// of one reported file. entry is an element of Differences[label]; a file
// that was never committed diffs against empty content.
func (r *CheckResult) Diff(label, entry string) (string, error) {
	tree, ok := r.Trees[label]
	if !ok {
		return "", errors.NewNotFoundError("no compared tree labelled %q", label)
	}
	rel := strings.SplitN(entry, " (", 2)[0]

	generated, committed := tree.Generated, tree.Committed
	if info, err := os.Stat(generated); err != nil || info.IsDir() {
		generated = filepath.Join(tree.Generated, rel)
		committed = filepath.Join(tree.Committed, rel)
	}

	after, err := os.ReadFile(generated)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", generated)
	}
	before, err := os.ReadFile(committed)
	if err != nil && !os.IsNotExist(err) {
		return "", errors.Wrapf(err, "failed to read %s", committed)
	}

	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: committed,
		ToFile:   "generated/" + rel,
		Context:  3,
	})
}

// compareDirectory returns the relative paths under generated whose
// committed counterpart is missing or different
func compareDirectory(generated, committed string) []string {
	var diffs []string

	info, err := os.Stat(generated)
	if os.IsNotExist(err) {
		return diffs
	}
	if err == nil && !info.IsDir() {
		if different, err := filesAreDifferent(generated, committed); err != nil {
			diffs = append(diffs, filepath.Base(generated)+" ("+err.Error()+")")
		} else if different {
			diffs = append(diffs, filepath.Base(generated))
		}
		return diffs
	}

	filepath.Walk(generated, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		if strings.HasPrefix(info.Name(), ".") {
			return nil
		}

		rel, err := filepath.Rel(generated, path)
		if err != nil {
			return err
		}

		different, err := filesAreDifferent(path, filepath.Join(committed, rel))
		if err != nil {
			diffs = append(diffs, rel+" ("+err.Error()+")")
		} else if different {
			diffs = append(diffs, rel)
		}
		return nil
	})

	return diffs
}

func filesAreDifferent(file1, file2 string) (bool, error) {
	content1, err := os.ReadFile(file1)
	if err != nil {
		return false, errors.Wrapf(err, "failed to read %s", file1)
	}

	content2, err := os.ReadFile(file2)
	if err != nil {
		if os.IsNotExist(err) {
			return false, errors.New("not committed")
		}
		return false, errors.Wrapf(err, "failed to read %s", file2)
	}

	return !bytes.Equal(content1, content2), nil
}
