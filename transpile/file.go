package transpile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/teranos/wsgen/errors"
)

// Notice lines carried by every generated file, prefixed with the target's
// comment syntax
const (
	NoticeLine = "PLEASE DO NOT EDIT THIS FILE, IT IS GENERATED AND WILL BE OVERWRITTEN:"
	NoticeURL  = "https://github.com/ccxt/ccxt/blob/master/CONTRIBUTING.md#how-to-contribute-code"
)

// GeneratedFile is one artifact for one target language.
// Header lines always precede the body and always include the notice.
type GeneratedFile struct {
	Target Target
	Header []string
	Body   string
	Path   string
}

// NewGeneratedFile builds a file, rejecting headers without the notice
func NewGeneratedFile(target Target, header []string, body, path string) (*GeneratedFile, error) {
	if !hasNotice(header) {
		return nil, errors.NewInvalidRequestError("header for %s lacks the generated-file notice", path)
	}
	return &GeneratedFile{Target: target, Header: header, Body: body, Path: path}, nil
}

func hasNotice(header []string) bool {
	for _, line := range header {
		if strings.HasSuffix(line, NoticeLine) {
			return true
		}
	}
	return false
}

// Content renders the header, a blank line, then the body, ending in exactly
// one newline
func (f *GeneratedFile) Content() string {
	var sb strings.Builder
	for _, line := range f.Header {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(strings.TrimRight(f.Body, "\n"))
	sb.WriteString("\n")
	return sb.String()
}

// Write stores the file at its path
func (f *GeneratedFile) Write() error {
	return WriteFileAtomic(f.Path, []byte(f.Content()))
}

// WriteFileAtomic writes data to a temp file in the destination directory and
// renames it over path, so readers never observe a partially written file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "failed to create temp file for %s", path)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrapf(err, "failed to write %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "failed to close %s", path)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "failed to chmod %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "failed to rename into %s", path)
	}
	return nil
}
