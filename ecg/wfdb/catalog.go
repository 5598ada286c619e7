package wfdb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cwbudde/algo-ecg/ecg"
)

// DefaultPattern matches every record header in a directory.
const DefaultPattern = "*.hea"

// ErrNoRecords is returned when discovery finds nothing to read.
var ErrNoRecords = errors.New("wfdb: no records found")

// Catalog discovers record names by globbing a directory.
type Catalog struct {
	Dir     string
	Pattern string
}

// Discover returns the sorted, de-duplicated names of the files matching
// the pattern, with their extensions removed. A pattern matching signal
// files ("*.dat") therefore yields the same names as one matching headers.
func (c Catalog) Discover() ([]string, error) {
	pattern := c.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	matches, err := filepath.Glob(filepath.Join(c.Dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("wfdb: pattern %q: %w", pattern, err)
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		base := filepath.Base(m)
		names = append(names, strings.TrimSuffix(base, filepath.Ext(base)))
	}
	slices.Sort(names)
	names = slices.Compact(names)
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoRecords, filepath.Join(c.Dir, pattern))
	}
	return names, nil
}

// Database combines discovery and reading of one directory.
type Database struct {
	Catalog
	reader *Reader
}

// Option configures a Database.
type Option func(*Database)

// WithPattern sets the discovery glob.
func WithPattern(pattern string) Option {
	return func(db *Database) { db.Pattern = pattern }
}

// WithAnnotator sets the annotation file extension.
func WithAnnotator(ext string) Option {
	return func(db *Database) { db.reader.Annotator = ext }
}

// Open returns a database rooted at dir. The directory is not read until
// Records or Load is called.
func Open(dir string, opts ...Option) *Database {
	db := &Database{
		Catalog: Catalog{Dir: dir, Pattern: DefaultPattern},
		reader:  NewReader(dir),
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Records lists the record names in discovery order.
func (db *Database) Records(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return db.Discover()
}

// Load reads record name and its annotations.
func (db *Database) Load(ctx context.Context, name string) (*ecg.Record, []ecg.Annotation, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	rec, err := db.reader.ReadRecord(name)
	if err != nil {
		return nil, nil, err
	}
	anns, err := db.reader.ReadAnnotations(name)
	if err != nil {
		return nil, nil, err
	}
	return rec, anns, nil
}

// Version identifies the stored content of record name by the size and
// modification time of its header, signal and annotation files. Rewriting
// any of them changes the version.
func (db *Database) Version(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	h, err := db.reader.ReadHeader(name)
	if err != nil {
		return "", err
	}
	ext := db.reader.Annotator
	if ext == "" {
		ext = DefaultAnnotator
	}

	files := []string{name + ".hea"}
	for _, s := range h.Signals {
		if !slices.Contains(files, s.File) {
			files = append(files, s.File)
		}
	}
	files = append(files, name+"."+ext)

	var b strings.Builder
	for _, f := range files {
		fi, err := os.Stat(filepath.Join(db.Dir, f))
		if err != nil {
			return "", fmt.Errorf("record %s: %w", name, err)
		}
		fmt.Fprintf(&b, "%s:%d:%d;", f, fi.Size(), fi.ModTime().UnixNano())
	}
	return b.String(), nil
}

// Reader returns the underlying record reader.
func (db *Database) Reader() *Reader { return db.reader }
