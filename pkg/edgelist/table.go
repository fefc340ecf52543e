package edgelist

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrColumnNotFound  = errors.New("column not found")
	ErrMissingColumn   = errors.New("required column is not configured")
	ErrMalformedLine   = errors.New("malformed line")
	ErrHeaderRequired  = errors.New("columns selected by name need a header")
	ErrEmptyFile       = errors.New("file has no rows")
	ErrInvalidEncoding = errors.New("line is too long or not text")
)

// DefaultComment prefixes comment lines.
const DefaultComment = "#"

// maxLineSize bounds a single line of an edge list.
const maxLineSize = 16 << 20

// Column selects a field of a delimited file by header name or by index.
// The zero Column selects nothing.
type Column struct {
	name  string
	index int
	set   bool
}

// ByName selects the column whose header is name.
func ByName(name string) Column {
	return Column{name: name, set: name != ""}
}

// ByIndex selects the zero-based column index.
func ByIndex(index int) Column {
	return Column{index: index, set: index >= 0}
}

// IsSet reports whether the column selects a field.
func (c Column) IsSet() bool { return c.set }

func (c Column) String() string {
	if c.name != "" {
		return c.name
	}
	return fmt.Sprintf("#%d", c.index)
}

func (c Column) resolve(header []string) (int, error) {
	if c.name == "" {
		return c.index, nil
	}
	if header == nil {
		return 0, fmt.Errorf("%w: %q", ErrHeaderRequired, c.name)
	}
	i := slices.Index(header, c.name)
	if i < 0 {
		return 0, fmt.Errorf("%w: %q in header %v", ErrColumnNotFound, c.name, header)
	}
	return i, nil
}

// File describes the layout of one delimited file.
type File struct {
	Path string
	// Separator splits fields; empty detects tab, comma or space from the
	// first line.
	Separator string
	// Header marks the first line as column names.
	Header bool
	// Comment prefixes lines to skip; empty uses DefaultComment.
	Comment string
}

// ParseError locates a failure in an input file.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// DetectSeparator picks the separator of a line: tab, then comma, then a
// single space.
func DetectSeparator(line string) string {
	for _, sep := range []string{"\t", ",", " "} {
		if strings.Contains(line, sep) {
			return sep
		}
	}
	return "\t"
}

// row is one parsed line of a table.
type row struct {
	line    int
	fields  []string
	indices []int
}

// get returns the field selected by the i-th requested column, or "" when
// that column is unset.
func (r row) get(i int) string {
	idx := r.indices[i]
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(r.fields[idx])
}

// readTable streams the rows of f. Columns are resolved once the header is
// known and every row is checked to have them.
func readTable(ctx context.Context, f File, columns []Column, fn func(r row) error) error {
	rc, err := Open(f.Path)
	if err != nil {
		return err
	}
	defer rc.Close()

	comment := f.Comment
	if comment == "" {
		comment = DefaultComment
	}
	sep := f.Separator

	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineSize)

	var (
		indices  []int
		required int
		lineNo   int
		first    = true
	)
	resolve := func(header []string) error {
		indices = make([]int, len(columns))
		required = 0
		for i, c := range columns {
			if !c.IsSet() {
				indices[i] = -1
				continue
			}
			idx, err := c.resolve(header)
			if err != nil {
				return &ParseError{Path: f.Path, Line: lineNo, Err: err}
			}
			indices[i] = idx
			required = max(required, idx+1)
		}
		return nil
	}

	for scanner.Scan() {
		lineNo++
		if lineNo%8192 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if first && f.Header {
			first = false
			if sep == "" {
				sep = DetectSeparator(line)
			}
			if err := resolve(strings.Split(line, sep)); err != nil {
				return err
			}
			continue
		}
		if strings.HasPrefix(line, comment) {
			continue
		}
		if first {
			first = false
			if sep == "" {
				sep = DetectSeparator(line)
			}
			if err := resolve(nil); err != nil {
				return err
			}
		}

		fields := strings.Split(line, sep)
		if len(fields) < required {
			return &ParseError{
				Path: f.Path,
				Line: lineNo,
				Err:  fmt.Errorf("%w: %d fields, need %d", ErrMalformedLine, len(fields), required),
			}
		}
		if err := fn(row{line: lineNo, fields: fields, indices: indices}); err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				return err
			}
			return &ParseError{Path: f.Path, Line: lineNo, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return &ParseError{Path: f.Path, Line: lineNo + 1, Err: ErrInvalidEncoding}
		}
		return err
	}
	if first {
		return &ParseError{Path: f.Path, Line: lineNo, Err: ErrEmptyFile}
	}
	return nil
}
