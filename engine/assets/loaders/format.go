package loaders

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spaghettifunk/marionette/engine/core"
	"github.com/spaghettifunk/marionette/engine/math"
)

// File extensions of the four sibling files describing a model.
const (
	ModelExtension        = ".model"
	MaterialExtension     = ".material"
	SkeletonExtension     = ".skeleton"
	AnimationSetExtension = ".animset"
)

const (
	noneTag      = "<NONE>"
	animationTag = "<ANIMATION>"
)

// WithExtension replaces the extension of path with ext.
func WithExtension(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// formatFloat writes the shortest text that parses back to the same float32.
func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

// textWriter writes the line based formats and keeps the first write error.
type textWriter struct {
	w   *bufio.Writer
	err error
}

func newTextWriter(w io.Writer) *textWriter {
	return &textWriter{w: bufio.NewWriter(w)}
}

func (tw *textWriter) printf(format string, args ...interface{}) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, format, args...)
}

func (tw *textWriter) line(s string) {
	tw.printf("%s\n", s)
}

func (tw *textWriter) floats(values ...float32) {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatFloat(v)
	}
	tw.line(strings.Join(parts, " "))
}

func (tw *textWriter) ints(values ...int) {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	tw.line(strings.Join(parts, " "))
}

func joinFields(fields []interface{}) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprint(f)
	}
	return strings.Join(parts, " ")
}

func (tw *textWriter) matrix(m math.Mat4) {
	for row := 0; row < 4; row++ {
		tw.floats(m.Data[row*4 : row*4+4]...)
	}
}

func (tw *textWriter) flush() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.w.Flush()
}

// writeFile creates path and hands a writer to fn.
func writeFile(path string, fn func(tw *textWriter)) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	tw := newTextWriter(file)
	fn(tw)
	if err := tw.flush(); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}

// textReader reads the line based formats. Blank lines are skipped and every
// error it returns wraps core.ErrMalformedAsset with the file and line.
type textReader struct {
	path    string
	scanner *bufio.Scanner
	lineNo  int
	raw     string
}

func newTextReader(path string, r io.Reader) *textReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &textReader{path: path, scanner: scanner}
}

func (tr *textReader) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%s:%d: %s: %w", tr.path, tr.lineNo, fmt.Sprintf(format, args...), core.ErrMalformedAsset)
}

func (tr *textReader) next() (string, error) {
	for tr.scanner.Scan() {
		tr.lineNo++
		tr.raw = tr.scanner.Text()
		line := strings.TrimSpace(tr.raw)
		if line != "" {
			return line, nil
		}
	}
	if err := tr.scanner.Err(); err != nil {
		return "", tr.errorf("%v", err)
	}
	return "", tr.errorf("unexpected end of file")
}

// field reads a "Label: value" line and returns value.
func (tr *textReader) field(label string) (string, error) {
	line, err := tr.next()
	if err != nil {
		return "", err
	}
	value, ok := strings.CutPrefix(line, label+":")
	if !ok {
		return "", tr.errorf("expected %q, got %q", label, line)
	}
	return strings.TrimSpace(value), nil
}

// nameField reads a "Label: value" line and returns value exactly as written,
// surrounding spaces included.
func (tr *textReader) nameField(label string) (string, error) {
	if _, err := tr.field(label); err != nil {
		return "", err
	}
	line := strings.TrimLeft(strings.TrimSuffix(tr.raw, "\r"), " \t")
	value, _ := strings.CutPrefix(line, label+":")
	return strings.TrimPrefix(value, " "), nil
}

func (tr *textReader) intField(label string) (int, error) {
	value, err := tr.field(label)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, tr.errorf("%s: %v", label, err)
	}
	return n, nil
}

// countField reads a non-negative integer field.
func (tr *textReader) countField(label string) (int, error) {
	n, err := tr.intField(label)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, tr.errorf("%s: negative count %d", label, n)
	}
	return n, nil
}

func (tr *textReader) floatField(label string) (float32, error) {
	value, err := tr.field(label)
	if err != nil {
		return 0, err
	}
	return tr.parseFloat(value)
}

func (tr *textReader) parseFloat(s string) (float32, error) {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, tr.errorf("%v", err)
	}
	return float32(f), nil
}

// floats reads a line of exactly n floats.
func (tr *textReader) floats(n int) ([]float32, error) {
	line, err := tr.next()
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(line)
	if len(fields) != n {
		return nil, tr.errorf("expected %d values, got %d", n, len(fields))
	}
	values := make([]float32, n)
	for i, field := range fields {
		if values[i], err = tr.parseFloat(field); err != nil {
			return nil, err
		}
	}
	return values, nil
}

// ints reads a line of integers. An empty list is allowed.
func (tr *textReader) ints(line string) ([]int, error) {
	fields := strings.Fields(line)
	values := make([]int, len(fields))
	for i, field := range fields {
		v, err := strconv.Atoi(field)
		if err != nil {
			return nil, tr.errorf("%v", err)
		}
		values[i] = v
	}
	return values, nil
}

func (tr *textReader) matrix() (math.Mat4, error) {
	m := math.Mat4{}
	for row := 0; row < 4; row++ {
		values, err := tr.floats(4)
		if err != nil {
			return m, err
		}
		copy(m.Data[row*4:row*4+4], values)
	}
	return m, nil
}

// readFile opens path and hands a reader to fn. A missing file is not an
// error: fn is not called and readFile reports false.
func readFile(path string, fn func(tr *textReader) error) (bool, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		core.LogDebug("%s not found, skipping", path)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer file.Close()

	if err := fn(newTextReader(path, file)); err != nil {
		return false, err
	}
	return true, nil
}
