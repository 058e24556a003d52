package model

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"iter"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

const InstanceExtension = ".pap"

var instanceNamePattern = regexp.MustCompile(`^P(\d+)D(\d+)S(\d+)`)

// InstanceStore enumerates and loads the PAP instances of a folder
type InstanceStore struct {
	folder string
}

func NewInstanceStore(folder string) *InstanceStore {
	return &InstanceStore{folder: folder}
}

func (store *InstanceStore) Folder() string {
	return store.folder
}

// List yields the instance identifiers (file names) of the folder in ascending order of P+D+S.
// The folder is read when iteration starts, so the sequence can be iterated again to observe new files
func (store *InstanceStore) List() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		names, err := store.names()
		if err != nil {
			yield("", err)
			return
		}
		for _, name := range names {
			if !yield(name, nil) {
				return
			}
		}
	}
}

// Names returns every identifier List would yield
func (store *InstanceStore) Names() ([]string, error) {
	return store.names()
}

func (store *InstanceStore) Load(identifier string) (Instance, error) {
	return LoadInstance(filepath.Join(store.folder, identifier))
}

func (store *InstanceStore) names() ([]string, error) {
	entries, err := os.ReadDir(store.folder)
	if err != nil {
		return nil, fmt.Errorf("cannot read instances directory: %w", err)
	}

	names := lo.FilterMap(entries, func(entry os.DirEntry, _ int) (string, bool) {
		return entry.Name(), !entry.IsDir() && filepath.Ext(entry.Name()) == InstanceExtension
	})
	SortInstanceNames(names)
	return names, nil
}

// SortInstanceNames orders names by ascending P+D+S parsed from the name, breaking ties by name.
// Names that do not follow the P<n>D<n>S<n> convention go last
func SortInstanceNames(names []string) {
	slices.SortStableFunc(names, func(a, b string) int {
		if c := cmp.Compare(instanceSize(a), instanceSize(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
}

func instanceSize(name string) int {
	match := instanceNamePattern.FindStringSubmatch(name)
	if match == nil {
		return math.MaxInt
	}
	return lo.Sum(lo.Map(match[1:], func(group string, _ int) int {
		value, err := strconv.Atoi(group)
		if err != nil {
			return math.MaxInt / 4
		}
		return value
	}))
}

// LoadInstance parses an instance file. Structural defects are reported as *MalformedInstanceError
func LoadInstance(path string) (Instance, error) {
	file, err := os.Open(path)
	if err != nil {
		return Instance{}, fmt.Errorf("cannot open instance file: %w", err)
	}
	defer file.Close()

	name := strings.TrimSuffix(filepath.Base(path), InstanceExtension)
	return ParseInstance(name, file)
}

// ParseInstance reads the line-oriented instance format:
//
//	<label> <P>
//	<label> <D>
//	<label> <T>
//	<label> <S>
//	<label> <H>
//	<section header>
//	D lines with one integer (hd)
//	<section header>
//	P lines with D integers (apd)
//	<section header>
//	P lines with T integers (rpt)
func ParseInstance(name string, r io.Reader) (Instance, error) {
	reader := newLineReader(name, r)
	instance := Instance{Name: name}

	//** Scalars
	scalars := []*int{&instance.P, &instance.D, &instance.T, &instance.S, &instance.H}
	for i, scalar := range scalars {
		value, err := reader.scalar("PDTSH"[i : i+1])
		if err != nil {
			return Instance{}, err
		}
		*scalar = value
	}

	//** hd
	if err := reader.skip("hd section header"); err != nil {
		return Instance{}, err
	}
	instance.Hd = make([]int, instance.D)
	for d := range instance.D {
		row, err := reader.row(fmt.Sprintf("hd[%d]", d), 1, true)
		if err != nil {
			return Instance{}, err
		}
		instance.Hd[d] = row[0]
	}

	//** apd
	if err := reader.skip("apd section header"); err != nil {
		return Instance{}, err
	}
	instance.Apd = make([][]int, instance.P)
	for p := range instance.P {
		row, err := reader.row(fmt.Sprintf("apd row %d", p), instance.D, false)
		if err != nil {
			return Instance{}, err
		}
		instance.Apd[p] = row
	}

	//** rpt
	if err := reader.skip("rpt section header"); err != nil {
		return Instance{}, err
	}
	instance.Rpt = make([][]int, instance.P)
	for p := range instance.P {
		row, err := reader.row(fmt.Sprintf("rpt row %d", p), instance.T, true)
		if err != nil {
			return Instance{}, err
		}
		instance.Rpt[p] = row
	}

	if err := reader.err(); err != nil {
		return Instance{}, err
	}
	return instance, nil
}

// SerializeInstance writes the instance in the format ParseInstance reads
func SerializeInstance(w io.Writer, instance Instance) error {
	writer := bufio.NewWriter(w)
	for _, scalar := range []struct {
		label string
		value int
	}{{"P", instance.P}, {"D", instance.D}, {"T", instance.T}, {"S", instance.S}, {"H", instance.H}} {
		fmt.Fprintf(writer, "%v %d\n", scalar.label, scalar.value)
	}

	writer.WriteString("hd\n")
	for _, hours := range instance.Hd {
		fmt.Fprintf(writer, "%d\n", hours)
	}

	writer.WriteString("apd\n")
	writeMatrix(writer, instance.Apd)

	writer.WriteString("rpt\n")
	writeMatrix(writer, instance.Rpt)

	return writer.Flush()
}

func SaveInstance(path string, instance Instance) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create instance file: %w", err)
	}
	if err := SerializeInstance(file, instance); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func writeMatrix(writer *bufio.Writer, matrix [][]int) {
	for _, row := range matrix {
		writer.WriteString(strings.Join(lo.Map(row, func(value int, _ int) string { return strconv.Itoa(value) }), " "))
		writer.WriteString("\n")
	}
}

type lineReader struct {
	file    string
	scanner *bufio.Scanner
	line    int
}

func newLineReader(file string, r io.Reader) *lineReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &lineReader{file: file, scanner: scanner}
}

func (reader *lineReader) next(what string) (string, error) {
	if !reader.scanner.Scan() {
		if err := reader.scanner.Err(); err != nil {
			return "", &MalformedInstanceError{File: reader.file, Line: reader.line + 1, Reason: "cannot read " + what, Err: err}
		}
		return "", &MalformedInstanceError{File: reader.file, Reason: "missing " + what}
	}
	reader.line++
	return reader.scanner.Text(), nil
}

func (reader *lineReader) skip(what string) error {
	_, err := reader.next(what)
	return err
}

// scalar parses a "<token> <integer>" line whose integer is the last field and must be positive
func (reader *lineReader) scalar(label string) (int, error) {
	line, err := reader.next("header " + label)
	if err != nil {
		return 0, err
	}

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, &MalformedInstanceError{File: reader.file, Line: reader.line, Reason: fmt.Sprintf("header %v must match \"<token> <integer>\": %q", label, line)}
	}
	value, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0, &MalformedInstanceError{File: reader.file, Line: reader.line, Reason: fmt.Sprintf("header %v is not numeric", label), Err: err}
	}
	if value <= 0 {
		return 0, &MalformedInstanceError{File: reader.file, Line: reader.line, Reason: fmt.Sprintf("header %v must be positive: %d", label, value)}
	}
	return value, nil
}

func (reader *lineReader) row(what string, width int, nonNegative bool) ([]int, error) {
	line, err := reader.next(what)
	if err != nil {
		return nil, err
	}

	fields := strings.Fields(line)
	if len(fields) != width {
		return nil, &MalformedInstanceError{File: reader.file, Line: reader.line, Reason: fmt.Sprintf("%v has %d values, expected %d", what, len(fields), width)}
	}

	row := make([]int, width)
	for i, field := range fields {
		value, err := strconv.Atoi(field)
		if err != nil {
			return nil, &MalformedInstanceError{File: reader.file, Line: reader.line, Reason: fmt.Sprintf("%v contains a non-integer value", what), Err: err}
		}
		if nonNegative && value < 0 {
			return nil, &MalformedInstanceError{File: reader.file, Line: reader.line, Reason: fmt.Sprintf("%v contains a negative value: %d", what, value)}
		}
		row[i] = value
	}
	return row, nil
}

func (reader *lineReader) err() error {
	if err := reader.scanner.Err(); err != nil {
		return &MalformedInstanceError{File: reader.file, Line: reader.line, Reason: "cannot read file", Err: err}
	}
	return nil
}
