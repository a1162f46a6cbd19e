// Package gedcom reads GEDCOM 5.5 files into a tree of elements and provides
// the traversal helpers a pedigree conversion needs: individual records,
// their names, sex, birthplace, and the parents, spouses and children reached
// through family records.
//
// Parsing is lenient. Lines that do not follow the "level [@xref@] TAG
// [value]" grammar are skipped and counted rather than aborting the read.
package gedcom

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Record tags.
const (
	TagIndividual = "INDI"
	TagFamily     = "FAM"
	TagName       = "NAME"
	TagGiven      = "GIVN"
	TagSurname    = "SURN"
	TagSex        = "SEX"
	TagBirth      = "BIRT"
	TagPlace      = "PLAC"
	TagHusband    = "HUSB"
	TagWife       = "WIFE"
	TagChild      = "CHIL"
	TagFamChild   = "FAMC"
	TagFamSpouse  = "FAMS"
	TagConcat     = "CONC"
	TagContinue   = "CONT"
)

// ErrNoRecords is returned when a file contains no level-0 records.
var ErrNoRecords = errors.New("no GEDCOM records found")

// Element is one GEDCOM line and its subordinate lines.
type Element struct {
	Level    int
	Pointer  string
	Tag      string
	Value    string
	Children []*Element
	parent   *Element
}

// Parent returns the enclosing element, or nil for a root element.
func (e *Element) Parent() *Element {
	return e.parent
}

// Child returns the first child with the given tag.
func (e *Element) Child(tag string) *Element {
	for _, c := range e.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// ChildrenWithTag returns every child with the given tag.
func (e *Element) ChildrenWithTag(tag string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// Document is a parsed GEDCOM file.
type Document struct {
	roots     []*Element
	byPointer map[string]*Element
	skipped   int
}

// ParseFile reads and parses the GEDCOM file at path.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gedcom file: %w", err)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// Parse reads a GEDCOM stream.
func Parse(r io.Reader) (*Document, error) {
	doc := &Document{byPointer: make(map[string]*Element)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	// stack[i] is the most recent element at level i.
	var stack []*Element
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		el, ok := parseLine(line)
		if !ok {
			doc.skipped++
			continue
		}

		if el.Tag == TagConcat || el.Tag == TagContinue {
			if el.Level > 0 && el.Level-1 < len(stack) {
				target := stack[el.Level-1]
				if el.Tag == TagContinue {
					target.Value += "\n" + el.Value
				} else {
					target.Value += el.Value
				}
				continue
			}
			doc.skipped++
			continue
		}

		if el.Level == 0 {
			doc.roots = append(doc.roots, el)
			stack = append(stack[:0], el)
			if el.Pointer != "" {
				doc.byPointer[el.Pointer] = el
			}
			continue
		}

		// A level deeper than the current depth plus one attaches to the
		// deepest open element.
		if el.Level > len(stack) {
			el.Level = len(stack)
		}
		if len(stack) == 0 {
			doc.skipped++
			continue
		}
		parent := stack[el.Level-1]
		el.parent = parent
		parent.Children = append(parent.Children, el)
		stack = append(stack[:el.Level], el)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read gedcom: %w", err)
	}
	if len(doc.roots) == 0 {
		return nil, ErrNoRecords
	}
	return doc, nil
}

// parseLine splits a line into level, optional pointer, tag and value.
func parseLine(line string) (*Element, bool) {
	line = strings.TrimLeft(line, " \t")
	levelStr, rest, ok := strings.Cut(line, " ")
	if !ok {
		return nil, false
	}
	level, err := strconv.Atoi(levelStr)
	if err != nil || level < 0 {
		return nil, false
	}
	rest = strings.TrimLeft(rest, " ")

	el := &Element{Level: level}
	if strings.HasPrefix(rest, "@") {
		ptr, after, found := strings.Cut(rest, " ")
		if !found || !strings.HasSuffix(ptr, "@") || len(ptr) < 3 {
			return nil, false
		}
		el.Pointer = ptr
		rest = strings.TrimLeft(after, " ")
	}

	tag, value, _ := strings.Cut(rest, " ")
	if tag == "" {
		return nil, false
	}
	el.Tag = strings.ToUpper(tag)
	el.Value = value
	return el, true
}

// RootElements returns the level-0 records in file order.
func (d *Document) RootElements() []*Element {
	return d.roots
}

// Individuals returns the individual records in file order.
func (d *Document) Individuals() []*Element {
	var out []*Element
	for _, el := range d.roots {
		if el.IsIndividual() {
			out = append(out, el)
		}
	}
	return out
}

// Lookup returns the record with the given pointer.
func (d *Document) Lookup(pointer string) (*Element, bool) {
	el, ok := d.byPointer[pointer]
	return el, ok
}

// Skipped returns the number of malformed lines ignored while parsing.
func (d *Document) Skipped() int {
	return d.skipped
}
