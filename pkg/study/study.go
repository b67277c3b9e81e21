// Package study reads unitizing study descriptions from YAML files and builds closed
// continuum models from them.
package study

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dkpro/dkpro-statistics-sub001/pkg/continuum"
)

// ErrInvalidStudy is returned when a study file is malformed or inconsistent.
var ErrInvalidStudy = errors.New("invalid study")

// Study is a parsed study description.
type Study struct {
	Name       string
	Start      int64
	Length     int64
	Annotators []string // annotator names, index is the annotator id
	Units      []Unit
}

// Unit is one annotated span as written in the study file.
type Unit struct {
	Category  string
	Annotator int
	Begin     int64
	Length    int64
}

// studyFile mirrors the YAML layout.
type studyFile struct {
	Name      string `yaml:"name"`
	Continuum struct {
		Start  int64  `yaml:"start"`
		Length *int64 `yaml:"length"`
	} `yaml:"continuum"`
	Annotators annotatorList `yaml:"annotators"`
	Units      []unitEntry   `yaml:"units"`
}

type unitEntry struct {
	Category  string       `yaml:"category"`
	Annotator annotatorRef `yaml:"annotator"`
	Begin     int64        `yaml:"begin"`
	Length    int64        `yaml:"length"`
}

// annotatorList accepts either a list of names or an annotator count.
type annotatorList []string

func (l *annotatorList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		n, err := strconv.Atoi(node.Value)
		if err != nil {
			return fmt.Errorf("annotators must be a count or a list of names, got %q", node.Value)
		}
		if n < 1 {
			return fmt.Errorf("annotator count must be positive, got %d", n)
		}
		names := make([]string, n)
		for i := range names {
			names[i] = strconv.Itoa(i)
		}
		*l = names
		return nil
	case yaml.SequenceNode:
		var names []string
		if err := node.Decode(&names); err != nil {
			return fmt.Errorf("decode annotator names: %w", err)
		}
		*l = names
		return nil
	default:
		return fmt.Errorf("annotators must be a count or a list of names (line %d)", node.Line)
	}
}

// annotatorRef keeps the raw annotator reference, resolved against the names later.
type annotatorRef struct {
	raw  string
	line int
}

func (r *annotatorRef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("annotator must be a name or an index (line %d)", node.Line)
	}
	r.raw = strings.TrimSpace(node.Value)
	r.line = node.Line
	return nil
}

// Load reads and parses a study file. the study name defaults to the file name.
func Load(path string) (*Study, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by the user on purpose
	if err != nil {
		return nil, fmt.Errorf("read study %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse study %s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Parse parses a study description from YAML data.
func Parse(data []byte) (*Study, error) {
	var f studyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidStudy, err)
	}

	if f.Continuum.Length == nil {
		return nil, fmt.Errorf("%w: continuum.length is required", ErrInvalidStudy)
	}
	if *f.Continuum.Length < 0 {
		return nil, fmt.Errorf("%w: continuum.length must be non-negative, got %d", ErrInvalidStudy, *f.Continuum.Length)
	}
	if len(f.Annotators) == 0 {
		return nil, fmt.Errorf("%w: at least one annotator is required", ErrInvalidStudy)
	}

	index := make(map[string]int, len(f.Annotators))
	for i, name := range f.Annotators {
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate annotator %q", ErrInvalidStudy, name)
		}
		index[name] = i
	}

	s := &Study{
		Name:       f.Name,
		Start:      f.Continuum.Start,
		Length:     *f.Continuum.Length,
		Annotators: f.Annotators,
		Units:      make([]Unit, 0, len(f.Units)),
	}
	for i, u := range f.Units {
		if u.Category == "" {
			return nil, fmt.Errorf("%w: unit %d (line %d): category is required", ErrInvalidStudy, i, u.Annotator.line)
		}
		a, err := resolveAnnotator(u.Annotator, index, len(f.Annotators))
		if err != nil {
			return nil, fmt.Errorf("%w: unit %d: %w", ErrInvalidStudy, i, err)
		}
		s.Units = append(s.Units, Unit{Category: u.Category, Annotator: a, Begin: u.Begin, Length: u.Length})
	}
	return s, nil
}

// resolveAnnotator maps a name, or failing that a numeric index, to the annotator id.
func resolveAnnotator(ref annotatorRef, index map[string]int, count int) (int, error) {
	if ref.raw == "" {
		return 0, fmt.Errorf("annotator is required (line %d)", ref.line)
	}
	if a, ok := index[ref.raw]; ok {
		return a, nil
	}
	a, err := strconv.Atoi(ref.raw)
	if err != nil || a < 0 || a >= count {
		return 0, fmt.Errorf("unknown annotator %q (line %d)", ref.raw, ref.line)
	}
	return a, nil
}

// Build creates and closes a continuum model holding the study units.
// units are ordered by begin within each (category, annotator) pair before insertion;
// overlapping units of one pair are reported as out of order.
func (s *Study) Build() (*continuum.Model, error) {
	m, err := continuum.New(len(s.Annotators), continuum.WithStart(s.Start), continuum.WithLength(s.Length))
	if err != nil {
		return nil, fmt.Errorf("create model: %w", err)
	}

	units := slices.Clone(s.Units)
	slices.SortStableFunc(units, func(a, b Unit) int {
		return cmp.Or(
			cmp.Compare(a.Category, b.Category),
			cmp.Compare(a.Annotator, b.Annotator),
			cmp.Compare(a.Begin, b.Begin),
		)
	})

	for _, u := range units {
		if err := m.AddSection(u.Category, u.Annotator, u.Begin, u.Length); err != nil {
			return nil, fmt.Errorf("add unit of %s: %w", s.annotatorName(u.Annotator), err)
		}
	}
	if err := m.Close(); err != nil {
		return nil, fmt.Errorf("close model: %w", err)
	}
	return m, nil
}

// Categories returns the distinct categories of the study units, sorted.
func (s *Study) Categories() []string {
	seen := make(map[string]struct{})
	var res []string
	for _, u := range s.Units {
		if _, ok := seen[u.Category]; ok {
			continue
		}
		seen[u.Category] = struct{}{}
		res = append(res, u.Category)
	}
	slices.Sort(res)
	return res
}

func (s *Study) annotatorName(a int) string {
	if a >= 0 && a < len(s.Annotators) {
		return fmt.Sprintf("annotator %s", s.Annotators[a])
	}
	return fmt.Sprintf("annotator %d", a)
}
