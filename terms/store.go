// Package terms stores the term groups searched for each question of each
// category, persisted as JSON or YAML.
package terms

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/abiiranathan/pdfterms/match"
	"gopkg.in/yaml.v3"
)

// Data maps category -> question -> term groups.
type Data map[string]map[string]match.Query

// Store is a Data file loaded in memory. Changes are kept in memory until
// Save. A Store is safe for concurrent use.
type Store struct {
	path string

	mu   sync.RWMutex
	data Data
}

type format int

const (
	formatJSON format = iota
	formatYAML
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// New returns an empty store that saves to path.
func New(path string) (*Store, error) {
	if _, err := formatOf(path); err != nil {
		return nil, err
	}
	return &Store{path: path, data: Data{}}, nil
}

// Open loads the store at path. A missing file is an empty store.
// The format is chosen by extension: .json, .yaml or .yml.
func Open(path string) (*Store, error) {
	s, err := New(path)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("terms: reading %s: %w", path, err)
	}

	if err := s.decode(raw); err != nil {
		return nil, fmt.Errorf("terms: decoding %s: %w", path, err)
	}
	return s, nil
}

func (s *Store) decode(raw []byte) error {
	data := Data{}
	if len(strings.TrimSpace(string(raw))) > 0 {
		f, _ := formatOf(s.path)
		var err error
		if f == formatYAML {
			err = yaml.Unmarshal(raw, &data)
		} else {
			err = json.Unmarshal(raw, &data)
		}
		if err != nil {
			return err
		}
	}

	// Upholds trimmed, non-blank terms for everything read from disk.
	for cat, questions := range data {
		if questions == nil {
			data[cat] = map[string]match.Query{}
		}
		for q, query := range questions {
			questions[q] = cleanQuery(query)
		}
	}
	s.data = data
	return nil
}

// Path returns the file the store saves to.
func (s *Store) Path() string {
	return s.path
}

// Save writes the store to its file atomically, creating the parent directory.
func (s *Store) Save() error {
	s.mu.RLock()
	raw, err := s.encode()
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("terms: encoding: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("terms: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("terms: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("terms: writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("terms: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("terms: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("terms: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s *Store) encode() ([]byte, error) {
	f, _ := formatOf(s.path)
	if f == formatYAML {
		return yaml.Marshal(s.data)
	}

	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(raw, '\n'), nil
}

// Categories returns the category names in sorted order.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedKeys(s.data)
}

// Questions returns the questions of category in sorted order.
func (s *Store) Questions(category string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	questions, err := s.category(category)
	if err != nil {
		return nil, err
	}
	return sortedKeys(questions), nil
}

// Query returns a copy of the term groups of a question.
func (s *Store) Query(category, question string) (match.Query, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query, err := s.question(category, question)
	if err != nil {
		return nil, err
	}
	return copyQuery(query), nil
}

// Snapshot returns a deep copy of all data.
func (s *Store) Snapshot() Data {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(Data, len(s.data))
	for cat, questions := range s.data {
		qs := make(map[string]match.Query, len(questions))
		for q, query := range questions {
			qs[q] = copyQuery(query)
		}
		out[cat] = qs
	}
	return out
}

// AddCategory adds an empty category. Adding an existing category does nothing.
func (s *Store) AddCategory(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrBlankName
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[name]; !ok {
		s.data[name] = map[string]match.Query{}
	}
	return nil
}

// RemoveCategory removes a category with all its questions.
func (s *Store) RemoveCategory(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.category(name); err != nil {
		return err
	}
	delete(s.data, strings.TrimSpace(name))
	return nil
}

// AddQuestion adds a question with no groups to an existing category.
// Adding an existing question does nothing.
func (s *Store) AddQuestion(category, question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return ErrBlankName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	questions, err := s.category(category)
	if err != nil {
		return err
	}
	if _, ok := questions[question]; !ok {
		questions[question] = match.Query{}
	}
	return nil
}

// RemoveQuestion removes a question and its groups.
func (s *Store) RemoveQuestion(category, question string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.question(category, question); err != nil {
		return err
	}
	delete(s.data[strings.TrimSpace(category)], strings.TrimSpace(question))
	return nil
}

// SetGroups replaces the groups of a question. Terms are trimmed and blank
// terms dropped; a group left empty is kept.
func (s *Store) SetGroups(category, question string, groups match.Query) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.question(category, question); err != nil {
		return err
	}
	s.data[strings.TrimSpace(category)][strings.TrimSpace(question)] = cleanQuery(groups)
	return nil
}

// AddGroup appends a group to a question and returns its index.
func (s *Store) AddGroup(category, question string, group match.TermGroup) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query, err := s.question(category, question)
	if err != nil {
		return 0, err
	}

	query = append(query, cleanGroup(group))
	s.data[strings.TrimSpace(category)][strings.TrimSpace(question)] = query
	return len(query) - 1, nil
}

// RemoveGroup removes the group at index from a question.
func (s *Store) RemoveGroup(category, question string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query, err := s.question(category, question)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(query) {
		return fmt.Errorf("%w: %d (question has %d groups)", ErrGroupOutOfRange, index, len(query))
	}

	out := make(match.Query, 0, len(query)-1)
	out = append(out, query[:index]...)
	out = append(out, query[index+1:]...)
	s.data[strings.TrimSpace(category)][strings.TrimSpace(question)] = out
	return nil
}

// caller holds mu.
func (s *Store) category(name string) (map[string]match.Query, error) {
	questions, ok := s.data[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCategoryNotFound, name)
	}
	return questions, nil
}

// caller holds mu.
func (s *Store) question(category, question string) (match.Query, error) {
	questions, err := s.category(category)
	if err != nil {
		return nil, err
	}
	query, ok := questions[strings.TrimSpace(question)]
	if !ok {
		return nil, fmt.Errorf("%w: %q in %q", ErrQuestionNotFound, question, category)
	}
	return query, nil
}

// ParseGroup splits the comma-separated form of a group, "a, b ,c",
// into trimmed non-blank terms.
func ParseGroup(s string) match.TermGroup {
	group := match.TermGroup{}
	for _, term := range strings.Split(s, ",") {
		if term = strings.TrimSpace(term); term != "" {
			group = append(group, term)
		}
	}
	return group
}

// FormatGroup joins the sorted terms of group with ", ".
func FormatGroup(group match.TermGroup) string {
	terms := group.Terms()
	sort.Strings(terms)
	return strings.Join(terms, ", ")
}

func cleanGroup(group match.TermGroup) match.TermGroup {
	return match.TermGroup(group.Terms())
}

func cleanQuery(query match.Query) match.Query {
	return query.Clean()
}

func copyQuery(query match.Query) match.Query {
	out := make(match.Query, len(query))
	for i, group := range query {
		out[i] = append(match.TermGroup{}, group...)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
