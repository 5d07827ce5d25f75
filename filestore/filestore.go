// Package filestore serves the instance catalog from a directory laid out
// like the game's static assets:
//
//	<root>/instance/list.json    JSON array of instance file names
//	<root>/instance/<name>.alb   instance text
//	<root>/soluce/<name>.sol     reference solution text
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/meikuraledutech/salbp"
)

const (
	instanceDir = "instance"
	solutionDir = "soluce"
	listFile    = "list.json"
	instanceExt = ".alb"
	solutionExt = ".sol"
)

var _ salbp.Store = (*Store)(nil)

// Store implements salbp.Store on the local filesystem.
type Store struct {
	root string
	mu   sync.Mutex // serialises list.json rewrites
}

// New returns a Store rooted at dir. Nothing is created until the first write.
func New(dir string) *Store {
	return &Store{root: dir}
}

// ListInstances reads list.json, stripping the .alb suffix from each entry.
// Without a list.json the .alb files present are listed instead.
func (s *Store) ListInstances(ctx context.Context) ([]string, error) {
	data, err := os.ReadFile(s.listPath())
	if errors.Is(err, fs.ErrNotExist) {
		return s.scan()
	}
	if err != nil {
		return nil, fmt.Errorf("salbp: read catalog: %w", err)
	}
	return parseList(data)
}

// parseList decodes list.json. Non-string entries are skipped.
func parseList(data []byte) ([]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("salbp: read catalog: %s is not valid JSON", listFile)
	}
	list := gjson.ParseBytes(data)
	if !list.IsArray() {
		return nil, fmt.Errorf("salbp: read catalog: %s is not an array", listFile)
	}

	names := []string{}
	list.ForEach(func(_, item gjson.Result) bool {
		if item.Type == gjson.String {
			if name := strings.TrimSuffix(item.String(), instanceExt); name != "" {
				names = append(names, name)
			}
		}
		return true
	})
	return names, nil
}

func (s *Store) scan() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.root, instanceDir, "*"+instanceExt))
	if err != nil {
		return nil, fmt.Errorf("salbp: scan catalog: %w", err)
	}
	names := []string{}
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(m), instanceExt))
	}
	slices.Sort(names)
	return names, nil
}

// GetInstance reads <name>.alb.
func (s *Store) GetInstance(ctx context.Context, name string) (string, error) {
	path, err := s.instancePath(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", salbp.ErrInstanceNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("salbp: get instance: %w", err)
	}
	return string(data), nil
}

// GetSolution reads <name>.sol.
func (s *Store) GetSolution(ctx context.Context, name string) (string, error) {
	path, err := s.solutionPath(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", salbp.ErrSolutionNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("salbp: get solution: %w", err)
	}
	return string(data), nil
}

// PutInstance writes <name>.alb and adds it to list.json.
func (s *Store) PutInstance(ctx context.Context, name, text string) error {
	path, err := s.instancePath(name)
	if err != nil {
		return err
	}
	if err := writeFile(path, text); err != nil {
		return fmt.Errorf("salbp: put instance: %w", err)
	}
	return s.updateList(func(names []string) []string {
		if slices.Contains(names, name) {
			return names
		}
		return append(names, name)
	})
}

// PutSolution writes <name>.sol for an existing instance.
func (s *Store) PutSolution(ctx context.Context, name, text string) error {
	if _, err := s.GetInstance(ctx, name); err != nil {
		return err
	}
	path, err := s.solutionPath(name)
	if err != nil {
		return err
	}
	if err := writeFile(path, text); err != nil {
		return fmt.Errorf("salbp: put solution: %w", err)
	}
	return nil
}

// DeleteInstance removes both files and the list entry.
// No error if the name doesn't exist.
func (s *Store) DeleteInstance(ctx context.Context, name string) error {
	ipath, err := s.instancePath(name)
	if err != nil {
		return err
	}
	spath, err := s.solutionPath(name)
	if err != nil {
		return err
	}
	for _, p := range []string{ipath, spath} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("salbp: delete instance: %w", err)
		}
	}
	return s.updateList(func(names []string) []string {
		return slices.DeleteFunc(names, func(n string) bool { return n == name })
	})
}

// updateList rewrites list.json. Entries are stored with the .alb suffix,
// as the game expects.
func (s *Store) updateList(edit func([]string) []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, err := s.ListInstances(context.Background())
	if err != nil {
		return err
	}
	names = edit(names)

	files := make([]string, len(names))
	for i, n := range names {
		files[i] = n + instanceExt
	}
	data, err := json.MarshalIndent(files, "", "  ")
	if err != nil {
		return fmt.Errorf("salbp: write catalog: %w", err)
	}
	if err := writeFile(s.listPath(), string(data)+"\n"); err != nil {
		return fmt.Errorf("salbp: write catalog: %w", err)
	}
	return nil
}

func (s *Store) listPath() string {
	return filepath.Join(s.root, instanceDir, listFile)
}

func (s *Store) instancePath(name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.root, instanceDir, name+instanceExt), nil
}

func (s *Store) solutionPath(name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	return filepath.Join(s.root, solutionDir, name+solutionExt), nil
}

// checkName keeps names inside the catalog directories.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", salbp.ErrInvalidName, name)
	}
	return nil
}

func writeFile(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text), 0o644)
}
