package filter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// View is a named, persisted set of filter rules.
type View struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Rules []Rule `yaml:"rules"`
}

// ViewStore persists saved views to a YAML file. A missing file reads as
// an empty list; writes go through a temp file and rename.
type ViewStore struct {
	path string
}

func NewViewStore(path string) *ViewStore {
	return &ViewStore{path: path}
}

type viewsFile struct {
	Views []View `yaml:"views"`
}

func (s *ViewStore) List() ([]View, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read saved views: %w", err)
	}
	var f viewsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse saved views: %w", err)
	}
	return f.Views, nil
}

// Save appends a new named view built from the current rules.
func (s *ViewStore) Save(name string, rules []Rule) (View, error) {
	views, err := s.List()
	if err != nil {
		return View{}, err
	}
	v := View{
		ID:    uuid.New().String(),
		Name:  name,
		Rules: append([]Rule(nil), rules...),
	}
	views = append(views, v)
	if err := s.write(views); err != nil {
		return View{}, err
	}
	return v, nil
}

func (s *ViewStore) Delete(id string) error {
	views, err := s.List()
	if err != nil {
		return err
	}
	out := views[:0]
	found := false
	for _, v := range views {
		if v.ID == id || v.Name == id {
			found = true
			continue
		}
		out = append(out, v)
	}
	if !found {
		return fmt.Errorf("saved view %q not found", id)
	}
	return s.write(out)
}

// Find looks a view up by id or name.
func (s *ViewStore) Find(idOrName string) (View, error) {
	views, err := s.List()
	if err != nil {
		return View{}, err
	}
	for _, v := range views {
		if v.ID == idOrName || v.Name == idOrName {
			return v, nil
		}
	}
	return View{}, fmt.Errorf("saved view %q not found", idOrName)
}

func (s *ViewStore) write(views []View) error {
	data, err := yaml.Marshal(viewsFile{Views: views})
	if err != nil {
		return fmt.Errorf("encode saved views: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
