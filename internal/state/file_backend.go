package state

import (
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

func (s *Store) filePath(id string) string {
	return filepath.Join(s.dir, id+".yaml")
}

func (s *Store) loadFile(id string) StoryState {
	path := s.filePath(id)
	b, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("state: read %s: %v (starting from empty state)", path, err)
		}
		return StoryState{}
	}
	var st StoryState
	if err := yaml.Unmarshal(b, &st); err != nil {
		log.Printf("state: parse %s: %v (starting from empty state)", path, err)
		return StoryState{}
	}
	return normalizeState(st)
}

func (s *Store) saveFile(id string, st StoryState) error {
	b, err := yaml.Marshal(st)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.filePath(id), b, 0o644)
}
