/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package roster

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"
)

//go:embed data/*
var sample embed.FS

type yokaiFile struct {
	Yokai []Entity `json:"yokai" yaml:"yokai"`
}

type tribesFile struct {
	Tribes []Category `json:"tribes" yaml:"tribes"`
}

type gamesFile struct {
	Games []Category `json:"games" yaml:"games"`
}

// Sample returns the roster bundled with the binary.
func Sample() (*Roster, error) {
	return Load(sample, "data")
}

// Load reads yokai, tribes and games from dir in fsys. Each file may be JSON
// (yokai.json) or YAML (yokai.yaml, yokai.yml).
func Load(fsys fs.FS, dir string) (*Roster, error) {
	var y yokaiFile
	if err := decode(fsys, dir, "yokai", &y); err != nil {
		return nil, err
	}

	var t tribesFile
	if err := decode(fsys, dir, "tribes", &t); err != nil {
		return nil, err
	}

	var g gamesFile
	if err := decode(fsys, dir, "games", &g); err != nil {
		return nil, err
	}

	r := &Roster{
		Yokai:  y.Yokai,
		Tribes: t.Tribes,
		Games:  g.Games,
	}

	if err := r.validate(); err != nil {
		return nil, err
	}

	return r, nil
}

func decode(fsys fs.FS, dir, base string, v any) error {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		name := path.Join(dir, base+ext)

		data, err := fs.ReadFile(fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}

		if ext == ".json" {
			err = json.Unmarshal(data, v)
		} else {
			err = yaml.Unmarshal(data, v)
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidRoster, name, err)
		}

		return nil
	}

	return fmt.Errorf("%w: no %s.json, %s.yaml or %s.yml in %q", ErrInvalidRoster, base, base, base, dir)
}
