package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"gopkg.in/yaml.v3"

	"github.com/okian/draftrange/internal/domain/model"
)

// corpusFile is the wrapped corpus layout; a bare list of profiles is also
// accepted.
type corpusFile struct {
	Players []model.PlayerProfile `json:"players" yaml:"players"`
}

// LoadProfiles reads profiles from a JSON or YAML file, optionally gzip
// compressed (".json.gz", ".yaml.gz"). Profiles are not validated here.
func LoadProfiles(path string) ([]model.PlayerProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	defer f.Close()

	var r io.Reader = f
	name := strings.ToLower(path)
	if ext := filepath.Ext(name); ext == ".gz" {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
		}
		defer zr.Close()
		r = zr
		name = strings.TrimSuffix(name, ext)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}

	switch filepath.Ext(name) {
	case ".json":
		return decodeJSON(data, path)
	case ".yaml", ".yml":
		return decodeYAML(data, path)
	default:
		return nil, fmt.Errorf("%w: %w: %s", ErrLoad, ErrUnsupportedInput, path)
	}
}

func decodeJSON(data []byte, path string) ([]model.PlayerProfile, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []model.PlayerProfile
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
		}
		return list, nil
	}
	var cf corpusFile
	if err := json.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}
	return cf.Players, nil
}

func decodeYAML(data []byte, path string) ([]model.PlayerProfile, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	if node.Content[0].Kind == yaml.SequenceNode {
		var list []model.PlayerProfile
		if err := node.Decode(&list); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
		}
		return list, nil
	}
	var cf corpusFile
	if err := node.Decode(&cf); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, path, err)
	}
	return cf.Players, nil
}
