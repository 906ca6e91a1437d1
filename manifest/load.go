package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads and parses a plugin.yaml file from the given path.
// If the path is a directory, it looks for plugin.yaml or plugin.yml in
// that directory. Load does not validate; callers pass the result to
// Validate before acting on it.
func Load(path string) (*Manifest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	var manifestPath string
	if info.IsDir() {
		// Try plugin.yaml first, then plugin.yml
		yamlPath := filepath.Join(path, "plugin.yaml")
		if _, err := os.Stat(yamlPath); err == nil {
			manifestPath = yamlPath
		} else {
			ymlPath := filepath.Join(path, "plugin.yml")
			if _, err := os.Stat(ymlPath); err == nil {
				manifestPath = ymlPath
			} else {
				return nil, fmt.Errorf("no plugin.yaml or plugin.yml found in %s", path)
			}
		}
	} else {
		manifestPath = path
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest file: %w", err)
	}

	return &m, nil
}

// LoadFromDir searches for plugin.yaml starting from the given directory
// and walking up to parent directories until found or root is reached.
func LoadFromDir(dir string) (*Manifest, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	for {
		m, err := Load(absDir)
		if err == nil {
			return m, nil
		}

		parent := filepath.Dir(absDir)
		if parent == absDir {
			return nil, fmt.Errorf("no plugin.yaml found in %s or parent directories", dir)
		}
		absDir = parent
	}
}

// LoadFromCurrentDir loads plugin.yaml from the current working directory.
func LoadFromCurrentDir() (*Manifest, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	return LoadFromDir(cwd)
}
