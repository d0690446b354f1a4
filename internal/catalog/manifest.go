package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// notesPrefix marks top-level manifest keys that document the file rather than declare a language.
const notesPrefix = "notes"

// LanguageEntry is one language declared in the manifest.
type LanguageEntry struct {
	Code      string `yaml:"-" json:"code"`
	Enabled   bool   `yaml:"enabled" json:"enabled"`
	IsDefault bool   `yaml:"is_default,omitempty" json:"is_default"`
	Name      string `yaml:"name" json:"name"`
	Author    string `yaml:"author,omitempty" json:"author,omitempty"`
	Notes     string `yaml:"notes,omitempty" json:"notes,omitempty"`
	Location  string `yaml:"location" json:"location"`
}

// Manifest is the parsed manifest file. Entries keep the order of the file.
type Manifest struct {
	Path    string
	Dir     string
	Entries []LanguageEntry
}

// Enabled returns the enabled entries in manifest order.
func (m *Manifest) Enabled() []LanguageEntry {
	out := make([]LanguageEntry, 0, len(m.Entries))
	for _, e := range m.Entries {
		if e.Enabled {
			out = append(out, e)
		}
	}
	return out
}

// ResolveLocation returns the entry location relative to the manifest directory.
func (m *Manifest) ResolveLocation(e LanguageEntry) string {
	if filepath.IsAbs(e.Location) {
		return filepath.Clean(e.Location)
	}
	return filepath.Join(m.Dir, filepath.FromSlash(e.Location))
}

// ReadManifest reads and parses the manifest at path.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, malformed(path, err)
	}
	return ParseManifest(data, path)
}

// ParseManifest parses manifest data. path is only used to pick the format,
// resolve locations and in errors. Files ending in .yaml or .yml are read as
// YAML, everything else as JSON.
func ParseManifest(data []byte, path string) (*Manifest, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAMLManifest(data, path)
	default:
		return parseJSONManifest(data, path)
	}
}

// parseJSONManifest walks the top-level object token by token so entries keep
// file order and duplicate codes can be detected.
func parseJSONManifest(data []byte, path string) (*Manifest, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, malformed(path, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, malformed(path, errors.New("top level must be an object of language codes"))
	}

	m := &Manifest{Path: path, Dir: filepath.Dir(path)}
	seen := make(map[string]struct{})

	for dec.More() {
		offset := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			return nil, malformed(path, err)
		}
		code, ok := tok.(string)
		if !ok {
			return nil, malformed(path, fmt.Errorf("offset %d: language code must be a string", offset))
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, malformed(path, err)
		}
		if strings.HasPrefix(code, notesPrefix) {
			continue
		}
		if _, dup := seen[code]; dup {
			return nil, malformed(path, fmt.Errorf("offset %d: duplicate language code %q", offset, code))
		}
		seen[code] = struct{}{}

		entry, err := decodeJSONEntry(code, value)
		if err != nil {
			return nil, &ManifestError{Kind: ErrInvalidEntry, Code: code, Path: path, Err: err}
		}
		m.Entries = append(m.Entries, entry)
	}

	if _, err := dec.Token(); err != nil {
		return nil, malformed(path, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, malformed(path, errors.New("unexpected data after the top-level object"))
	}
	return m, nil
}

func parseYAMLManifest(data []byte, path string) (*Manifest, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, malformed(path, err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, malformed(path, errors.New("top level must be a mapping of language codes"))
	}

	m := &Manifest{Path: path, Dir: filepath.Dir(path)}
	seen := make(map[string]struct{}, len(root.Content)/2)

	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return nil, malformed(path, fmt.Errorf("line %d: language code must be a scalar", keyNode.Line))
		}
		code := keyNode.Value
		if strings.HasPrefix(code, notesPrefix) {
			continue
		}
		if _, dup := seen[code]; dup {
			return nil, malformed(path, fmt.Errorf("line %d: duplicate language code %q", keyNode.Line, code))
		}
		seen[code] = struct{}{}

		entry, err := decodeEntry(code, valNode)
		if err != nil {
			return nil, &ManifestError{Kind: ErrInvalidEntry, Code: code, Path: path, Err: err}
		}
		m.Entries = append(m.Entries, entry)
	}

	return m, nil
}

func decodeJSONEntry(code string, data json.RawMessage) (LanguageEntry, error) {
	if strings.TrimSpace(code) == "" {
		return LanguageEntry{}, errors.New("language code is empty")
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return LanguageEntry{}, err
	}
	if err := validateEntry(raw); err != nil {
		return LanguageEntry{}, err
	}

	var e LanguageEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return LanguageEntry{}, err
	}
	e.Code = code
	return e, nil
}

func decodeEntry(code string, n *yaml.Node) (LanguageEntry, error) {
	if strings.TrimSpace(code) == "" {
		return LanguageEntry{}, errors.New("language code is empty")
	}

	var raw any
	if err := n.Decode(&raw); err != nil {
		return LanguageEntry{}, err
	}
	if err := validateEntry(raw); err != nil {
		return LanguageEntry{}, err
	}

	var e LanguageEntry
	if err := n.Decode(&e); err != nil {
		return LanguageEntry{}, err
	}
	e.Code = code
	return e, nil
}

// resolveDefault picks the single enabled default entry.
func resolveDefault(m *Manifest) (LanguageEntry, error) {
	var defaults []LanguageEntry
	for _, e := range m.Entries {
		if e.Enabled && e.IsDefault {
			defaults = append(defaults, e)
		}
	}

	switch len(defaults) {
	case 0:
		return LanguageEntry{}, &ManifestError{Kind: ErrNoDefault, Path: m.Path}
	case 1:
		return defaults[0], nil
	default:
		codes := make([]string, len(defaults))
		for i, e := range defaults {
			codes[i] = e.Code
		}
		return LanguageEntry{}, &ManifestError{Kind: ErrMultipleDefaults, Path: m.Path, Codes: codes}
	}
}
