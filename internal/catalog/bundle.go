package catalog

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// dataKey is the envelope key some message files wrap their messages in.
const dataKey = "data"

// Bundle is the merged key -> message mapping for one language.
type Bundle struct {
	Code     string
	messages map[string]string
}

// NewBundle builds a bundle from an already flattened message map.
func NewBundle(code string, messages map[string]string) *Bundle {
	b := &Bundle{Code: code, messages: make(map[string]string, len(messages))}
	for k, v := range messages {
		b.messages[k] = v
	}
	return b
}

// Get returns the message for key.
func (b *Bundle) Get(key string) (string, bool) {
	if b == nil {
		return "", false
	}
	v, ok := b.messages[key]
	return v, ok
}

// Len returns the number of messages in the bundle.
func (b *Bundle) Len() int {
	if b == nil {
		return 0
	}
	return len(b.messages)
}

// Keys returns all message keys, sorted.
func (b *Bundle) Keys() []string {
	if b == nil {
		return nil
	}
	keys := make([]string, 0, len(b.messages))
	for k := range b.messages {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Messages returns a copy of the bundle contents.
func (b *Bundle) Messages() map[string]string {
	out := make(map[string]string, b.Len())
	if b == nil {
		return out
	}
	for k, v := range b.messages {
		out[k] = v
	}
	return out
}

type decodeFunc func(data []byte, v *map[string]any) error

var decoders = map[string]decodeFunc{
	".json": func(data []byte, v *map[string]any) error { return json.Unmarshal(data, v) },
	".yaml": func(data []byte, v *map[string]any) error { return yaml.Unmarshal(data, v) },
	".yml":  func(data []byte, v *map[string]any) error { return yaml.Unmarshal(data, v) },
	".toml": func(data []byte, v *map[string]any) error { return toml.Unmarshal(data, v) },
}

// LoadBundle loads the messages stored at location, either a single file or a
// directory of files. Directory files are merged in lexicographic filename order
// and a later file overrides keys defined by an earlier one.
func LoadBundle(location string) (*Bundle, error) {
	return loadBundle(location, log.Default())
}

func loadBundle(location string, logger *log.Logger) (*Bundle, error) {
	info, err := os.Stat(location)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", location, err)
	}

	b := &Bundle{messages: make(map[string]string)}

	if !info.IsDir() {
		msgs, err := readMessageFile(location)
		if err != nil {
			return nil, err
		}
		b.messages = msgs
		return b, nil
	}

	entries, err := os.ReadDir(location)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", location, err)
	}
	// ReadDir already sorts by filename.
	loaded := 0
	for _, de := range entries {
		name := de.Name()
		if de.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		fp := filepath.Join(location, name)
		if _, ok := decoders[strings.ToLower(filepath.Ext(name))]; !ok {
			logger.Warn("skipping unsupported message file", "file", fp)
			continue
		}

		msgs, err := readMessageFile(fp)
		if err != nil {
			return nil, err
		}
		for k, v := range msgs {
			if prev, dup := b.messages[k]; dup && prev != v {
				logger.Debug("message key overridden", "key", k, "file", fp)
			}
			b.messages[k] = v
		}
		loaded++
	}

	if loaded == 0 {
		logger.Warn("no message files found", "location", location)
	}
	return b, nil
}

func readMessageFile(path string) (map[string]string, error) {
	decode, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, &BundleError{File: path, Err: fmt.Errorf("unsupported file extension %q", filepath.Ext(path))}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &BundleError{File: path, Err: err}
	}

	var doc map[string]any
	if err := decode(data, &doc); err != nil {
		return nil, &BundleError{File: path, Err: err}
	}

	if envelope, ok := doc[dataKey].(map[string]any); ok {
		doc = envelope
	}

	out := make(map[string]string)
	if err := flattenMessages(doc, "", out); err != nil {
		return nil, &BundleError{File: path, Err: err}
	}
	return out, nil
}

// flattenMessages turns nested mappings into dotted keys. Every leaf must be a
// string and a dotted key may only be defined once per file.
func flattenMessages(m map[string]any, prefix string, out map[string]string) error {
	for _, k := range slices.Sorted(maps.Keys(m)) {
		v := m[k]
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case string:
			if _, dup := out[key]; dup {
				return fmt.Errorf("message %q is defined more than once", key)
			}
			out[key] = val
		case map[string]any:
			if err := flattenMessages(val, key, out); err != nil {
				return err
			}
		default:
			return fmt.Errorf("message %q: expected string, got %T", key, v)
		}
	}
	return nil
}
