// Package registry reads the list of streaming units from the canonical
// exchange registry.
package registry

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/teranos/wsgen/errors"
	"github.com/teranos/wsgen/transpile/util"
)

// Load returns the unit ids listed under key in the registry at path.
// JSON registries are queried with a gjson path ("ws", "exchanges.ws");
// .yaml/.yml and .toml registries use the same dotted key. Ids keep their
// order with duplicates removed.
func Load(path, key string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithHint(
				errors.Wrapf(errors.ErrNotFound, "registry %s", path),
				"set registry.path in wsgen.toml or run from the repository root")
		}
		return nil, errors.Wrapf(err, "failed to read registry %s", path)
	}

	var ids []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		ids, err = fromYAML(data, key)
	case ".toml":
		ids, err = fromTOML(data, key)
	default:
		ids, err = fromJSON(data, key)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "registry %s", path)
	}
	return util.Unique(ids), nil
}

func fromJSON(data []byte, key string) ([]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "invalid JSON")
	}
	list := gjson.GetBytes(data, key)
	if !list.Exists() {
		return nil, errors.Wrapf(errors.ErrNotFound, "key %q", key)
	}
	if !list.IsArray() {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "key %q is not a list", key)
	}

	var ids []string
	var bad error
	list.ForEach(func(_, value gjson.Result) bool {
		if value.Type != gjson.String {
			bad = errors.Wrapf(errors.ErrInvalidRequest, "key %q holds non-string entry %s", key, value.Raw)
			return false
		}
		if id := strings.TrimSpace(value.String()); id != "" {
			ids = append(ids, id)
		}
		return true
	})
	return ids, bad
}

func fromYAML(data []byte, key string) ([]string, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidRequest, err.Error())
	}
	return fromDocument(doc, key)
}

func fromTOML(data []byte, key string) ([]string, error) {
	var doc map[string]interface{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrInvalidRequest, err.Error())
	}
	return fromDocument(doc, key)
}

// fromDocument walks a decoded YAML or TOML document along a dotted key
func fromDocument(doc map[string]interface{}, key string) ([]string, error) {
	var node interface{} = doc
	for _, part := range strings.Split(key, ".") {
		m, ok := node.(map[string]interface{})
		if !ok {
			return nil, errors.Wrapf(errors.ErrNotFound, "key %q", key)
		}
		if node, ok = m[part]; !ok {
			return nil, errors.Wrapf(errors.ErrNotFound, "key %q", key)
		}
	}

	list, ok := node.([]interface{})
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "key %q is not a list", key)
	}
	ids := make([]string, 0, len(list))
	for _, v := range list {
		s, ok := v.(string)
		if !ok {
			return nil, errors.Wrapf(errors.ErrInvalidRequest, "key %q holds non-string entry %v", key, v)
		}
		if s = strings.TrimSpace(s); s != "" {
			ids = append(ids, s)
		}
	}
	return ids, nil
}

// Select returns the requested ids in request order, or all when none are
// requested. Ids absent from the registry are reported together.
func Select(all, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return all, nil
	}

	known := make(map[string]bool, len(all))
	for _, id := range all {
		known[id] = true
	}

	var missing []string
	for _, id := range requested {
		if !known[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, errors.WithHint(
			errors.Wrapf(errors.ErrNotFound, "unknown units: %s", strings.Join(missing, ", ")),
			"units must be listed in the registry")
	}
	return util.Unique(requested), nil
}
