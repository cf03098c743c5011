package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/v2"

	"github.com/arthur-debert/deployer/pkg/constants"
	"github.com/arthur-debert/deployer/pkg/errors"
	"github.com/arthur-debert/deployer/pkg/logging"
	"github.com/arthur-debert/deployer/pkg/types"
	"github.com/arthur-debert/deployer/pkg/variables"
)

// LoadSettings reads application settings JSON files and flattens them into
// variables: nested keys join with '.', array items become key[i] and nulls
// are skipped. A top-level ApplicationName is also exposed as Application.
// Relative paths resolve against dir; missing files are ignored. Later files
// override earlier ones.
func LoadSettings(fsys types.FS, dir string, files []string) (map[string]string, error) {
	logger := logging.GetLogger("config.settings")
	out := make(map[string]string)

	for _, name := range files {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		data, err := fsys.ReadFile(path)
		if err != nil {
			logger.Trace().Str("path", path).Msg("No settings file")
			continue
		}

		k := koanf.New(".")
		if err := k.Load(&rawBytesProvider{bytes: data}, json.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse settings %s", path)
		}

		raw := k.Raw()
		if app, ok := raw[constants.VarApplicationName]; ok && app != nil {
			out[constants.VarApplication] = scalar(app)
		}
		flatten(out, "", raw)
		logger.Debug().Str("path", path).Int("keys", len(out)).Msg("Loaded settings")
	}
	return out, nil
}

// ApplySettings sets every flattened setting, overriding existing values.
func ApplySettings(store *variables.Store, settings map[string]string) {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		store.Set(k, settings[k])
	}
}

func flatten(out map[string]string, prefix string, value interface{}) {
	switch v := value.(type) {
	case nil:
	case map[string]interface{}:
		for key, child := range v {
			name := key
			if prefix != "" {
				name = prefix + "." + key
			}
			flatten(out, name, child)
		}
	case []interface{}:
		for i, child := range v {
			flatten(out, prefix+"["+strconv.Itoa(i)+"]", child)
		}
	default:
		if prefix != "" {
			out[prefix] = scalar(v)
		}
	}
}

func scalar(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
