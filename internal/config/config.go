// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"gopkg.in/yaml.v3"
)

// EnvFile names the environment variable holding an explicit config path.
const EnvFile = "ROWFILTER_CFG_FILE"

// FileName is the config file looked up in the user config directory.
const FileName = "rowfilter.yaml"

// Type is the in-memory representation of the loaded configuration.
//
// Fields:
//   - Source: absolute path of the YAML file loaded.
//   - Namespace: optional dot-prefixed keyspace preferred on lookups (e.g.
//     "query" makes "output" resolve "query.output" first).
//   - Data: raw key/value tree unmarshaled from YAML.
type Type struct {
	Source    string
	Namespace string
	Data      map[string]interface{}
}

// Config holds the global, lazily-initialized configuration instance.
var Config Type

// init attempts to load configuration at process start. Errors are ignored so
// rowfilter still runs without a config file.
func init() {
	_, _ = Load()
}

// lookup resolves key, preferring the namespaced form, and reloads an empty
// configuration first.
func lookup(key string) (any, error) {
	if len(Config.Data) == 0 {
		_, _ = Load()
	}
	return Config.get(key)
}

// GetInt returns the integer value for the given dotted key path. A single
// defaultValue may be provided and is returned when the key is missing.
// YAML numbers may decode as int, int64, or float64; all are accepted.
func GetInt(key string, defaultValue ...int) (int, error) {
	val, err := lookup(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return 0, err
	}

	switch v := val.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("%s: value is not an int", key)
	}
}

// GetBool returns the boolean value for the given dotted key path, or the
// single defaultValue when the key is missing.
func GetBool(key string, defaultValue ...bool) (bool, error) {
	val, err := lookup(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return false, err
	}

	b, ok := val.(bool)
	if !ok {
		return false, fmt.Errorf("%s: value is not a bool", key)
	}
	return b, nil
}

// GetString returns the string value for the given dotted key path. If the key
// is not found and a single defaultValue is provided, the default is returned.
// Returns an error if the value exists but is not a string.
func GetString(key string, defaultValue ...string) (string, error) {
	val, err := lookup(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return "", err
	}

	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s: value is not a string", key)
	}
	return s, nil
}

// GetStringSlice returns the string slice value for the given dotted key path.
// A scalar string is accepted as a one element slice.
func GetStringSlice(key string, defaultValue ...[]string) ([]string, error) {
	val, err := lookup(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return nil, err
	}

	switch v := val.(type) {
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case []interface{}:
		result := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s: slice element is not a string", key)
			}
			result[i] = s
		}
		return result, nil
	default:
		return nil, fmt.Errorf("%s: value is not a slice", key)
	}
}

// GetStringMap returns the mapping at key with every value rendered as a
// string. Nested mappings are rejected.
func GetStringMap(key string, defaultValue ...map[string]string) (map[string]string, error) {
	val, err := lookup(key)
	if err != nil {
		if len(defaultValue) == 1 {
			return defaultValue[0], nil
		}
		return nil, err
	}

	m, ok := val.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%s: value is not a mapping", key)
	}
	result := make(map[string]string, len(m))
	for k, item := range m {
		switch v := item.(type) {
		case map[string]interface{}, []interface{}:
			return nil, fmt.Errorf("%s.%s: value is not a scalar", key, k)
		case nil:
			result[k] = ""
		default:
			result[k] = fmt.Sprint(v)
		}
	}
	return result, nil
}

// Load reads the YAML configuration and populates the global Config. An
// explicit cfgFilePath wins over the environment and the user config
// directory.
func Load(cfgFilePath ...string) (Type, error) {
	path, err := getConfigFile(cfgFilePath...)
	if err != nil {
		return Type{}, err
	}

	bytes, err := os.ReadFile(path)
	if err != nil {
		return Type{}, err
	}

	var data map[string]interface{}
	if err := yaml.Unmarshal(bytes, &data); err != nil {
		return Type{}, fmt.Errorf("%s: %w", path, err)
	}

	Config = Type{
		Source:    path,
		Namespace: Config.Namespace,
		Data:      data,
	}

	return Config, nil
}

// get traverses the configuration tree using a dotted key path (e.g.
// "parser.dateFormat"). If Namespace is set, the namespaced key is attempted
// first, then the plain key.
func (cfg *Type) get(kspec string) (any, error) {
	candidateKeys := []string{kspec}
	if cfg.Namespace != "" {
		candidateKeys = []string{cfg.Namespace + "." + kspec, kspec}
	}

	for _, key := range candidateKeys {
		if v, ok := walk(cfg.Data, strings.Split(key, ".")); ok {
			return v, nil
		}
	}

	return nil, fmt.Errorf("no valid path found among: %v", candidateKeys)
}

func walk(current interface{}, keys []string) (interface{}, bool) {
	for _, key := range keys {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if current, ok = m[key]; !ok {
			return nil, false
		}
	}
	return current, true
}

// getConfigFile returns the path of the YAML config file: the explicit
// argument, then $ROWFILTER_CFG_FILE, then rowfilter.yaml in the OS user
// configuration directory. The file must exist and not be a directory.
func getConfigFile(explicit ...string) (string, error) {
	if len(explicit) == 1 && explicit[0] != "" {
		return checkFile(explicit[0], "config file")
	}

	if cfgPath := os.Getenv(EnvFile); cfgPath != "" {
		path, err := checkFile(cfgPath, EnvFile)
		if err == nil {
			log.Debugf("using config file from %s: %s", EnvFile, path)
		}
		return path, err
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	file := filepath.Join(dir, FileName)
	if fileInfo, err := os.Stat(file); err == nil && !fileInfo.IsDir() {
		log.Debugf("using config file: %s", file)
		return file, nil
	}

	return "", errors.New("no config file found in standard locations")
}

func checkFile(path, source string) (string, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("config file not found at %s path: %s", source, path)
	}
	if fileInfo.IsDir() {
		return "", fmt.Errorf("%s points to a directory: %s", source, path)
	}
	return path, nil
}
