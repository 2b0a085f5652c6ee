// Package config reads Taskwarrior rc files: `key = value` assignments plus
// `include <path>` directives that merge other files in.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sadopc/twpomo/internal/applog"
)

// Keys recognized by twpomo.
const (
	KeyTaskPath          = "pomodoro.taskwarrior_path"
	KeyDefaultFilter     = "pomodoro.defaultFilter"
	KeyDefaultSort       = "pomodoro.default.sort"
	KeyDisplayCount      = "pomodoro.displayCount"
	KeyDurationSeconds   = "pomodoro.durationSeconds"
	KeyPostCompletionCmd = "pomodoro.postCompletionCommand"
	KeyNotifications     = "pomodoro.notifications"
	KeyTaskdServer       = "taskd.server"
	KeyDataLocation      = "data.location"
)

const includePrefix = "include "

var (
	ErrFileNotFound = errors.New("configuration file not found")
	ErrFileEmpty    = errors.New("configuration file is empty")
)

type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("configuration file not found at %s", e.Path)
}

func (e *FileNotFoundError) Is(target error) bool {
	return target == ErrFileNotFound
}

// Config is an immutable mapping of rc keys to values.
type Config struct {
	values map[string]string
}

func New(values map[string]string) Config {
	m := make(map[string]string, len(values))
	for k, v := range values {
		m[k] = v
	}
	return Config{values: m}
}

// Load parses the rc file at path. A missing file yields *FileNotFoundError; a
// file that produces no settings yields ErrFileEmpty together with an empty
// Config, which callers may treat as "no configuration".
func Load(path string, logger *applog.Logger) (Config, error) {
	cfg, _, err := loadTracked(path, logger)
	return cfg, err
}

// loadTracked is Load that also reports every file it read or tried to
// include, in visiting order.
func loadTracked(path string, logger *applog.Logger) (Config, []string, error) {
	var visited []string
	values, err := load(path, logger, nil, &visited)
	if err != nil {
		return Config{values: map[string]string{}}, visited, err
	}
	return Config{values: values}, visited, nil
}

func load(path string, logger *applog.Logger, stack []string, visited *[]string) (map[string]string, error) {
	location := ExpandPath(path)
	*visited = append(*visited, location)
	if _, err := os.Stat(location); err != nil {
		if os.IsNotExist(err) {
			return nil, &FileNotFoundError{Path: location}
		}
		return nil, fmt.Errorf("stat %s: %w", location, err)
	}

	settings := make(map[string]string)

	f, err := os.Open(location)
	if err != nil {
		// Unreadable files behave like empty ones.
		logger.Warnf("open %s: %v", location, err)
		return nil, ErrFileEmpty
	}
	defer f.Close()

	stack = append(stack, location)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, includePrefix) {
			included := strings.TrimSpace(strings.TrimPrefix(line, includePrefix))
			if onStack(stack, ExpandPath(included)) {
				logger.Warnf("include cycle at %s, skipping", included)
				continue
			}
			sub, err := load(included, logger, stack, visited)
			switch {
			case errors.Is(err, ErrFileNotFound):
				logger.Warnf("included file %q not found", included)
			case errors.Is(err, ErrFileEmpty):
			case err != nil:
				logger.Warnf("include %q: %v", included, err)
			}
			for k, v := range sub {
				settings[k] = v
			}
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		settings[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", location, err)
	}

	if len(settings) == 0 {
		return nil, ErrFileEmpty
	}
	return settings, nil
}

func onStack(stack []string, path string) bool {
	for _, p := range stack {
		if p == path {
			return true
		}
	}
	return false
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

func (c Config) String(key string) (string, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Bool recognizes true/yes/1 and false/no/0 case-insensitively. Any other
// value is reported as absent.
func (c Config) Bool(key string) (bool, bool) {
	v, ok := c.values[key]
	if !ok {
		return false, false
	}
	switch strings.ToLower(v) {
	case "true", "yes", "1":
		return true, true
	case "false", "no", "0":
		return false, true
	default:
		return false, false
	}
}

func (c Config) Float(key string) (float64, bool) {
	v, ok := c.values[key]
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Keys returns the configured keys in sorted order.
func (c Config) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c Config) Len() int { return len(c.values) }

// Encode serializes the settings as sorted `key=value` lines. Keys that
// would read back as an include directive get a leading space.
func (c Config) Encode() string {
	var b strings.Builder
	for _, k := range c.Keys() {
		if strings.HasPrefix(k, includePrefix) {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%s=%s\n", k, c.values[k])
	}
	return b.String()
}
