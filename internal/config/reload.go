package config

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/sadopc/twpomo/internal/applog"
)

// Provider hands out the current settings.
type Provider interface {
	Settings() Config
}

type static struct{ cfg Config }

func (s static) Settings() Config { return s.cfg }

// Static returns a Provider that always yields cfg.
func Static(cfg Config) Provider { return static{cfg: cfg} }

// Reloader re-reads the rc file whenever it or any file it includes changes
// modification time. A failed reload keeps the previous settings.
type Reloader struct {
	path   string
	logger *applog.Logger

	mu      sync.Mutex
	current Config
	files   []string
	stamps  []time.Time
}

// NewReloader loads path once. Errors other than ErrFileEmpty are returned so
// the caller can treat them as fatal at startup.
func NewReloader(path string, logger *applog.Logger) (*Reloader, error) {
	r := &Reloader{path: path, logger: logger}
	cfg, files, err := loadTracked(path, logger)
	if err != nil && !errors.Is(err, ErrFileEmpty) {
		return nil, err
	}
	r.current = cfg
	r.files = files
	r.stamps = stampAll(files)
	return r, nil
}

func (r *Reloader) Settings() Config {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.changed() {
		return r.current
	}

	cfg, files, err := loadTracked(r.path, r.logger)
	switch {
	case err == nil, errors.Is(err, ErrFileEmpty):
		r.current = cfg
		r.files = files
		r.stamps = stampAll(files)
		r.logger.Debugf("reloaded %s (%d keys, %d files)", r.path, cfg.Len(), len(files))
	default:
		r.logger.Warnf("reload %s: %v", r.path, err)
	}
	return r.current
}

// changed reports whether any tracked file has a different modification time
// than when it was last read. A missing primary file keeps the old settings.
func (r *Reloader) changed() bool {
	if len(r.files) == 0 {
		return false
	}
	if stamp(r.files[0]).IsZero() {
		return false
	}
	for i, f := range r.files {
		if !stamp(f).Equal(r.stamps[i]) {
			return true
		}
	}
	return false
}

func stampAll(files []string) []time.Time {
	stamps := make([]time.Time, len(files))
	for i, f := range files {
		stamps[i] = stamp(f)
	}
	return stamps
}

// stamp is the file's modification time, or zero when it cannot be stat'ed.
func stamp(path string) time.Time {
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return fi.ModTime()
}
