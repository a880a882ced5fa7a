// Package logger owns the zerolog root logger shared by the process.
//
// main configures it through Init; packages then take a tagged child from
// Component.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the root logger.
type Options struct {
	Level   string // trace, debug, info, warn or error; anything else is info
	Pretty  bool   // console writer instead of JSON lines
	Output  io.Writer
	Service string // stamped on every entry as "service"
}

var (
	mu   sync.Mutex
	root atomic.Pointer[zerolog.Logger]
)

// Init installs the root logger and returns it. Once a root exists, later
// calls return it unchanged.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if l := root.Load(); l != nil {
		return *l
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	lvl := parseLevel(opts.Level)
	zerolog.SetGlobalLevel(lvl)

	l := zerolog.New(writer(opts)).Level(lvl).With().Timestamp()
	if opts.Service != "" {
		l = l.Str("service", opts.Service)
	}
	built := l.Logger()
	root.Store(&built)
	return built
}

// Get returns the root logger and panics when Init has not run.
func Get() zerolog.Logger {
	l := root.Load()
	if l == nil {
		panic("logger: Get() called before Init()")
	}
	return *l
}

// Component tags the root logger with a subsystem, such as "orders".
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset forgets the root so tests can call Init again.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	root.Store(nil)
}

func writer(opts Options) io.Writer {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return out
}

func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
