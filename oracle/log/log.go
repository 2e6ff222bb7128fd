package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	tmlog "github.com/tendermint/tendermint/libs/log"
)

var customLog logger

type logger struct {
	mu    sync.RWMutex
	out   io.Writer
	level string
	base  tmlog.Logger
}

func init() {
	InitLogger()
}

// InitLogger writes info and above to stderr, leaving stdout to command output.
func InitLogger() {
	customLog.mu.Lock()
	defer customLog.mu.Unlock()

	customLog.out = os.Stderr
	customLog.level = "info"
	customLog.rebuild()
}

// SetOutput redirects the logger, keeping the current level.
func SetOutput(w io.Writer) {
	customLog.mu.Lock()
	defer customLog.mu.Unlock()

	customLog.out = w
	customLog.rebuild()
}

// SetLevel accepts debug, info, error or none.
func SetLevel(level string) error {
	if _, err := tmlog.AllowLevel(level); err != nil {
		return err
	}

	customLog.mu.Lock()
	defer customLog.mu.Unlock()

	customLog.level = level
	customLog.rebuild()
	return nil
}

// ResetLogger moves logging into <home>/logs/<prog>.<pid>.log, falling back
// to ~/.bandfeed when home is empty.
func ResetLogger(home string) error {
	var dir string
	if home == "" {
		osHome, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}
		dir = filepath.Join(osHome, ".bandfeed", "logs")
	} else {
		dir = filepath.Join(home, "logs")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	name := fmt.Sprintf("%s.%d.log", filepath.Base(os.Args[0]), os.Getpid())
	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	Infof("From now on, all logs will be written to %s", path)

	customLog.mu.Lock()
	defer customLog.mu.Unlock()

	customLog.out = file
	customLog.rebuild()
	return nil
}

// Logger exposes the underlying tendermint logger, e.g. for With(...).
func Logger() tmlog.Logger {
	customLog.mu.RLock()
	defer customLog.mu.RUnlock()

	return customLog.base
}

// rebuild must be called with mu held.
func (l *logger) rebuild() {
	option, err := tmlog.AllowLevel(l.level)
	if err != nil {
		option = tmlog.AllowInfo()
	}

	l.base = tmlog.NewFilter(tmlog.NewTMLogger(tmlog.NewSyncWriter(l.out)), option)
}

func Debug(v ...any) {
	Logger().Debug(fmt.Sprint(v...))
}

func Debugf(format string, v ...any) {
	Logger().Debug(fmt.Sprintf(format, v...))
}

func Info(v ...any) {
	Logger().Info(fmt.Sprint(v...))
}

func Infof(format string, v ...any) {
	Logger().Info(fmt.Sprintf(format, v...))
}

func Error(v ...any) {
	Logger().Error(fmt.Sprint(v...))
}

func Errorf(format string, v ...any) {
	Logger().Error(fmt.Sprintf(format, v...))
}

func Fatal(v ...any) {
	Logger().Error(fmt.Sprint(v...))
	os.Exit(1)
}

func Fatalf(format string, v ...any) {
	Logger().Error(fmt.Sprintf(format, v...))
	os.Exit(1)
}
