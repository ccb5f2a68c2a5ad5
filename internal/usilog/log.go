// Package usilog provides the file/stdout sink used to record match
// commentary, independent of the structured github.com/seekerror/logw
// diagnostics (including engine traffic) used elsewhere in this module.
package usilog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Log is a thread-safe sink that lazily opens a UTF-8-with-BOM text file
// on first write and optionally echoes every line to stdout.
type Log struct {
	mu          sync.Mutex
	folder      string
	fileLogging bool
	alsoPrint   bool
	file        *os.File
	writer      *transform.Writer
}

var instanceCount int

// New returns a Log rooted at folder. fileLogging controls whether
// writes are persisted to disk; alsoPrint controls whether they are
// additionally echoed to stdout.
func New(folder string, fileLogging, alsoPrint bool) *Log {
	return &Log{folder: folder, fileLogging: fileLogging, alsoPrint: alsoPrint}
}

// open creates the log folder if needed and opens a new UTF-8 BOM file
// named log<YYYY-MM-DD HH-MM-SS>_<instance>.txt. Must be called with mu
// held.
func (l *Log) open() error {
	if l.file != nil {
		return nil
	}
	if err := os.MkdirAll(l.folder, 0o755); err != nil {
		return fmt.Errorf("creating log folder %s: %w", l.folder, err)
	}
	instanceCount++
	name := fmt.Sprintf("log%s_%d.txt", time.Now().Format("2006-01-02 15-04-05"), instanceCount)
	f, err := os.Create(filepath.Join(l.folder, name))
	if err != nil {
		return fmt.Errorf("creating log file: %w", err)
	}
	l.file = f
	l.writer = transform.NewWriter(f, unicode.UTF8BOM.NewEncoder())
	return nil
}

// Close flushes and releases the underlying file, if one was opened.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.writer = nil
	return err
}

// Print writes message, optionally prefixed with a "[YYYY/MM/DD
// HH:MM:SS]" timestamp, to the file (if file logging is enabled) and to
// stdout (if echoing is enabled).
func (l *Log) Print(message string, withTimestamp bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	line := message
	if withTimestamp {
		line = fmt.Sprintf("[%s] %s", time.Now().Format("2006/01/02 15:04:05"), message)
	}

	if l.fileLogging {
		if err := l.open(); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(l.writer, line); err != nil {
			return err
		}
	}
	if l.alsoPrint {
		fmt.Println(line)
	}
	return nil
}

var (
	singletonMu sync.Mutex
	singleton   *Log
)

// SingletonGet returns the process-wide default Log, rooted at the
// "log" folder, creating it on first call.
func SingletonGet() *Log {
	singletonMu.Lock()
	defer singletonMu.Unlock()
	if singleton == nil {
		singleton = New("log", true, true)
	}
	return singleton
}
