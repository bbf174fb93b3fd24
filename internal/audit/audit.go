package audit

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	defaultFileMode = 0600
	defaultDirMode  = 0700

	// DefaultKeep is how many entries survive compaction on Open.
	DefaultKeep = 1000
)

// Entry is one recorded admin action.
type Entry struct {
	Seq    uint64    `json:"seq"`
	At     time.Time `json:"at"`
	Action string    `json:"action"`
	Target string    `json:"target"`
	OK     bool      `json:"ok"`
	Error  string    `json:"error,omitempty"`
}

// Log is an append-only JSONL record of admin actions.
type Log struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	nextSeq uint64
	recent  []Entry // newest last, bounded by keep
	keep    int
}

// Open creates or opens a log at path, keeping at most keep entries. On
// open it drops older entries and ignores a partially written trailing line.
func Open(path string, keep int) (*Log, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("audit: path is empty")
	}
	if keep <= 0 {
		keep = DefaultKeep
	}
	if err := os.MkdirAll(filepath.Dir(path), defaultDirMode); err != nil {
		return nil, fmt.Errorf("audit: mkdir: %w", err)
	}

	entries, err := compact(path, keep)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, defaultFileMode)
	if err != nil {
		return nil, fmt.Errorf("audit: open: %w", err)
	}

	var next uint64 = 1
	for _, e := range entries {
		if e.Seq >= next {
			next = e.Seq + 1
		}
	}
	return &Log{
		path:    path,
		file:    f,
		nextSeq: next,
		recent:  entries,
		keep:    keep,
	}, nil
}

// Append persists one entry, assigning its sequence number.
func (l *Log) Append(e Entry) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return Entry{}, errors.New("audit: log is closed")
	}

	e.Seq = l.nextSeq
	if e.At.IsZero() {
		e.At = time.Now()
	}
	line, err := json.Marshal(e)
	if err != nil {
		return Entry{}, fmt.Errorf("audit: marshal entry: %w", err)
	}
	line = append(line, '\n')
	if _, err := l.file.Write(line); err != nil {
		return Entry{}, fmt.Errorf("audit: write entry: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return Entry{}, fmt.Errorf("audit: sync entry: %w", err)
	}
	l.nextSeq++

	l.recent = append(l.recent, e)
	if over := len(l.recent) - l.keep; over > 0 {
		l.recent = append(l.recent[:0:0], l.recent[over:]...)
	}
	return e, nil
}

// Recent returns up to n entries, newest first.
func (l *Log) Recent(n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n <= 0 || n > len(l.recent) {
		n = len(l.recent)
	}
	out := make([]Entry, 0, n)
	for i := len(l.recent) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, l.recent[i])
	}
	return out
}

// Path returns the log file location.
func (l *Log) Path() string { return l.path }

// Close closes the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// readEntries returns the well-formed entries in r. Complete lines that
// do not parse are skipped; a partial trailing line is ignored.
func readEntries(r io.Reader) ([]Entry, error) {
	var out []Entry
	reader := bufio.NewReader(r)
	for {
		line, rerr := reader.ReadBytes('\n')
		if rerr != nil && !errors.Is(rerr, io.EOF) {
			return nil, fmt.Errorf("audit: read: %w", rerr)
		}
		if len(line) == 0 || line[len(line)-1] != '\n' {
			return out, nil
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err == nil && e.Seq > 0 {
			out = append(out, e)
		}
		if errors.Is(rerr, io.EOF) {
			return out, nil
		}
	}
}

func compact(path string, keep int) ([]Entry, error) {
	src, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, defaultFileMode)
	if err != nil {
		return nil, fmt.Errorf("audit: open source for compact: %w", err)
	}
	entries, err := readEntries(src)
	_ = src.Close()
	if err != nil {
		return nil, err
	}
	if len(entries) > keep {
		entries = entries[len(entries)-keep:]
	}

	tmpPath := path + ".compact"
	dst, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, defaultFileMode)
	if err != nil {
		return nil, fmt.Errorf("audit: open compact tmp: %w", err)
	}
	w := bufio.NewWriter(dst)
	enc := json.NewEncoder(w)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			_ = dst.Close()
			_ = os.Remove(tmpPath)
			return nil, fmt.Errorf("audit: compact write: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = dst.Close()
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("audit: compact flush: %w", err)
	}
	if err := dst.Sync(); err != nil {
		_ = dst.Close()
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("audit: compact sync: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("audit: compact close: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("audit: compact rename: %w", err)
	}
	return entries, nil
}
