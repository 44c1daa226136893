package logging

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap/zapcore"
)

// ErrNoLogs is returned when the log directory holds no log files.
var ErrNoLogs = errors.New("no log files found")

// Entry is one parsed log line. Text-format lines only populate Level,
// Message and Raw.
type Entry struct {
	Timestamp string
	Level     string
	Message   string
	Fields    map[string]any
	Raw       string
}

// LatestFile returns the most recently modified log file in dir, ignoring
// errors.log and rotated backups.
func LatestFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoLogs
		}
		return "", fmt.Errorf("failed to read log directory: %w", err)
	}

	type candidate struct {
		path string
		mod  int64
	}
	var files []candidate
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".log" || name == ErrorFileName {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, candidate{filepath.Join(dir, name), info.ModTime().UnixNano()})
	}
	if len(files) == 0 {
		return "", ErrNoLogs
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].mod == files[j].mod {
			return files[i].path > files[j].path
		}
		return files[i].mod > files[j].mod
	})
	return files[0].path, nil
}

// ReadFile parses every non-empty line of a log file.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads entries from r.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			entries = append(entries, ParseLine(line))
		}
	}
	if err := scanner.Err(); err != nil {
		return entries, fmt.Errorf("failed to read log file: %w", err)
	}
	return entries, nil
}

// ParseLine decodes a JSON log line, falling back to the tab-separated
// console layout (timestamp, level, message, fields).
func ParseLine(line string) Entry {
	entry := Entry{Raw: line}

	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err == nil {
		entry.Timestamp, _ = fields["timestamp"].(string)
		entry.Level, _ = fields["level"].(string)
		entry.Message, _ = fields["message"].(string)
		delete(fields, "timestamp")
		delete(fields, "level")
		delete(fields, "message")
		entry.Fields = fields
		return entry
	}

	parts := strings.SplitN(line, "\t", 4)
	if len(parts) >= 3 {
		entry.Timestamp = parts[0]
		entry.Level = strings.ToLower(parts[1])
		entry.Message = parts[2]
	}
	return entry
}

// FilterLevel keeps entries at or above minLevel. An empty minLevel keeps
// everything; an invalid one is an error.
func FilterLevel(entries []Entry, minLevel string) ([]Entry, error) {
	if minLevel == "" {
		return entries, nil
	}
	min, err := zapcore.ParseLevel(minLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid level %q: %w", minLevel, err)
	}
	var out []Entry
	for _, e := range entries {
		if e.Level == "" {
			continue
		}
		if lvl, err := zapcore.ParseLevel(e.Level); err == nil && lvl >= min {
			out = append(out, e)
		}
	}
	return out, nil
}

// Tail returns the last n entries.
func Tail(entries []Entry, n int) []Entry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[len(entries)-n:]
}

// Follow calls fn for every line appended to path until ctx is done.
// Reading starts at the current end of the file.
func Follow(ctx context.Context, path string, fn func(Entry)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	offset, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("failed to seek log file: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	var pending string
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch error: %w", err)
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) || !ev.Has(fsnotify.Write) {
				continue
			}
			offset, pending, err = readAppended(f, offset, pending, fn)
			if err != nil {
				return err
			}
		}
	}
}

// readAppended emits complete lines written after offset. A trailing
// partial line is carried over to the next call.
func readAppended(f *os.File, offset int64, pending string, fn func(Entry)) (int64, string, error) {
	info, err := f.Stat()
	if err != nil {
		return offset, pending, fmt.Errorf("failed to stat log file: %w", err)
	}
	if info.Size() < offset {
		// Truncated or rotated in place.
		offset = 0
		pending = ""
	}
	if info.Size() == offset {
		return offset, pending, nil
	}

	buf := make([]byte, info.Size()-offset)
	n, err := f.ReadAt(buf, offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return offset, pending, fmt.Errorf("failed to read log file: %w", err)
	}
	offset += int64(n)

	data := pending + string(buf[:n])
	lines := strings.Split(data, "\n")
	pending = lines[len(lines)-1]
	for _, line := range lines[:len(lines)-1] {
		if line = strings.TrimSpace(line); line != "" {
			fn(ParseLine(line))
		}
	}
	return offset, pending, nil
}
