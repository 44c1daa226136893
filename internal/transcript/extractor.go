// Package transcript extracts conversation context from a session transcript.
// A transcript is newline-delimited JSON; the extractor walks it from the end
// to find the most recent assistant message and classifies what kind of
// response that message is waiting for.
package transcript

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/ariel-frischer/webhook-notifier/internal/hook"
)

// DefaultMaxLength is used when a caller passes a non-positive max length.
const DefaultMaxLength = 200

const ellipsis = "..."

// maxLineSize bounds a single transcript record. Tool results can be large.
const maxLineSize = 16 * 1024 * 1024

// Extractor returns context for a transcript, or nil when none is available.
type Extractor interface {
	Extract(path string, maxLength int) (*hook.Context, error)
}

// FileExtractor reads transcripts from the local filesystem.
type FileExtractor struct{}

// NewExtractor returns the filesystem-backed extractor.
func NewExtractor() *FileExtractor {
	return &FileExtractor{}
}

// Extract returns the last assistant message in the transcript at path,
// truncated to maxLength characters and classified. A missing file or a
// transcript with no assistant text yields (nil, nil). Malformed records are
// skipped. The returned error is only set for I/O failures on a file that
// exists.
func (e *FileExtractor) Extract(path string, maxLength int) (*hook.Context, error) {
	if path == "" {
		return nil, nil
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	lines, err := readLines(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	for i := len(lines) - 1; i >= 0; i-- {
		text, ok := assistantText(lines[i])
		if !ok {
			continue
		}
		msg := Truncate(text, maxLength)
		return &hook.Context{LastMessage: msg, MessageType: Classify(msg)}, nil
	}
	return nil, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}
	return lines, nil
}

// assistantText returns the text of an assistant-authored record. Records are
// either flat {role, content} or nested {type, message: {role, content}},
// where content is a string or a list of typed blocks.
func assistantText(line string) (string, bool) {
	if !gjson.Valid(line) {
		return "", false
	}
	rec := gjson.Parse(line)
	if !rec.IsObject() {
		return "", false
	}

	role := rec.Get("role")
	content := rec.Get("content")
	if !role.Exists() {
		role = rec.Get("message.role")
		content = rec.Get("message.content")
	}
	if role.String() != "assistant" {
		return "", false
	}

	text := contentText(content)
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}

func contentText(content gjson.Result) string {
	switch {
	case content.Type == gjson.String:
		return content.String()
	case content.IsArray():
		var parts []string
		content.ForEach(func(_, block gjson.Result) bool {
			if block.Get("type").String() == "text" {
				if t := block.Get("text").String(); t != "" {
					parts = append(parts, t)
				}
			}
			return true
		})
		return strings.Join(parts, "\n")
	default:
		return ""
	}
}

// Truncate shortens text to maxLength characters and appends "..." when
// anything was cut.
func Truncate(text string, maxLength int) string {
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	return string(runes[:maxLength]) + ellipsis
}
