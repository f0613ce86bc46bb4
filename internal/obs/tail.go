package obs

import (
	"bufio"
	"encoding/json"
	"log/slog"
	"os"
	"strings"

	"github.com/go-faster/errors"
)

// Tail returns at most n lines from the end of the file at path. A missing
// file yields no lines and no error.
func Tail(path string, n int) ([]string, error) {
	if n <= 0 || strings.TrimSpace(path) == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "open log")
	}
	defer func() { _ = f.Close() }()

	ring := make([]string, n)
	count, next := 0, 0
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		ring[next] = sc.Text()
		next = (next + 1) % n
		count++
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read log")
	}

	if count < n {
		return ring[:count], nil
	}
	out := make([]string, 0, n)
	out = append(out, ring[next:]...)
	return append(out, ring[:next]...), nil
}

// LineLevel extracts the record level from one line written by a text or
// JSON handler. Lines without one report slog.LevelInfo.
func LineLevel(line string) slog.Level {
	if strings.HasPrefix(line, "{") {
		var rec struct {
			Level string `json:"level"`
		}
		if json.Unmarshal([]byte(line), &rec) == nil && rec.Level != "" {
			return parseLevel(rec.Level)
		}
		return slog.LevelInfo
	}
	for _, field := range strings.Fields(line) {
		if v, ok := strings.CutPrefix(field, "level="); ok {
			return parseLevel(v)
		}
	}
	return slog.LevelInfo
}
