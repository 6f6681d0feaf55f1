package logging

import (
	"encoding/json"
	"strings"
)

// ParseTextLine extracts the level and message from a line written by a
// slog text or JSON handler in a child process. Lines in any other format
// are returned unchanged at info level. Levels are reported as
// "debug", "info", "warning" or "error".
func ParseTextLine(line string) (level, msg string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "info", line
	}

	if strings.HasPrefix(trimmed, "{") {
		var rec struct {
			Level string `json:"level"`
			Msg   string `json:"msg"`
		}
		if err := json.Unmarshal([]byte(trimmed), &rec); err == nil && rec.Level != "" {
			return normalizeLevel(rec.Level), rec.Msg
		}
		return "info", line
	}

	idx := strings.Index(trimmed, "level=")
	if idx < 0 || (idx > 0 && trimmed[idx-1] != ' ') {
		return "info", line
	}

	rest := trimmed[idx+len("level="):]
	end := strings.IndexByte(rest, ' ')
	if end < 0 {
		return normalizeLevel(rest), ""
	}
	return normalizeLevel(rest[:end]), strings.TrimSpace(rest[end+1:])
}

func normalizeLevel(level string) string {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return "debug"
	case "WARN", "WARNING":
		return "warning"
	case "ERROR":
		return "error"
	default:
		return "info"
	}
}
