package stacktrace

import "strings"

// InternalPaths extracts internal package frames ("internal/...go:line") from
// a raw debug.Stack dump, so panic logs stay readable.
func InternalPaths(stack []byte) []string {
	lines := strings.Split(string(stack), "\n")
	paths := make([]string, 0, 8)

	for _, line := range lines {
		line = strings.TrimSpace(line)

		idx := strings.Index(line, "/internal/")
		if idx == -1 || !strings.Contains(line, ".go:") {
			continue
		}

		frame := line[idx+1:]
		if end := strings.IndexByte(frame, ' '); end != -1 {
			frame = frame[:end]
		}

		paths = append(paths, frame)
	}

	return paths
}
