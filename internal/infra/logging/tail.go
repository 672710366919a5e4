package logging

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Tail returns the lines of the log file preceding the last one, at most n of them.
// The newest line is skipped because it is usually the request that asked for the tail.
func Tail(path string, n int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	// Ring buffer of n+1 lines: the window plus the newest line we drop.
	ring := make([]string, 0, n+1)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if len(ring) == n+1 {
			ring = ring[1:]
		}
		ring = append(ring, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("read log file: %w", err)
	}
	if len(ring) <= 1 {
		return "", nil
	}
	return strings.Join(ring[:len(ring)-1], "\n") + "\n", nil
}
