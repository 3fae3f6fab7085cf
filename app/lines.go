package app

import (
	"bufio"
	"io"
	"strings"
)

// forEachLine calls f on every non-blank line of r.
func forEachLine(r io.Reader, f func(string)) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			f(line)
		}
	}
	return scanner.Err()
}
