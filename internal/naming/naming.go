// Package naming produces collision-free output file names inside a
// destination directory.
package naming

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// illegal covers the characters rejected by the most restrictive
// supported filesystem (Windows); they are replaced with underscores.
const illegal = `<>:"/\|?*`

// Sanitize replaces characters that are illegal in file names with an
// underscore and strips control and other non-printable characters.
func Sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case strings.ContainsRune(illegal, r):
			b.WriteRune('_')
		case r < 0x20 || (r >= 0x80 && r <= 0x9f):
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Resolve returns a path in dir for the desired file name that does not
// exist at call time. The name is sanitized first; on collision a
// numeric disambiguator is inserted before the extension: "clip.mp4",
// "clip (1).mp4", "clip (2).mp4", and so on, with no upper bound.
//
// The check is read-then-write without a filesystem reservation, so a
// concurrent writer outside this process can still race the returned
// path. Callers that discover a late collision should simply call
// Resolve again.
func Resolve(dir, name string) string {
	name = Sanitize(name)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	candidate := filepath.Join(dir, name)
	counter := 1
	for exists(candidate) {
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", base, counter, ext))
		counter++
	}
	return candidate
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
