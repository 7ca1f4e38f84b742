package copier

import "path/filepath"

// ignorePatterns are never enumerated as source files: in-flight copies from
// this engine and the usual editor and OS junk.
var ignorePatterns = []string{
	"*.chronocopy.tmp",
	"~$*",
	".~lock.*",
	"Thumbs.db",
	".DS_Store",
}

func shouldIgnore(name string) bool {
	for _, pattern := range ignorePatterns {
		matched, err := filepath.Match(pattern, name)
		if err == nil && matched {
			return true
		}
	}
	return false
}
