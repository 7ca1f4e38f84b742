package validate

import (
	"errors"
	"regexp"
	"strings"

	"chronocopy/internal/model"
)

var (
	// A placeholder is [$NAME] for a global variable or [#NAME] for a
	// job-local one. Not anchored: it also matches embedded in a mask.
	placeholderRe = regexp.MustCompile(`\[(\$|#)\w+\]`)

	folderSegmentRe = regexp.MustCompile(`^([\w\-\s.]+|\[(\$|#)\w+\])$`)
	invalidCharRe   = regexp.MustCompile(`[<>:"|?*]`)
	driveLetterRe   = regexp.MustCompile(`^[a-zA-Z]:\\`)
	sharedRootRe    = regexp.MustCompile(`^\\\\[^\\]+\\[^\\]+`)
	fileLikeRe      = regexp.MustCompile(`\.\w+$`)
)

// IsPlaceholder reports whether s contains a [$NAME] or [#NAME] token.
func IsPlaceholder(s string) bool {
	return placeholderRe.MatchString(s)
}

// FolderPath validates a folder path template for the given location type.
// It returns nil when the path is well-formed and a descriptive error
// otherwise; the caller attributes the error to its field.
func FolderPath(path string, typ model.LocationType) error {
	switch typ {
	case model.LocationLocal:
		return localFolder(path)
	case model.LocationShared:
		return sharedFolder(path)
	case model.LocationAzure:
		return azureFolder(path)
	default:
		return errors.New("unknown location type: " + string(typ))
	}
}

func splitSegments(path string) []string {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '\\' || r == '/'
	})
	return parts
}

func localFolder(path string) error {
	if !driveLetterRe.MatchString(path) {
		return errors.New(`local folder must start with a drive letter, e.g. C:\Users\...`)
	}

	segments := splitSegments(path)
	if len(segments) < 2 {
		return errors.New("enter a valid local folder path (must include at least one folder after the drive)")
	}

	// segments[0] is the drive root, checked by the prefix rule above.
	if err := checkSegments(segments[1:]); err != nil {
		return err
	}

	return checkNotFile(segments[len(segments)-1], "local")
}

func sharedFolder(path string) error {
	normalized := strings.ReplaceAll(path, "/", `\`)
	if !sharedRootRe.MatchString(normalized) {
		return errors.New(`shared folder must start with \\server\share\... or //server/share/...`)
	}

	segments := splitSegments(normalized)
	if len(segments) < 3 {
		return errors.New("enter a valid shared folder path (must include at least one folder after the share)")
	}

	// segments[0] and [1] are the server and share names.
	if err := checkSegments(segments[2:]); err != nil {
		return err
	}

	return checkNotFile(segments[len(segments)-1], "shared")
}

func azureFolder(path string) error {
	segments := splitSegments(path)
	if len(segments) == 0 {
		return errors.New("enter a valid Azure folder path; placeholders like [$NAME] or [#NAME] are allowed as segments")
	}

	for _, seg := range segments {
		if !folderSegmentRe.MatchString(seg) {
			return errors.New("enter a valid Azure folder path; placeholders like [$NAME] or [#NAME] are allowed as segments")
		}
	}

	return checkNotFile(segments[len(segments)-1], "azure")
}

func checkSegments(segments []string) error {
	for _, seg := range segments {
		if !folderSegmentRe.MatchString(seg) {
			return errors.New("invalid folder segment: " + seg)
		}
		if invalidCharRe.MatchString(seg) && !placeholderRe.MatchString(seg) {
			return errors.New(`folder names cannot contain <>:"|?*`)
		}
	}
	return nil
}

// checkNotFile rejects a final segment shaped like name.ext, because folder
// templates must never terminate in a file name. A placeholder segment may
// resolve to anything, so it passes.
func checkNotFile(last, kind string) error {
	if fileLikeRe.MatchString(last) && !placeholderRe.MatchString(last) {
		return errors.New("enter a valid " + kind + " folder path (not a file path)")
	}
	return nil
}
