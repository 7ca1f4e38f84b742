package validate

import (
	"regexp"
	"strings"
)

var (
	// A direct file name: letters-only extension, at least two letters.
	directFileNameRe = regexp.MustCompile(`^[\w,\s-]+\.[A-Za-z]{2,}$`)

	// Wildcard patterns: *, name, name*, *.ext, name.ext, name*.ext.
	fileMaskRe = regexp.MustCompile(`^(\*|\w+|\w+\*|\*\.\w+|\w+\.\w+|\w+\*\.?\w*)$`)

	// Literal text with one or more embedded placeholders, optionally
	// followed by a wildcard and/or extension.
	maskWithPlaceholderRe = regexp.MustCompile(`^([\w,\s-]*\[(\$|#)\w+\][\w,\s-]*)+(\*|\.\w+|\*\.?\w*)*$`)
)

const maskShapeMessage = "enter a valid file mask (e.g. *.csv), direct file name (e.g. test.csv), " +
	"placeholder (e.g. [$MASK] or [#MASK]), or a mask with placeholders (e.g. source_[#TodayAsyyyyMMdd].csv)"

// IsDirectFileName reports whether mask names exactly one file.
func IsDirectFileName(mask string) bool {
	return directFileNameRe.MatchString(mask)
}

// FileMaskShape reports whether a single mask is well-formed. Empty is
// always valid.
func FileMaskShape(mask string) bool {
	return mask == "" ||
		placeholderRe.MatchString(mask) ||
		fileMaskRe.MatchString(mask) ||
		directFileNameRe.MatchString(mask) ||
		maskWithPlaceholderRe.MatchString(mask)
}

// FileMasks validates the source/target mask pair jointly:
//
//   - target must be blank when source is blank;
//   - a direct-file source demands a direct-file target;
//   - a pattern (or blank) source forbids a direct-file target.
//
// Cross-field violations land on targetFileMask; shape violations land on
// their own field and take precedence when both apply.
func FileMasks(sourceMask, targetMask string) Errors {
	var errs Errors

	source := strings.TrimSpace(sourceMask)
	target := strings.TrimSpace(targetMask)

	if source != "" && !FileMaskShape(source) {
		errs.Add("sourceFileMask", maskShapeMessage)
	}
	if target != "" && !FileMaskShape(target) {
		errs.Add("targetFileMask", maskShapeMessage)
	}

	if source == "" && target != "" {
		errs.Add("targetFileMask", "target file mask should be blank if source file mask is blank")
	}

	if source != "" && IsDirectFileName(source) && target != "" && !IsDirectFileName(target) {
		errs.Add("targetFileMask", "target file mask should also be a direct file name if source file mask is a direct file name")
	}

	if source != "" && !IsDirectFileName(source) && target != "" && IsDirectFileName(target) {
		errs.Add("targetFileMask", "target file mask should not be a direct file name if source file mask is a pattern or blank")
	}

	return errs
}
