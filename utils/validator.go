// utils/validator.go - Input sanitizing
package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var unsafeFilenameChars = regexp.MustCompile(`[^\p{L}\p{N}._-]+`)

// SanitizeInput removes potentially harmful characters
func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)
	return strings.ReplaceAll(input, "\x00", "")
}

// SanitizeForFilename collapses anything that is not a letter, digit, dot, dash or
// underscore into a single underscore.
func SanitizeForFilename(name string) string {
	cleaned := unsafeFilenameChars.ReplaceAllString(SanitizeInput(name), "_")
	return strings.Trim(cleaned, "._")
}

// MergedDocumentFilename follows the backend naming of merge_submissions outputs:
// <submission_number>_merged_document.pdf, falling back to TYPE-<id>.
func MergedDocumentFilename(submissionNumber, submissionType string, submissionID int) string {
	base := strings.TrimSpace(submissionNumber)
	if base == "" && submissionID > 0 {
		base = fmt.Sprintf("%s-%d", strings.ToUpper(strings.TrimSpace(submissionType)), submissionID)
	}
	base = SanitizeForFilename(base)
	if base == "" {
		base = fmt.Sprintf("submission-%d", submissionID)
	}
	return base + "_merged_document.pdf"
}
