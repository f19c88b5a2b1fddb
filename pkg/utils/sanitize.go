package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizer = bluemonday.UGCPolicy()

// Sanitize strips markup that is unsafe to render back to other users.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
