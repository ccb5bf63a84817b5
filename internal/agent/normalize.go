package agent

import "regexp"

var (
	degreeRe = regexp.MustCompile(`(\d+(?:\.\d+)?)[\s]?[°º]`)
	minRe    = regexp.MustCompile(`(?i)Min:?\s*(\d+)`)
	maxRe    = regexp.MustCompile(`(?i)Max:?\s*(\d+)`)
)

// Normalize rewrites raw snippet text into a form the model handles better,
// especially cryptic weather notations. "21.9º" and "25°" become
// "21.9 graus"; "Min: 20" / "max 30" become "Mínima: 20" / "Máxima: 30".
// Text with no matching pattern is returned unchanged. Pure and idempotent.
func Normalize(text string) string {
	text = degreeRe.ReplaceAllString(text, "${1} graus")
	text = minRe.ReplaceAllString(text, "Mínima: ${1}")
	text = maxRe.ReplaceAllString(text, "Máxima: ${1}")
	return text
}
