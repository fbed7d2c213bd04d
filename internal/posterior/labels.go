package posterior

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// AverageLabel is the display label of the grand-average row. It is
// pinned first so every forest plot leads with the pooled estimate.
const AverageLabel = "Average"

// delimiters commonly left in factor levels by spreadsheet coding.
var delimiterReplacer = strings.NewReplacer("_", " ", ".", " ", "-", " ")

// titleCaser capitalizes the first letter of each word without lowering
// the rest, so author labels like "McCord" survive cleaning.
var titleCaser = cases.Title(language.English, cases.NoLower)

// Clean normalizes a factor level into its display label: delimiters
// become spaces, runs of whitespace collapse, and the first letter of
// each word is capitalized.
func Clean(label string) string {
	cleaned := delimiterReplacer.Replace(label)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	return titleCaser.String(cleaned)
}
