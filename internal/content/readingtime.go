// Package content holds pure text helpers for article bodies and metadata.
package content

import "strings"

// WordsPerMinute is the reading speed used by ReadingTime.
const WordsPerMinute = 200

// WordCount returns the number of whitespace-delimited tokens in body.
func WordCount(body string) int {
	return len(strings.Fields(body))
}

// ReadingTime estimates reading time in whole minutes.
// The result is never below 1, including for an empty body.
func ReadingTime(body string) int {
	words := WordCount(body)
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}
