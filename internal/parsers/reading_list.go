package parsers

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Entry is one parsed line of a reading list.
type Entry struct {
	Line   int
	Title  string
	Author string
}

// ParseResult contains the results of parsing a reading list
type ParseResult struct {
	LinesProcessed int      `json:"lines_processed"`
	EntriesParsed  int      `json:"entries_parsed"`
	EntriesFailed  int      `json:"entries_failed"`
	Failures       []string `json:"failures,omitempty"`
}

// ParseReadingList reads one "<title> by <author>" entry per line. Blank
// lines and lines starting with '#' are skipped; malformed lines are
// counted and reported without stopping the scan.
func ParseReadingList(r io.Reader, policy WhitespacePolicy) ([]Entry, ParseResult, error) {
	var entries []Entry
	result := ParseResult{}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		result.LinesProcessed++

		title, author, err := ParseTitleAuthor(line, policy)
		if err != nil {
			result.EntriesFailed++
			result.Failures = append(result.Failures, fmt.Sprintf("line %d: %v", lineNo, err))
			continue
		}

		entries = append(entries, Entry{Line: lineNo, Title: title, Author: author})
		result.EntriesParsed++
	}

	if err := scanner.Err(); err != nil {
		return entries, result, fmt.Errorf("failed to read reading list: %w", err)
	}

	return entries, result, nil
}
