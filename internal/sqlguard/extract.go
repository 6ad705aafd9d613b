// Package sqlguard turns untrusted language-model output into a single
// read-only SQL statement, or explains why it cannot.
//
// The policy is a deliberately small blocklist: the statement must begin
// with SELECT and may not contain any destructive keyword as a whole word,
// even inside string literals or comments. Benign text such as
// "-- DROP semantics" is therefore rejected.
package sqlguard

import (
	"regexp"
	"strings"
)

const fence = "```"

var (
	fencedBlock = regexp.MustCompile("(?is)```(?:sql)?(.*?)```")
	selectWord  = regexp.MustCompile(`(?i)\bselect\b`)
	fenceOpen   = regexp.MustCompile("(?i)^```(?:sql)?")
)

// Extract pulls a SQL statement out of free-form model output. A fenced
// code block wins when it has content; otherwise everything from the first
// whole-word SELECT to the end of the text is taken. The bool is false when
// neither is present.
func Extract(text string) (string, bool) {
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		if sql := strings.TrimSpace(m[1]); sql != "" {
			return sql, true
		}
	}

	loc := selectWord.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	sql := strings.TrimSpace(strings.ReplaceAll(text[loc[0]:], fence, ""))
	if sql == "" {
		return "", false
	}
	return sql, true
}

// Normalize trims whitespace and fence markers and drops one trailing
// semicolon. A semicolon followed by anything else is a second statement.
func Normalize(sql string) (string, error) {
	sql = strings.TrimSpace(sql)
	sql = fenceOpen.ReplaceAllString(sql, "")
	sql = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(sql), fence))

	if i := strings.IndexByte(sql, ';'); i >= 0 {
		if strings.TrimSpace(sql[i+1:]) != "" {
			return "", reject(ReasonMultipleStatements)
		}
		sql = strings.TrimSpace(sql[:i])
	}

	if sql == "" {
		return "", reject(ReasonEmptyQuery)
	}
	return sql, nil
}
