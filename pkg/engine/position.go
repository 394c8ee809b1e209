package engine

import "strings"

// lineColumn converts a byte offset into a 1-indexed line and column by
// scanning the content once. Offsets past the end clamp to the last line.
func lineColumn(content string, offset int) (line, column int) {
	if offset > len(content) {
		offset = len(content)
	}
	line = 1
	column = 1
	for i := 0; i < offset; i++ {
		if content[i] == '\n' {
			line++
			column = 1
			continue
		}
		column++
	}
	return line, column
}

// lineAt returns the trimmed text of the line containing the byte offset.
func lineAt(content string, offset int) string {
	if offset > len(content) {
		offset = len(content)
	}
	start := strings.LastIndexByte(content[:offset], '\n') + 1
	end := strings.IndexByte(content[offset:], '\n')
	if end < 0 {
		end = len(content)
	} else {
		end += offset
	}
	return strings.TrimSpace(content[start:end])
}

// lineText returns the trimmed text of a 1-indexed line, or an empty string
// when the line does not exist.
func lineText(content string, line int) string {
	if line < 1 {
		return ""
	}
	current := 1
	start := 0
	for current < line {
		next := strings.IndexByte(content[start:], '\n')
		if next < 0 {
			return ""
		}
		start += next + 1
		current++
	}
	end := strings.IndexByte(content[start:], '\n')
	if end < 0 {
		end = len(content)
	} else {
		end += start
	}
	return strings.TrimSpace(content[start:end])
}
