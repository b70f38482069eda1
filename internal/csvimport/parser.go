// Package csvimport reads the product export of the old site.
package csvimport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrUnterminatedQuote = errors.New("csv: unterminated quoted field")

const bom = '\uFEFF'

// Parse splits r into records. It accepts quoted fields with doubled quotes,
// commas and newlines inside quotes, LF or CRLF line endings, a final record
// without a line ending and a leading byte order mark. Blank lines are
// skipped.
func Parse(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)

	var (
		records      [][]string
		record       []string
		field        strings.Builder
		inQuotes     bool
		fieldQuoted  bool
		recordQuoted bool
		line         = 1
		quoteLine    int
	)

	endField := func() {
		record = append(record, field.String())
		field.Reset()
		fieldQuoted = false
	}
	endRecord := func() {
		endField()
		// A line holding nothing at all is blank; `""` is a real empty field.
		if len(record) > 1 || record[0] != "" || recordQuoted {
			records = append(records, record)
		}
		record = nil
		recordQuoted = false
	}

	for i := 0; ; i++ {
		c, _, err := br.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if i == 0 && c == bom {
			continue
		}

		if inQuotes {
			switch c {
			case '"':
				next, _, err := br.ReadRune()
				if err == nil && next == '"' {
					field.WriteRune('"')
					continue
				}
				if err == nil {
					_ = br.UnreadRune()
				}
				inQuotes = false
			case '\n':
				line++
				field.WriteRune(c)
			default:
				field.WriteRune(c)
			}
			continue
		}

		switch c {
		case '"':
			if field.Len() == 0 && !fieldQuoted {
				inQuotes = true
				fieldQuoted = true
				recordQuoted = true
				quoteLine = line
				continue
			}
			// Stray quote in an unquoted field is kept as text.
			field.WriteRune(c)
		case ',':
			endField()
		case '\r':
			next, _, err := br.ReadRune()
			if err == nil && next != '\n' {
				_ = br.UnreadRune()
			}
			line++
			endRecord()
		case '\n':
			line++
			endRecord()
		default:
			field.WriteRune(c)
		}
	}

	if inQuotes {
		return nil, fmt.Errorf("line %d: %w", quoteLine, ErrUnterminatedQuote)
	}
	if field.Len() > 0 || len(record) > 0 || fieldQuoted {
		endRecord()
	}
	return records, nil
}
