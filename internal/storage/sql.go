package storage

import (
	"strconv"
	"strings"
)

func (s *Store) rebind(query string) string {
	if s.driver != "pgx" {
		return query
	}
	return numberedPlaceholders(query)
}

// numberedPlaceholders rewrites '?' into '$1, $2, ...' outside quoted text.
func numberedPlaceholders(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	var quote byte
	n := 0
	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
			b.WriteByte(ch)
		case ch == '\'' || ch == '"':
			quote = ch
			b.WriteByte(ch)
		case ch == '?':
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}
