package igdb

import (
	"strconv"
	"strings"
)

// Query renders the provider's query language:
//
//	search "zelda"; fields name,slug; where id = 1; sort first_release_date desc; limit 10;
type Query struct {
	Search string
	Fields []string
	Where  string
	Sort   string
	Limit  int
}

func (q Query) String() string {
	var b strings.Builder
	if q.Search != "" {
		b.WriteString("search " + Quote(q.Search) + "; ")
	}
	fields := "*"
	if len(q.Fields) > 0 {
		fields = strings.Join(q.Fields, ",")
	}
	b.WriteString("fields " + fields + ";")
	if q.Where != "" {
		b.WriteString(" where " + q.Where + ";")
	}
	if q.Sort != "" {
		b.WriteString(" sort " + q.Sort + ";")
	}
	if q.Limit > 0 {
		b.WriteString(" limit " + strconv.Itoa(q.Limit) + ";")
	}
	return b.String()
}

// Quote wraps s as a query-language string literal.
func Quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
