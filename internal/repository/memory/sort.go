package memory

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/hrdiaspora/diaspora-service/internal/repository"
)

// sortKey is one comparable column value. Null values sort last in both directions.
type sortKey struct {
	null bool
	s    string
	t    time.Time
	f    float64
}

func strKey(s string) sortKey { return sortKey{s: s} }

func timeKey(t time.Time) sortKey { return sortKey{t: t} }

func timePtrKey(t *time.Time) sortKey {
	if t == nil {
		return sortKey{null: true}
	}
	return sortKey{t: *t}
}

func floatPtrKey(f *float64) sortKey {
	if f == nil {
		return sortKey{null: true}
	}
	return sortKey{f: *f}
}

func compareKeys(a, b sortKey, desc bool) int {
	if a.null != b.null {
		if a.null {
			return 1
		}
		return -1
	}
	c := cmp.Compare(a.s, b.s)
	if c == 0 {
		c = a.t.Compare(b.t)
	}
	if c == 0 {
		c = cmp.Compare(a.f, b.f)
	}
	if desc {
		c = -c
	}
	return c
}

// order sorts items by the key of the chosen field, ties broken by id.
func order[T any](items []T, o repository.Order, key func(field string, item T) sortKey, id func(T) string) {
	slices.SortStableFunc(items, func(a, b T) int {
		if c := compareKeys(key(o.Field, a), key(o.Field, b), o.Desc); c != 0 {
			return c
		}
		return cmp.Compare(id(a), id(b))
	})
}

// paginate applies the query's limit and offset.
func paginate[T any](items []T, q repository.ListQuery) []T {
	limit, offset := q.Page()
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// matches reports whether any field contains term, ignoring case.
func matches(term string, fields ...string) bool {
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
