package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/hrdiaspora/diaspora-service/internal/domain"
)

const (
	defaultLimit = 20
	maxLimit     = 200
)

// ListQuery carries the paging, search and ordering shared by all listings.
type ListQuery struct {
	Search   string
	Ordering string
	Limit    int
	Offset   int
}

// Page returns the effective limit and offset.
func (q ListQuery) Page() (int, int) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// Term is the normalised search term, empty when no search was requested.
func (q ListQuery) Term() string {
	return strings.ToLower(strings.TrimSpace(q.Search))
}

// Order is a resolved ordering field.
type Order struct {
	Field string
	Desc  bool
}

// ParseOrder resolves "field" or "-field" against the allowed fields. Unknown
// fields fall back to def.
func ParseOrder(ordering string, allowed []string, def Order) Order {
	ordering = strings.TrimSpace(ordering)
	desc := strings.HasPrefix(ordering, "-")
	field := strings.TrimPrefix(ordering, "-")
	for _, candidate := range allowed {
		if candidate == field {
			return Order{Field: field, Desc: desc}
		}
	}
	return def
}

// Ordering fields per listing.
var (
	OfficeOrderFields   = []string{"name", "code", "type"}
	DiasporaOrderFields = []string{"created_at", "updated_at", "first_name", "last_name"}
	PurposeOrderFields  = []string{"created_at", "status", "type", "estimated_capital"}
	CaseOrderFields     = []string{"created_at", "updated_at", "current_stage", "overall_status"}
	ReferralOrderFields = []string{"created_at", "status", "sla_due_at", "completed_at"}

	DefaultOfficeOrder   = Order{Field: "name"}
	DefaultDiasporaOrder = Order{Field: "created_at", Desc: true}
	DefaultPurposeOrder  = Order{Field: "created_at", Desc: true}
	DefaultCaseOrder     = Order{Field: "updated_at", Desc: true}
	DefaultReferralOrder = Order{Field: "created_at", Desc: true}
)

type OfficeFilter struct {
	ListQuery
	Type *domain.OfficeType
}

type DiasporaFilter struct {
	ListQuery
	OwnerOfficeID *string
}

type PurposeFilter struct {
	ListQuery
	DiasporaID *string
	Type       *domain.PurposeType
	Status     *domain.PurposeStatus
}

type CaseFilter struct {
	ListQuery
	Stage         *domain.CaseStage
	OverallStatus *domain.CaseStatus
}

// ReferralFilter narrows referral listings. OverdueAt selects open referrals
// whose SLA deadline is before the given instant.
type ReferralFilter struct {
	ListQuery
	CaseID     *string
	Status     *domain.ReferralStatus
	ToOfficeID *string
	OverdueAt  *time.Time
}

// whereBuilder accumulates SQL predicates with positional arguments.
type whereBuilder struct {
	clauses []string
	args    []any
}

func newWhere() *whereBuilder {
	return &whereBuilder{clauses: []string{"1=1"}}
}

// arg appends v and returns its placeholder.
func (w *whereBuilder) arg(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *whereBuilder) add(format string, values ...any) {
	placeholders := make([]any, len(values))
	for i, v := range values {
		placeholders[i] = w.arg(v)
	}
	w.clauses = append(w.clauses, fmt.Sprintf(format, placeholders...))
}

// id adds an equality predicate on a key column. A malformed key matches nothing.
func (w *whereBuilder) id(column, value string) {
	if !validID(value) {
		w.clauses = append(w.clauses, "FALSE")
		return
	}
	w.add(column+"=%s", value)
}

// likeEscaper makes LIKE wildcards in a search term match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// search adds a case-insensitive substring match across columns.
func (w *whereBuilder) search(term string, columns ...string) {
	if term == "" || len(columns) == 0 {
		return
	}
	p := w.arg("%" + likeEscaper.Replace(term) + "%")
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = fmt.Sprintf(`COALESCE(%s::text, '') ILIKE %s ESCAPE '\'`, col, p)
	}
	w.clauses = append(w.clauses, "("+strings.Join(parts, " OR ")+")")
}

func (w *whereBuilder) String() string {
	return strings.Join(w.clauses, " AND ")
}

// orderClause renders an ORDER BY using columns keyed by order field.
func orderClause(o Order, columns map[string]string, tiebreak string) string {
	col, ok := columns[o.Field]
	if !ok {
		return tiebreak
	}
	dir := "ASC"
	if o.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s NULLS LAST, %s", col, dir, tiebreak)
}
