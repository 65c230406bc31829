package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/hrdiaspora/diaspora-service/internal/domain"
)

func TestParseOrder(t *testing.T) {
	def := Order{Field: "created_at", Desc: true}

	assert.Equal(t, Order{Field: "status"}, ParseOrder("status", ReferralOrderFields, def))
	assert.Equal(t, Order{Field: "sla_due_at", Desc: true}, ParseOrder("-sla_due_at", ReferralOrderFields, def))
	assert.Equal(t, def, ParseOrder("password", ReferralOrderFields, def))
	assert.Equal(t, def, ParseOrder("", ReferralOrderFields, def))
}

func TestListQueryPage(t *testing.T) {
	limit, offset := ListQuery{}.Page()
	assert.Equal(t, defaultLimit, limit)
	assert.Equal(t, 0, offset)

	limit, offset = ListQuery{Limit: 5000, Offset: -3}.Page()
	assert.Equal(t, maxLimit, limit)
	assert.Equal(t, 0, offset)
}

func TestWhereBuilderNumbersPlaceholders(t *testing.T) {
	w := newWhere()
	w.add("status=%s", "SENT")
	w.search("abebe", "a.first_name", "a.last_name")
	w.add("created_at >= %s AND created_at < %s", 1, 2)

	assert.Equal(t,
		`1=1 AND status=$1 AND (COALESCE(a.first_name::text, '') ILIKE $2 ESCAPE '\' OR COALESCE(a.last_name::text, '') ILIKE $2 ESCAPE '\') AND created_at >= $3 AND created_at < $4`,
		w.String())
	assert.Equal(t, []any{"SENT", "%abebe%", 1, 2}, w.args)
}

func TestOrderClause(t *testing.T) {
	cols := map[string]string{"name": "o.name"}

	assert.Equal(t, "o.name DESC NULLS LAST, o.id", orderClause(Order{Field: "name", Desc: true}, cols, "o.id"))
	assert.Equal(t, "o.id", orderClause(Order{Field: "unknown"}, cols, "o.id"))
}

func TestSearchMatchesWildcardsLiterally(t *testing.T) {
	w := newWhere()
	w.search(`50%_off\now`, "p.description")

	assert.Equal(t, []any{`%50\%\_off\\now%`}, w.args)
}

func TestMalformedKeysMatchNothing(t *testing.T) {
	assert.True(t, validID("3f1c9a52-8d0e-4c55-9d43-0b7f5c1f2a10"))
	assert.False(t, validID("abc"))
	assert.False(t, validID("3f1c9a52-8d0e-4c55-9d43-0b7f5c1f2a10", ""))

	w := newWhere()
	w.id("r.case_id", "x")
	w.id("r.to_office_id", "3f1c9a52-8d0e-4c55-9d43-0b7f5c1f2a10")
	assert.Equal(t, "1=1 AND FALSE AND r.to_office_id=$1", w.String())
	assert.Equal(t, []any{"3f1c9a52-8d0e-4c55-9d43-0b7f5c1f2a10"}, w.args)
}

func TestMapPgError(t *testing.T) {
	assert.ErrorIs(t, mapPgError(&pgconn.PgError{Code: pgInvalidTextValue}), ErrNotFound)

	dup := mapPgError(&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: ConstraintOfficeCode})
	assert.ErrorIs(t, dup, ErrDuplicate)
	assert.True(t, IsConstraint(dup, ConstraintOfficeCode))

	other := errors.New("connection reset")
	assert.Equal(t, other, mapPgError(other))
}

func TestRepositoriesRejectMalformedIDs(t *testing.T) {
	repos := bind(nil)

	_, err := repos.Cases.GetByID(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repos.Referrals.GetForUpdate(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repos.Diasporas.GetProfile(context.Background(), "HR-DIAS-2024-ABCD")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repos.Offices.Delete(context.Background(), "1"), ErrNotFound)

	history, err := repos.Transitions.ListByEntity(context.Background(), domain.TransitionEntityCase, "abc")
	assert.NoError(t, err)
	assert.Empty(t, history)
}
