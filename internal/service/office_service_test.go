package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrdiaspora/diaspora-service/internal/repository"
	apperrors "github.com/hrdiaspora/diaspora-service/pkg/util"
)

func TestOfficeKeepsPlainTextVerbatim(t *testing.T) {
	h := newHarness(t)

	office, err := h.offices.Create(h.ctx, OfficeInput{
		Name:    "  Land & Housing Bureau ",
		Code:    "land",
		Address: "<b>Bole</b> Road & 22nd St",
	})
	require.NoError(t, err)
	assert.Equal(t, "Land & Housing Bureau", office.Name)
	assert.Equal(t, "LAND", office.Code)
	assert.Equal(t, "Bole Road & 22nd St", office.Address)

	found, err := h.offices.List(h.ctx, repository.OfficeFilter{
		ListQuery: repository.ListQuery{Search: "land & housing"},
	})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, office.ID, found[0].ID)
}

func TestOfficeValidation(t *testing.T) {
	h := newHarness(t)

	_, err := h.offices.Create(h.ctx, OfficeInput{Name: " ", Code: "X"})
	requireCode(t, err, apperrors.CodeValidationFailed)

	h.office(t, "Diaspora Desk", "DD")
	_, err = h.offices.Create(h.ctx, OfficeInput{Name: "Other Desk", Code: "dd"})
	requireCode(t, err, apperrors.CodeAlreadyExists)
}
