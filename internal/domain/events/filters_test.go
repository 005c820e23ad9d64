package events

import (
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestParseFiltersDefaults(t *testing.T) {
	filters, err := ParseFilters(url.Values{})
	require.NoError(t, err)
	require.Equal(t, DefaultOrdering, filters.Ordering)
	require.Equal(t, uuid.Nil, filters.CategoriaID)
	require.Nil(t, filters.DataInicioAfter)
	require.Nil(t, filters.DataInicioBefore)
}

func TestParseFiltersRejectsUnknownEnums(t *testing.T) {
	for _, params := range []url.Values{
		{"tipo_evento": {"festival"}},
		{"status": {"agendado"}},
		{"abrangencia": {"regional"}},
		{"categoria": {"not-a-uuid"}},
		{"ordering": {"id"}},
		{"ordering": {"-password_hash"}},
	} {
		_, err := ParseFilters(params)
		var ferr FilterError
		require.ErrorAs(t, err, &ferr, "params %v", params)
		require.NotEmpty(t, ferr.Field)
	}
}

func TestParseFiltersAcceptsCaseInsensitiveEnums(t *testing.T) {
	filters, err := ParseFilters(url.Values{
		"tipo_evento": {"Concurso"},
		"status":      {"PUBLICADO"},
		"abrangencia": {"nacional"},
	})
	require.NoError(t, err)
	require.Equal(t, TipoConcurso, filters.TipoEvento)
	require.Equal(t, StatusPublicado, filters.Status)
	require.Equal(t, AbrangenciaNacional, filters.Abrangencia)
}

func TestParseFiltersDateRange(t *testing.T) {
	filters, err := ParseFilters(url.Values{
		"data_inicio_after":  {"2026-01-01"},
		"data_inicio_before": {"2026-12-31"},
	})
	require.NoError(t, err)
	require.Equal(t, date("2026-01-01"), *filters.DataInicioAfter)
	require.Equal(t, date("2026-12-31"), *filters.DataInicioBefore)

	_, err = ParseFilters(url.Values{"data_inicio_after": {"01/01/2026"}})
	var ferr FilterError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, "data_inicio_after", ferr.Field)

	_, err = ParseFilters(url.Values{
		"data_inicio_after":  {"2026-12-31"},
		"data_inicio_before": {"2026-01-01"},
	})
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, "data_inicio_before", ferr.Field)
}

func TestParseFiltersOrdering(t *testing.T) {
	filters, err := ParseFilters(url.Values{"ordering": {"titulo"}})
	require.NoError(t, err)
	require.Equal(t, Ordering{Field: "titulo"}, filters.Ordering)

	filters, err = ParseFilters(url.Values{"ordering": {"-created_at"}})
	require.NoError(t, err)
	require.Equal(t, Ordering{Field: "created_at", Desc: true}, filters.Ordering)
}

func TestParseFiltersSearchAndSlug(t *testing.T) {
	filters, err := ParseFilters(url.Values{
		"search":         {"  luanda  "},
		"categoria_slug": {"Concursos"},
	})
	require.NoError(t, err)
	require.Equal(t, "luanda", filters.Search)
	require.Equal(t, "concursos", filters.CategoriaSlug)
}
