package events

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FilterError marks a rejected query parameter. Handlers render it as a 400
// with the offending field.
type FilterError struct {
	Field   string
	Message string
}

func (e FilterError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

var orderingWhitelist = map[string]bool{
	"data_inicio": true,
	"created_at":  true,
	"titulo":      true,
}

// ParseFilters reads the listing query parameters. Unknown enum values and
// malformed dates are rejected rather than silently ignored.
func ParseFilters(values url.Values) (Filters, error) {
	filters := Filters{Ordering: DefaultOrdering}

	if raw := strings.TrimSpace(values.Get("categoria")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filters, FilterError{Field: "categoria", Message: "deve ser um UUID válido"}
		}
		filters.CategoriaID = id
	}

	filters.CategoriaSlug = strings.ToLower(strings.TrimSpace(values.Get("categoria_slug")))

	if raw := strings.TrimSpace(values.Get("tipo_evento")); raw != "" {
		tipo := TipoEvento(strings.ToLower(raw))
		if !tipo.Valid() {
			return filters, FilterError{Field: "tipo_evento", Message: "valor não suportado"}
		}
		filters.TipoEvento = tipo
	}

	if raw := strings.TrimSpace(values.Get("status")); raw != "" {
		status := Status(strings.ToLower(raw))
		if !status.Valid() {
			return filters, FilterError{Field: "status", Message: "valor não suportado"}
		}
		filters.Status = status
	}

	if raw := strings.TrimSpace(values.Get("abrangencia")); raw != "" {
		abrangencia := Abrangencia(strings.ToLower(raw))
		if !abrangencia.Valid() {
			return filters, FilterError{Field: "abrangencia", Message: "valor não suportado"}
		}
		filters.Abrangencia = abrangencia
	}

	after, err := parseDate("data_inicio_after", values.Get("data_inicio_after"))
	if err != nil {
		return filters, err
	}
	before, err := parseDate("data_inicio_before", values.Get("data_inicio_before"))
	if err != nil {
		return filters, err
	}
	if after != nil && before != nil && before.Before(*after) {
		return filters, FilterError{Field: "data_inicio_before", Message: "deve ser igual ou posterior a data_inicio_after"}
	}
	filters.DataInicioAfter = after
	filters.DataInicioBefore = before

	filters.Search = strings.TrimSpace(values.Get("search"))

	ordering, err := parseOrdering(values.Get("ordering"))
	if err != nil {
		return filters, err
	}
	filters.Ordering = ordering

	return filters, nil
}

func parseDate(field string, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, FilterError{Field: field, Message: "deve ser uma data no formato AAAA-MM-DD"}
	}
	return &parsed, nil
}

func parseOrdering(value string) (Ordering, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultOrdering, nil
	}
	ordering := Ordering{Field: value}
	if strings.HasPrefix(value, "-") {
		ordering = Ordering{Field: value[1:], Desc: true}
	}
	if !orderingWhitelist[ordering.Field] {
		return DefaultOrdering, FilterError{Field: "ordering", Message: "campo de ordenação não suportado"}
	}
	return ordering, nil
}
