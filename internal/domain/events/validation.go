package events

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cosplay-angola/server/internal/api/problem"
)

const maxDuracaoDias = 365

const (
	msgRequired        = "Este campo é obrigatório."
	msgTooLong         = "Este campo é muito longo."
	msgInvalidValue    = "Valor inválido."
	msgInvalidDate     = "Informe uma data válida no formato AAAA-MM-DD."
	msgEndBeforeStart  = "Data de término deve ser posterior à data de início."
	msgTooLongDuration = "Evento não pode durar mais de 1 ano."
	msgStartInPast     = "Data de início não pode ser no passado."
)

// CreateInput is the JSON payload for event creation and full replacement.
type CreateInput struct {
	Titulo         string   `json:"titulo"`
	Descricao      string   `json:"descricao"`
	DataInicio     string   `json:"data_inicio"`
	DataFim        string   `json:"data_fim"`
	Local          string   `json:"local"`
	Categoria      string   `json:"categoria"`
	TipoEvento     string   `json:"tipo_evento"`
	Abrangencia    string   `json:"abrangencia"`
	Status         string   `json:"status"`
	ImagemDestaque string   `json:"imagem_destaque"`
	Parceiros      []string `json:"parceiros"`
}

// UpdateInput is the JSON payload for partial updates. Absent fields keep
// their stored value.
type UpdateInput struct {
	Titulo         *string   `json:"titulo"`
	Descricao      *string   `json:"descricao"`
	DataInicio     *string   `json:"data_inicio"`
	DataFim        *string   `json:"data_fim"`
	Local          *string   `json:"local"`
	Categoria      *string   `json:"categoria"`
	TipoEvento     *string   `json:"tipo_evento"`
	Abrangencia    *string   `json:"abrangencia"`
	Status         *string   `json:"status"`
	ImagemDestaque *string   `json:"imagem_destaque"`
	Parceiros      *[]string `json:"parceiros"`
}

// AsUpdate lifts a full payload into the partial shape so PUT and PATCH share
// one service path.
func (in CreateInput) AsUpdate() UpdateInput {
	parceiros := in.Parceiros
	if parceiros == nil {
		parceiros = []string{}
	}
	return UpdateInput{
		Titulo:         &in.Titulo,
		Descricao:      &in.Descricao,
		DataInicio:     &in.DataInicio,
		DataFim:        &in.DataFim,
		Local:          &in.Local,
		Categoria:      &in.Categoria,
		TipoEvento:     &in.TipoEvento,
		Abrangencia:    &in.Abrangencia,
		Status:         &in.Status,
		ImagemDestaque: &in.ImagemDestaque,
		Parceiros:      &parceiros,
	}
}

// normalized holds a validated payload ready for the repository.
type normalized struct {
	Titulo         string
	Descricao      string
	DataInicio     time.Time
	DataFim        *time.Time
	Local          string
	CategoriaID    uuid.UUID
	TipoEvento     TipoEvento
	Abrangencia    Abrangencia
	Status         Status
	ImagemDestaque string
	ParceiroIDs    []uuid.UUID
}

// validateCreate checks everything that does not need the database and
// collects every violation instead of stopping at the first.
func validateCreate(in CreateInput, now time.Time) (normalized, *problem.ValidationError) {
	verr := &problem.ValidationError{Fields: map[string][]string{}}
	out := normalized{}

	out.Titulo = strings.TrimSpace(in.Titulo)
	switch {
	case out.Titulo == "":
		verr.Add("titulo", msgRequired)
	case len([]rune(out.Titulo)) > 200:
		verr.Add("titulo", msgTooLong)
	}

	out.Descricao = strings.TrimSpace(in.Descricao)
	out.Local = strings.TrimSpace(in.Local)
	if len([]rune(out.Local)) > 200 {
		verr.Add("local", msgTooLong)
	}

	start, startOK := parseRequiredDate(verr, "data_inicio", in.DataInicio)
	out.DataInicio = start
	if raw := strings.TrimSpace(in.DataFim); raw != "" {
		end, err := time.Parse(dateLayout, raw)
		if err != nil {
			verr.Add("data_fim", msgInvalidDate)
		} else {
			out.DataFim = &end
		}
	}
	if startOK {
		validateDates(verr, start, out.DataFim, now, true)
	}

	if raw := strings.TrimSpace(in.Categoria); raw == "" {
		verr.Add("categoria", msgRequired)
	} else if id, err := uuid.Parse(raw); err != nil {
		verr.Add("categoria", msgInvalidValue)
	} else {
		out.CategoriaID = id
	}

	out.TipoEvento = TipoEvento(strings.ToLower(strings.TrimSpace(in.TipoEvento)))
	if out.TipoEvento == "" {
		verr.Add("tipo_evento", msgRequired)
	} else if !out.TipoEvento.Valid() {
		verr.Add("tipo_evento", msgInvalidValue)
	}

	out.Abrangencia = Abrangencia(strings.ToLower(strings.TrimSpace(in.Abrangencia)))
	if out.Abrangencia == "" {
		out.Abrangencia = AbrangenciaNacional
	} else if !out.Abrangencia.Valid() {
		verr.Add("abrangencia", msgInvalidValue)
	}

	out.Status = Status(strings.ToLower(strings.TrimSpace(in.Status)))
	if out.Status == "" {
		out.Status = StatusRascunho
	} else if !out.Status.Valid() {
		verr.Add("status", msgInvalidValue)
	}

	out.ImagemDestaque = strings.TrimSpace(in.ImagemDestaque)

	out.ParceiroIDs = parseParceiros(verr, in.Parceiros)

	if verr.HasErrors() {
		return out, verr
	}
	return out, nil
}

func parseRequiredDate(verr *problem.ValidationError, field, value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		verr.Add(field, msgRequired)
		return time.Time{}, false
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		verr.Add(field, msgInvalidDate)
		return time.Time{}, false
	}
	return parsed, true
}

// validateDates enforces the date invariants. The past-start rule applies on
// create only; rescheduling an old event is allowed.
func validateDates(verr *problem.ValidationError, start time.Time, end *time.Time, now time.Time, create bool) {
	if create && truncateDay(start).Before(truncateDay(now)) {
		verr.Add("data_inicio", msgStartInPast)
	}
	if end == nil {
		return
	}
	if truncateDay(*end).Before(truncateDay(start)) {
		verr.Add("data_fim", msgEndBeforeStart)
		return
	}
	days := int(truncateDay(*end).Sub(truncateDay(start)).Hours()/24) + 1
	if days > maxDuracaoDias {
		verr.Add("data_fim", msgTooLongDuration)
	}
}

func parseParceiros(verr *problem.ValidationError, raw []string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, value := range raw {
		id, err := uuid.Parse(strings.TrimSpace(value))
		if err != nil {
			verr.Add("parceiros", msgInvalidValue)
			return nil
		}
		ids = append(ids, id)
	}
	return ids
}
