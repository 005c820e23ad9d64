package handlers

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cosplay-angola/server/internal/api/pagination"
	"github.com/cosplay-angola/server/internal/api/problem"
	"github.com/cosplay-angola/server/internal/domain/events"
)

type EventsHandler struct {
	Service *events.Service
	Env     string
}

func NewEventsHandler(service *events.Service, env string) *EventsHandler {
	return &EventsHandler{Service: service, Env: env}
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, err := events.ParseFilters(r.URL.Query())
	if err != nil {
		respondError(w, r, err, h.Env)
		return
	}
	page, err := pagination.Parse(r.URL.Query())
	if err != nil {
		respondError(w, r, err, h.Env)
		return
	}

	result, err := h.Service.List(r.Context(), filters, page)
	if err != nil {
		respondError(w, r, err, h.Env)
		return
	}

	now := time.Now()
	results := make([]events.ListProjection, 0, len(result.Events))
	for i := range result.Events {
		results = append(results, result.Events[i].List(now))
	}

	envelope, ok := paginate(r, page, result.Count, results)
	if !ok {
		problem.Write(w, r, http.StatusNotFound, typeNotFound, "Not found", nil, h.Env,
			problem.WithDetail("Página inválida."))
		return
	}
	writeJSON(w, http.StatusOK, envelope)
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ref := pathParam(r, "id")
	event, err := h.Service.Get(r.Context(), ref)
	if err != nil {
		respondError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, event.Detail(time.Now()))
}

// Create accepts either a JSON payload or a multipart form carrying the same
// fields plus an imagem_destaque file. With a file, the upload happens after
// the row is written and a failure rolls the event back.
func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if contentType == "multipart/form-data" {
		h.createMultipart(w, r)
		return
	}

	var input events.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidation, "Invalid request", err, h.Env,
			problem.WithDetail("Corpo da requisição inválido."))
		return
	}

	event, err := h.Service.Create(r.Context(), input)
	if err != nil {
		respondError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, event.Detail(time.Now()))
}

func (h *EventsHandler) createMultipart(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidation, "Invalid request", err, h.Env,
			problem.WithDetail("Formulário multipart inválido."))
		return
	}

	input := events.CreateInput{
		Titulo:      r.FormValue("titulo"),
		Descricao:   r.FormValue("descricao"),
		DataInicio:  r.FormValue("data_inicio"),
		DataFim:     r.FormValue("data_fim"),
		Local:       r.FormValue("local"),
		Categoria:   r.FormValue("categoria"),
		TipoEvento:  r.FormValue("tipo_evento"),
		Abrangencia: r.FormValue("abrangencia"),
		Status:      r.FormValue("status"),
	}
	if values, ok := r.MultipartForm.Value["parceiros"]; ok {
		for _, value := range values {
			for _, id := range strings.Split(value, ",") {
				if id = strings.TrimSpace(id); id != "" {
					input.Parceiros = append(input.Parceiros, id)
				}
			}
		}
	}

	file, header, err := r.FormFile("imagem_destaque")
	if err != nil {
		// No file: behave exactly like the JSON path.
		event, err := h.Service.Create(r.Context(), input)
		if err != nil {
			respondError(w, r, err, h.Env)
			return
		}
		writeJSON(w, http.StatusCreated, event.Detail(time.Now()))
		return
	}
	defer file.Close()

	event, err := h.Service.CreateWithCover(r.Context(), input, file, header.Filename)
	if err != nil {
		respondError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, event.Detail(time.Now()))
}

// Update handles full replacement (PUT).
func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.Env)
	if !ok {
		return
	}

	var input events.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidation, "Invalid request", err, h.Env,
			problem.WithDetail("Corpo da requisição inválido."))
		return
	}

	event, err := h.Service.Update(r.Context(), id, input.AsUpdate())
	if err != nil {
		respondError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, event.Detail(time.Now()))
}

// Patch handles partial updates; absent fields keep their stored values.
func (h *EventsHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.Env)
	if !ok {
		return
	}

	var input events.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		problem.Write(w, r, http.StatusBadRequest, typeValidation, "Invalid request", err, h.Env,
			problem.WithDetail("Corpo da requisição inválido."))
		return
	}

	event, err := h.Service.Update(r.Context(), id, input)
	if err != nil {
		respondError(w, r, err, h.Env)
		return
	}
	writeJSON(w, http.StatusOK, event.Detail(time.Now()))
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.Env)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		respondError(w, r, err, h.Env)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Proximos lists the next published events, soonest first.
func (h *EventsHandler) Proximos(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r)
	if err != nil {
		respondError(w, r, err, h.Env)
		return
	}
	listed, err := h.Service.Proximos(r.Context(), limit)
	if err != nil {
		respondError(w, r, err, h.Env)
		return
	}
	h.writeListing(w, listed)
}

// Passados lists events that already started, most recent first.
func (h *EventsHandler) Passados(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r)
	if err != nil {
		respondError(w, r, err, h.Env)
		return
	}
	listed, err := h.Service.Passados(r.Context(), limit)
	if err != nil {
		respondError(w, r, err, h.Env)
		return
	}
	h.writeListing(w, listed)
}

// Destaques returns the front-page highlights with the full projection.
func (h *EventsHandler) Destaques(w http.ResponseWriter, r *http.Request) {
	listed, err := h.Service.Destaques(r.Context())
	if err != nil {
		respondError(w, r, err, h.Env)
		return
	}

	now := time.Now()
	results := make([]events.DetailProjection, 0, len(listed))
	for i := range listed {
		results = append(results, listed[i].Detail(now))
	}
	writeJSON(w, http.StatusOK, results)
}

// Relacionados lists published events sharing the category of the given one.
func (h *EventsHandler) Relacionados(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", h.Env)
	if !ok {
		return
	}
	listed, err := h.Service.Relacionados(r.Context(), id)
	if err != nil {
		respondError(w, r, err, h.Env)
		return
	}
	h.writeListing(w, listed)
}

func (h *EventsHandler) writeListing(w http.ResponseWriter, listed []events.Event) {
	now := time.Now()
	results := make([]events.ListProjection, 0, len(listed))
	for i := range listed {
		results = append(results, listed[i].List(now))
	}
	writeJSON(w, http.StatusOK, results)
}

func limitParam(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return pagination.DefaultPageSize, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 1 || parsed > pagination.MaxPageSize {
		return 0, events.FilterError{Field: "limit", Message: "deve ser um número entre 1 e 100"}
	}
	return parsed, nil
}
