package events

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/cosplay-angola/server/internal/api/problem"
)

// PartnerInput is the JSON payload for partner create and update.
type PartnerInput struct {
	Nome      string `json:"nome"`
	Tipo      string `json:"tipo"`
	LogoURL   string `json:"logo_url"`
	Site      string `json:"site"`
	Descricao string `json:"descricao"`
	Ativo     *bool  `json:"ativo"`
}

type PartnerService struct {
	repo PartnerRepository
}

func NewPartnerService(repo PartnerRepository) *PartnerService {
	return &PartnerService{repo: repo}
}

// List returns partners, optionally narrowed by tipo and active flag.
func (s *PartnerService) List(ctx context.Context, tipo, ativo string) ([]Partner, error) {
	filter := PartnerTipo(strings.ToLower(strings.TrimSpace(tipo)))
	if filter != "" && !filter.Valid() {
		return nil, FilterError{Field: "tipo", Message: "valor não suportado"}
	}

	var active *bool
	if raw := strings.TrimSpace(ativo); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, FilterError{Field: "ativo", Message: "valor não suportado"}
		}
		active = &parsed
	}
	return s.repo.List(ctx, filter, active)
}

func (s *PartnerService) Get(ctx context.Context, id uuid.UUID) (*Partner, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PartnerService) Create(ctx context.Context, input PartnerInput) (*Partner, error) {
	partner, verr := validatePartner(input)
	if verr != nil {
		return nil, verr
	}
	created, err := s.repo.Create(ctx, partner)
	if err != nil {
		return nil, fmt.Errorf("create partner: %w", err)
	}
	return created, nil
}

func (s *PartnerService) Update(ctx context.Context, id uuid.UUID, input PartnerInput) (*Partner, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	partner, verr := validatePartner(input)
	if verr != nil {
		return nil, verr
	}
	partner.ID = existing.ID
	updated, err := s.repo.Update(ctx, partner)
	if err != nil {
		return nil, fmt.Errorf("update partner: %w", err)
	}
	return updated, nil
}

func validatePartner(input PartnerInput) (Partner, *problem.ValidationError) {
	verr := &problem.ValidationError{Fields: map[string][]string{}}
	partner := Partner{
		Nome:      strings.TrimSpace(input.Nome),
		Tipo:      PartnerTipo(strings.ToLower(strings.TrimSpace(input.Tipo))),
		LogoURL:   strings.TrimSpace(input.LogoURL),
		Site:      strings.TrimSpace(input.Site),
		Descricao: strings.TrimSpace(input.Descricao),
		Ativo:     true,
	}
	if input.Ativo != nil {
		partner.Ativo = *input.Ativo
	}

	switch {
	case partner.Nome == "":
		verr.Add("nome", msgRequired)
	case len([]rune(partner.Nome)) > 150:
		verr.Add("nome", msgTooLong)
	}

	if partner.Tipo == "" {
		verr.Add("tipo", msgRequired)
	} else if !partner.Tipo.Valid() {
		verr.Add("tipo", msgInvalidValue)
	}

	if verr.HasErrors() {
		return partner, verr
	}
	return partner, nil
}
