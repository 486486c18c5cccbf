package billing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/gst-shop-api/internal/application/dto"
	"github.com/jhoicas/gst-shop-api/internal/domain"
	"github.com/jhoicas/gst-shop-api/internal/domain/entity"
	"github.com/jhoicas/gst-shop-api/internal/domain/gst"
	"github.com/jhoicas/gst-shop-api/internal/domain/ledger"
	"github.com/jhoicas/gst-shop-api/internal/domain/repository"
)

// PartyUseCase casos de uso para clientes (facturación).
type PartyUseCase struct {
	repo repository.PartyRepository
	now  func() time.Time
}

// NewPartyUseCase construye el caso de uso.
func NewPartyUseCase(repo repository.PartyRepository) *PartyUseCase {
	return &PartyUseCase{repo: repo, now: time.Now}
}

// Create crea un nuevo cliente. Si trae GSTIN y no trae estado, el estado se toma del GSTIN.
func (uc *PartyUseCase) Create(ctx context.Context, in dto.CreatePartyRequest) (*dto.PartyResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &ledger.ValidationError{Field: "name", Reason: "requerido"}
	}
	gstin, state, err := resolveTaxIdentity(in.GSTIN, in.StateCode)
	if err != nil {
		return nil, err
	}
	if gstin != "" {
		existing, err := uc.repo.GetByGSTIN(ctx, gstin)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, domain.ErrDuplicate
		}
	}
	now := uc.now()
	party := &entity.Party{
		ID:        uuid.New().String(),
		Name:      name,
		Phone:     strings.TrimSpace(in.Phone),
		Email:     strings.TrimSpace(in.Email),
		Address:   strings.TrimSpace(in.Address),
		GSTIN:     gstin,
		StateCode: state,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, party); err != nil {
		return nil, err
	}
	return toPartyResponse(party), nil
}

// Get obtiene un cliente por ID.
func (uc *PartyUseCase) Get(ctx context.Context, id string) (*dto.PartyResponse, error) {
	party, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if party == nil {
		return nil, domain.ErrNotFound
	}
	return toPartyResponse(party), nil
}

// List lista clientes, filtrando por nombre, GSTIN o teléfono.
func (uc *PartyUseCase) List(ctx context.Context, search string, limit, offset int) ([]*dto.PartyResponse, error) {
	page := dto.PageRequest{Limit: limit, Offset: offset}
	page.DefaultPage()
	list, err := uc.repo.List(ctx, search, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PartyResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toPartyResponse(p))
	}
	return out, nil
}

// Update actualiza los campos presentes en la petición.
func (uc *PartyUseCase) Update(ctx context.Context, id string, in dto.UpdatePartyRequest) (*dto.PartyResponse, error) {
	party, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if party == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, &ledger.ValidationError{Field: "name", Reason: "requerido"}
		}
		party.Name = name
	}
	if in.Phone != nil {
		party.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Email != nil {
		party.Email = strings.TrimSpace(*in.Email)
	}
	if in.Address != nil {
		party.Address = strings.TrimSpace(*in.Address)
	}
	if in.GSTIN != nil || in.StateCode != nil {
		gstin, state := party.GSTIN, party.StateCode
		if in.GSTIN != nil {
			gstin = *in.GSTIN
			if in.StateCode == nil {
				state = ""
			}
		}
		if in.StateCode != nil {
			state = *in.StateCode
		}
		party.GSTIN, party.StateCode, err = resolveTaxIdentity(gstin, state)
		if err != nil {
			return nil, err
		}
	}
	party.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, party); err != nil {
		return nil, err
	}
	return toPartyResponse(party), nil
}

// resolveTaxIdentity normaliza GSTIN y estado; ambos son opcionales pero deben ser coherentes.
func resolveTaxIdentity(gstin, state string) (string, string, error) {
	gstin = strings.ToUpper(strings.TrimSpace(gstin))
	state = strings.TrimSpace(state)
	if gstin != "" && !gst.IsValidGSTIN(gstin) {
		return "", "", &ledger.ValidationError{Field: "gstin", Reason: "formato de GSTIN inválido"}
	}
	if state != "" && !gst.IsValidStateCode(state) {
		return "", "", &ledger.ValidationError{Field: "state_code", Reason: "código de estado inválido"}
	}
	if gstin != "" {
		fromGSTIN := gst.StateCodeFromGSTIN(gstin)
		if state == "" {
			state = fromGSTIN
		} else if state != fromGSTIN {
			return "", "", &ledger.ValidationError{Field: "state_code", Reason: "no coincide con el GSTIN"}
		}
	}
	return gstin, state, nil
}

func toPartyResponse(p *entity.Party) *dto.PartyResponse {
	return &dto.PartyResponse{
		ID:        p.ID,
		Name:      p.Name,
		Phone:     p.Phone,
		Email:     p.Email,
		Address:   p.Address,
		GSTIN:     p.GSTIN,
		StateCode: p.StateCode,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
