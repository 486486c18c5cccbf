package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/gst-shop-api/internal/application/dto"
	"github.com/jhoicas/gst-shop-api/internal/domain"
	"github.com/jhoicas/gst-shop-api/internal/domain/entity"
	"github.com/jhoicas/gst-shop-api/internal/domain/ledger"
	"github.com/jhoicas/gst-shop-api/internal/domain/repository"
	"github.com/jhoicas/gst-shop-api/pkg/logger"
)

var tracer = otel.Tracer("gst-shop-api/inventory")

// StockLedgerUseCase es el motor del libro de stock: único camino (junto con el ajuste
// administrativo de producto) que modifica current_stock. Cada operación corre en una
// sola transacción con las filas de producto bloqueadas.
type StockLedgerUseCase struct {
	txRunner    TxRunner
	entryRepo   repository.StockEntryRepository
	productRepo repository.ProductRepository
	log         *logger.Logger
	now         func() time.Time
}

// NewStockLedgerUseCase construye el caso de uso.
func NewStockLedgerUseCase(
	txRunner TxRunner,
	entryRepo repository.StockEntryRepository,
	productRepo repository.ProductRepository,
	log *logger.Logger,
) *StockLedgerUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &StockLedgerUseCase{
		txRunner:    txRunner,
		entryRepo:   entryRepo,
		productRepo: productRepo,
		log:         log.Component("stock_ledger"),
		now:         time.Now,
	}
}

// SetClock reemplaza el reloj (tests).
func (uc *StockLedgerUseCase) SetClock(now func() time.Time) {
	uc.now = now
}

// MovementInput entrada interna de un movimiento. BillID se informa cuando lo origina una factura.
type MovementInput struct {
	Type   string
	Items  []ledger.Item
	Notes  string
	BillID string
	UserID string
}

// ReversalResult resultado de borrar un asiento.
type ReversalResult struct {
	Entry    *entity.StockEntry
	Reverted bool
	Deltas   []ledger.AppliedDelta
}

// CreateEntry valida y aplica un movimiento, y registra el asiento.
func (uc *StockLedgerUseCase) CreateEntry(ctx context.Context, userID string, in dto.CreateStockEntryRequest) (*dto.StockEntryResponse, error) {
	input := MovementInput{
		Type:   in.Type,
		Notes:  in.Notes,
		UserID: userID,
		Items:  make([]ledger.Item, 0, len(in.Items)),
	}
	for _, it := range in.Items {
		input.Items = append(input.Items, ledger.Item{ProductID: it.ProductID, Quantity: it.Quantity, IsSubUnit: it.IsSubUnit})
	}
	// forma primero: no tiene sentido abrir la transacción con una petición mal formada
	if err := ledger.ValidateShape(input.Type, input.Items); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "ledger.create_entry", trace.WithAttributes(
		attribute.String("ledger.type", input.Type),
		attribute.Int("ledger.items", len(input.Items)),
	))
	defer span.End()

	var entry *entity.StockEntry
	err := uc.txRunner.Run(ctx, func(ctx context.Context, entryRepo repository.StockEntryRepository, productRepo repository.ProductRepository) error {
		var err error
		entry, err = uc.ApplyInTx(ctx, entryRepo, productRepo, input)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	uc.log.Info().
		Str("entry_id", entry.ID).
		Str("type", entry.Type).
		Int("items", len(entry.Items)).
		Str("user_id", userID).
		Msg("asiento de stock creado")
	return ToStockEntryResponse(entry), nil
}

// ApplyInTx aplica un movimiento usando los repositorios del caller (misma transacción).
// Bloquea los productos, valida todo antes de escribir, actualiza el stock en el orden de las
// líneas e inserta el asiento. Si retorna error el caller debe hacer rollback.
func (uc *StockLedgerUseCase) ApplyInTx(
	ctx context.Context,
	entryRepo repository.StockEntryRepository,
	productRepo repository.ProductRepository,
	in MovementInput,
) (*entity.StockEntry, error) {
	if err := ledger.ValidateShape(in.Type, in.Items); err != nil {
		return nil, err
	}

	byID, err := lockProducts(ctx, productRepo, ledger.ProductIDs(in.Items))
	if err != nil {
		return nil, err
	}
	if err := ledger.ValidateMovement(in.Type, in.Items, byID); err != nil {
		return nil, err
	}
	deltas, err := ledger.PlanMovement(in.Type, in.Items, byID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	for _, d := range deltas {
		if err := productRepo.UpdateStock(ctx, d.ProductID, d.NewStock, now); err != nil {
			return nil, fmt.Errorf("actualizar stock de %s: %w", d.ProductID, err)
		}
		byID[d.ProductID].CurrentStock = d.NewStock
	}

	entry := &entity.StockEntry{
		ID:        uuid.New().String(),
		Type:      in.Type,
		Notes:     in.Notes,
		BillID:    in.BillID,
		CreatedBy: in.UserID,
		CreatedAt: now,
		UpdatedAt: now,
		Items:     make([]entity.StockEntryItem, 0, len(in.Items)),
	}
	for i, it := range in.Items {
		entry.Items = append(entry.Items, entity.StockEntryItem{
			ProductID:         it.ProductID,
			Quantity:          it.Quantity,
			IsSubUnit:         it.IsSubUnit,
			EffectiveQuantity: deltas[i].EffectiveQuantity,
			PreviousStock:     deltas[i].PreviousStock,
			AppliedDelta:      deltas[i].Delta,
		})
	}
	if err := entryRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("guardar asiento: %w", err)
	}
	return entry, nil
}

// DeleteEntry borra un asiento revirtiendo su efecto (IN/OUT). Los ajustes se borran sin
// restaurar el stock. Los asientos de factura solo se borran anulando la factura.
func (uc *StockLedgerUseCase) DeleteEntry(ctx context.Context, entryID string) (*dto.DeleteStockEntryResponse, error) {
	ctx, span := tracer.Start(ctx, "ledger.delete_entry", trace.WithAttributes(attribute.String("ledger.entry_id", entryID)))
	defer span.End()

	var res *ReversalResult
	err := uc.txRunner.Run(ctx, func(ctx context.Context, entryRepo repository.StockEntryRepository, productRepo repository.ProductRepository) error {
		entry, err := entryRepo.GetByID(ctx, entryID)
		if err != nil {
			return fmt.Errorf("cargar asiento: %w", err)
		}
		if entry == nil {
			return domain.ErrNotFound
		}
		if entry.BillID != "" {
			return fmt.Errorf("%w: el asiento pertenece a la factura %s", domain.ErrConflict, entry.BillID)
		}
		res, err = uc.RevertInTx(ctx, entryRepo, productRepo, entry)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	uc.log.Info().
		Str("entry_id", res.Entry.ID).
		Str("type", res.Entry.Type).
		Bool("reverted", res.Reverted).
		Msg("asiento de stock borrado")
	return toDeleteResponse(res), nil
}

// RevertInTx revierte y borra un asiento ya cargado, dentro de la transacción del caller.
// Cada producto vuelve a stock actual menos el delta aplicado, acotado a cero.
func (uc *StockLedgerUseCase) RevertInTx(
	ctx context.Context,
	entryRepo repository.StockEntryRepository,
	productRepo repository.ProductRepository,
	entry *entity.StockEntry,
) (*ReversalResult, error) {
	res := &ReversalResult{Entry: entry, Reverted: ledger.IsReversible(entry.Type)}
	if res.Reverted {
		ids := make([]string, 0, len(entry.Items))
		for _, it := range entry.Items {
			ids = append(ids, it.ProductID)
		}
		byID, err := lockProducts(ctx, productRepo, ids)
		if err != nil {
			return nil, err
		}
		res.Deltas = ledger.PlanReversal(entry, byID)
		now := uc.now()
		for _, d := range res.Deltas {
			if err := productRepo.UpdateStock(ctx, d.ProductID, d.NewStock, now); err != nil {
				return nil, fmt.Errorf("revertir stock de %s: %w", d.ProductID, err)
			}
			byID[d.ProductID].CurrentStock = d.NewStock
		}
	}
	if err := entryRepo.Delete(ctx, entry.ID); err != nil {
		return nil, err
	}
	return res, nil
}

// GetEntry obtiene un asiento por ID.
func (uc *StockLedgerUseCase) GetEntry(ctx context.Context, id string) (*dto.StockEntryResponse, error) {
	entry, err := uc.entryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, domain.ErrNotFound
	}
	return ToStockEntryResponse(entry), nil
}

// ListEntries lista asientos con filtros opcionales de tipo, producto y rango de fechas.
func (uc *StockLedgerUseCase) ListEntries(ctx context.Context, filter repository.StockEntryFilter) (*dto.StockEntryListResponse, error) {
	if filter.Type != "" && !entity.IsValidMovementType(filter.Type) {
		return nil, &ledger.ValidationError{Field: "type", Reason: "tipo de movimiento desconocido"}
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, &ledger.ValidationError{Field: "to", Reason: "debe ser posterior a from"}
	}
	page := dto.PageRequest{Limit: filter.Limit, Offset: filter.Offset}
	page.DefaultPage()
	filter.Limit, filter.Offset = page.Limit, page.Offset

	entries, total, err := uc.entryRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := &dto.StockEntryListResponse{
		Items: make([]dto.StockEntryResponse, 0, len(entries)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, e := range entries {
		out.Items = append(out.Items, *ToStockEntryResponse(e))
	}
	return out, nil
}

// ProductHistory asientos que afectan a un producto (el más reciente primero).
func (uc *StockLedgerUseCase) ProductHistory(ctx context.Context, productID string, limit, offset int) (*dto.StockEntryListResponse, error) {
	p, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &ledger.ProductNotFoundError{IDs: []string{productID}}
	}
	return uc.ListEntries(ctx, repository.StockEntryFilter{ProductID: productID, Limit: limit, Offset: offset})
}

// lockProducts carga y bloquea los productos, indexados por ID.
func lockProducts(ctx context.Context, productRepo repository.ProductRepository, ids []string) (map[string]*entity.Product, error) {
	products, err := productRepo.FindByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("bloquear productos: %w", err)
	}
	byID := make(map[string]*entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}

// ToStockEntryResponse mapea el asiento a su DTO.
func ToStockEntryResponse(e *entity.StockEntry) *dto.StockEntryResponse {
	out := &dto.StockEntryResponse{
		ID:        e.ID,
		Type:      e.Type,
		Notes:     e.Notes,
		BillID:    e.BillID,
		CreatedBy: e.CreatedBy,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
		Items:     make([]dto.StockEntryItemResponse, 0, len(e.Items)),
	}
	for _, it := range e.Items {
		out.Items = append(out.Items, dto.StockEntryItemResponse{
			ProductID:         it.ProductID,
			Quantity:          it.Quantity,
			IsSubUnit:         it.IsSubUnit,
			EffectiveQuantity: it.EffectiveQuantity,
			PreviousStock:     it.PreviousStock,
			AppliedDelta:      it.AppliedDelta,
		})
	}
	return out
}

func toDeleteResponse(res *ReversalResult) *dto.DeleteStockEntryResponse {
	out := &dto.DeleteStockEntryResponse{
		ID:       res.Entry.ID,
		Type:     res.Entry.Type,
		Reverted: res.Reverted,
		Items:    make([]dto.StockReversalItem, 0, len(res.Deltas)),
	}
	for _, d := range res.Deltas {
		out.Items = append(out.Items, dto.StockReversalItem{
			ProductID:     d.ProductID,
			PreviousStock: d.PreviousStock,
			NewStock:      d.NewStock,
		})
	}
	return out
}
