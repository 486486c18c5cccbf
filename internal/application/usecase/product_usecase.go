package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/gst-shop-api/internal/application/dto"
	"github.com/jhoicas/gst-shop-api/internal/domain"
	"github.com/jhoicas/gst-shop-api/internal/domain/entity"
	"github.com/jhoicas/gst-shop-api/internal/domain/gst"
	"github.com/jhoicas/gst-shop-api/internal/domain/ledger"
	"github.com/jhoicas/gst-shop-api/internal/domain/repository"
	"github.com/jhoicas/gst-shop-api/pkg/logger"
)

// ProductUseCase casos de uso CRUD para productos. El stock se maneja vía libro de stock,
// salvo el ajuste administrativo OverrideStock.
type ProductUseCase struct {
	repo repository.ProductRepository
	log  *logger.Logger
	now  func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, log *logger.Logger) *ProductUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ProductUseCase{repo: repo, log: log.Component("products"), now: time.Now}
}

// Create crea un nuevo producto. InitialStock queda como stock de apertura (>= 0).
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	sku := strings.TrimSpace(in.SKU)
	name := strings.TrimSpace(in.Name)
	if sku == "" {
		return nil, &ledger.ValidationError{Field: "sku", Reason: "requerido"}
	}
	if name == "" {
		return nil, &ledger.ValidationError{Field: "name", Reason: "requerido"}
	}
	if !entity.IsValidUnit(in.Unit) {
		return nil, &ledger.ValidationError{Field: "unit", Reason: "unidad desconocida"}
	}
	subUnit, err := buildSubUnit(in.Unit, in.HasSubUnit, in.SubUnit)
	if err != nil {
		return nil, err
	}
	if in.InitialStock.IsNegative() {
		return nil, &ledger.ValidationError{Field: "initial_stock", Reason: "no puede ser negativo"}
	}
	if err := validatePricing(in.Price, in.GSTRate, in.LowStockThreshold); err != nil {
		return nil, err
	}

	existing, err := uc.repo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := uc.now()
	product := &entity.Product{
		ID:                uuid.New().String(),
		SKU:               sku,
		Name:              name,
		HSNCode:           strings.TrimSpace(in.HSNCode),
		Unit:              in.Unit,
		HasSubUnit:        subUnit != nil,
		SubUnit:           subUnit,
		CurrentStock:      in.InitialStock,
		Price:             in.Price,
		GSTRate:           in.GSTRate,
		LowStockThreshold: in.LowStockThreshold,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return ToProductResponse(product), nil
}

// Update actualiza datos maestros. No permite modificar stock, unidad ni sub-unidad:
// cambiarlas reinterpretaría el historial del libro.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, &ledger.ValidationError{Field: "name", Reason: "requerido"}
		}
		product.Name = name
	}
	if in.HSNCode != nil {
		product.HSNCode = strings.TrimSpace(*in.HSNCode)
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.GSTRate != nil {
		product.GSTRate = *in.GSTRate
	}
	if in.LowStockThreshold != nil {
		product.LowStockThreshold = *in.LowStockThreshold
	}
	if err := validatePricing(product.Price, product.GSTRate, product.LowStockThreshold); err != nil {
		return nil, err
	}
	product.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// OverrideStock fija current_stock directamente (solo ADMIN). No genera asiento en el libro;
// queda registrado en el log con el motivo.
func (uc *ProductUseCase) OverrideStock(ctx context.Context, id, actorID string, in dto.OverrideStockRequest) (*dto.ProductResponse, error) {
	if in.CurrentStock.IsNegative() {
		return nil, &ledger.ValidationError{Field: "current_stock", Reason: "no puede ser negativo"}
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, &ledger.ValidationError{Field: "reason", Reason: "requerido"}
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	previous := product.CurrentStock
	now := uc.now()
	if err := uc.repo.UpdateStock(ctx, id, in.CurrentStock, now); err != nil {
		return nil, err
	}
	product.CurrentStock = in.CurrentStock
	product.UpdatedAt = now

	uc.log.Warn().
		Str("product_id", id).
		Str("actor_id", actorID).
		Str("previous_stock", previous.String()).
		Str("new_stock", in.CurrentStock.String()).
		Str("reason", in.Reason).
		Msg("stock fijado manualmente")
	return ToProductResponse(product), nil
}

// List lista productos con búsqueda por nombre o SKU y paginación.
func (uc *ProductUseCase) List(ctx context.Context, search string, limit, offset int) (*dto.ProductListResponse, error) {
	return uc.list(ctx, repository.ProductFilter{Search: search, Limit: limit, Offset: offset})
}

// LowStock productos en o por debajo de su umbral.
func (uc *ProductUseCase) LowStock(ctx context.Context, limit, offset int) (*dto.ProductListResponse, error) {
	return uc.list(ctx, repository.ProductFilter{LowStockOnly: true, Limit: limit, Offset: offset})
}

func (uc *ProductUseCase) list(ctx context.Context, filter repository.ProductFilter) (*dto.ProductListResponse, error) {
	page := dto.PageRequest{Limit: filter.Limit, Offset: filter.Offset}
	page.DefaultPage()
	filter.Limit, filter.Offset = page.Limit, page.Offset
	list, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *ToProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

func buildSubUnit(mainUnit string, hasSubUnit bool, in *dto.SubUnitDTO) (*entity.SubUnit, error) {
	if !hasSubUnit {
		if in != nil {
			return nil, &ledger.ValidationError{Field: "sub_unit", Reason: "solo se admite con has_sub_unit"}
		}
		return nil, nil
	}
	if in == nil {
		return nil, &ledger.ValidationError{Field: "sub_unit", Reason: "requerido con has_sub_unit"}
	}
	if !entity.IsValidUnit(in.Unit) {
		return nil, &ledger.ValidationError{Field: "sub_unit.unit", Reason: "unidad desconocida"}
	}
	if in.Unit == mainUnit {
		return nil, &ledger.ValidationError{Field: "sub_unit.unit", Reason: "debe ser distinta de la unidad principal"}
	}
	if !in.ConversionRate.IsPositive() {
		return nil, &ledger.ValidationError{Field: "sub_unit.conversion_rate", Reason: "debe ser mayor que cero"}
	}
	return &entity.SubUnit{Unit: in.Unit, ConversionRate: in.ConversionRate}, nil
}

func validatePricing(price, rate, threshold decimal.Decimal) error {
	if price.IsNegative() {
		return &ledger.ValidationError{Field: "price", Reason: "no puede ser negativo"}
	}
	if !gst.IsValidRate(rate) {
		return &ledger.ValidationError{Field: "gst_rate", Reason: "debe ser 0, 5, 12, 18 o 28"}
	}
	if threshold.IsNegative() {
		return &ledger.ValidationError{Field: "low_stock_threshold", Reason: "no puede ser negativo"}
	}
	return nil
}

// ToProductResponse mapea el producto; con sub-unidad incluye el stock expresado en ella.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	out := &dto.ProductResponse{
		ID:                p.ID,
		SKU:               p.SKU,
		Name:              p.Name,
		HSNCode:           p.HSNCode,
		Unit:              p.Unit,
		HasSubUnit:        p.HasSubUnit,
		CurrentStock:      p.CurrentStock,
		Price:             p.Price,
		GSTRate:           p.GSTRate,
		LowStockThreshold: p.LowStockThreshold,
		LowStock:          p.IsLowStock(),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	if p.SubUnit != nil {
		out.SubUnit = &dto.SubUnitDTO{Unit: p.SubUnit.Unit, ConversionRate: p.SubUnit.ConversionRate}
		if sub, err := ledger.ToSubUnitQuantity(p, p.CurrentStock); err == nil {
			out.CurrentStockInSub = &sub
		}
	}
	return out
}
