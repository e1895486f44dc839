package kardex

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	domainkardex "github.com/tu-usuario/kardex-core/internal/domain/kardex"
	"github.com/tu-usuario/kardex-core/internal/domain/repository"
)

// StockQueryService lecturas de stock sin efectos secundarios: chequeos de
// suficiencia, consultas de stock actual y vistas previas de impuesto.
// Estilo leniente/parcial: un producto inexistente en una consulta batch
// produce un registro en cero en lugar de fallar la llamada completa.
type StockQueryService struct {
	productRepo repository.ProductRepository
	taxRatePct  decimal.Decimal
}

// NewStockQueryService construye el servicio de consultas.
func NewStockQueryService(productRepo repository.ProductRepository, taxRatePct decimal.Decimal) *StockQueryService {
	return &StockQueryService{productRepo: productRepo, taxRatePct: taxRatePct}
}

// StockCheck resultado de un chequeo de suficiencia por ítem.
// Found distingue "producto inexistente" de "stock cero".
type StockCheck struct {
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name,omitempty"`
	HasStock      bool   `json:"has_stock"`
	CurrentStock  int64  `json:"current_stock"`
	RequiredStock int64  `json:"required_stock"`
	Found         bool   `json:"found"`
}

// StockCheckItem entrada de un chequeo batch.
type StockCheckItem struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// TaxPreview vista previa de impuesto por ítem, sin mutar estado.
type TaxPreview struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	TaxValue    decimal.Decimal `json:"tax_value"`
	BasePrice   decimal.Decimal `json:"base_price"`
}

// ProductStock stock actual de un producto en una consulta batch.
type ProductStock struct {
	ProductID    string `json:"product_id"`
	CurrentStock int64  `json:"current_stock"`
	Found        bool   `json:"found"`
}

// CheckStock compara el stock actual contra la cantidad requerida.
// Producto inexistente se trata como insuficiente con stock 0.
func (s *StockQueryService) CheckStock(ctx context.Context, productID string, quantity int64) (StockCheck, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return StockCheck{}, fmt.Errorf("consultar producto: %w", err)
	}
	check := StockCheck{ProductID: productID, RequiredStock: quantity}
	if product == nil {
		return check, nil
	}
	check.Found = true
	check.ProductName = product.Name
	check.CurrentStock = product.Stock
	check.HasStock = product.Stock >= quantity
	return check, nil
}

// HasSufficientStock responde si hay stock suficiente para la cantidad pedida.
func (s *StockQueryService) HasSufficientStock(ctx context.Context, productID string, quantity int64) (bool, error) {
	check, err := s.CheckStock(ctx, productID, quantity)
	if err != nil {
		return false, err
	}
	return check.HasStock, nil
}

// CheckManyStock chequeo de suficiencia por lote: un solo fetch por IDs y
// join en memoria. Producto inexistente produce CurrentStock=0, HasStock=false.
func (s *StockQueryService) CheckManyStock(ctx context.Context, items []StockCheckItem) ([]StockCheck, error) {
	byID, err := s.fetchByIDs(ctx, productIDs(items))
	if err != nil {
		return nil, err
	}
	results := make([]StockCheck, 0, len(items))
	for _, it := range items {
		check := StockCheck{ProductID: it.ProductID, RequiredStock: it.Quantity}
		if p, ok := byID[it.ProductID]; ok {
			check.Found = true
			check.ProductName = p.Name
			check.CurrentStock = p.Stock
			check.HasStock = p.Stock >= it.Quantity
		}
		results = append(results, check)
	}
	return results, nil
}

// PreviewTax calcula base * cantidad * tarifa / 100 por ítem usando la tarifa
// fija configurada. Producto inexistente produce un registro en cero.
func (s *StockQueryService) PreviewTax(ctx context.Context, items []StockCheckItem) ([]TaxPreview, error) {
	byID, err := s.fetchByIDs(ctx, productIDs(items))
	if err != nil {
		return nil, err
	}
	previews := make([]TaxPreview, 0, len(items))
	for _, it := range items {
		preview := TaxPreview{
			ProductID: it.ProductID,
			TaxRate:   decimal.Zero,
			TaxValue:  decimal.Zero,
			BasePrice: decimal.Zero,
		}
		if p, ok := byID[it.ProductID]; ok {
			preview.ProductName = p.Name
			preview.TaxRate = s.taxRatePct
			preview.BasePrice = p.Price
			preview.TaxValue = domainkardex.TaxValue(p.Price, it.Quantity, s.taxRatePct)
		}
		previews = append(previews, preview)
	}
	return previews, nil
}

// CurrentStock devuelve el stock actual, o nil si el producto no existe.
func (s *StockQueryService) CurrentStock(ctx context.Context, productID string) (*int64, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("consultar producto: %w", err)
	}
	if product == nil {
		return nil, nil
	}
	stock := product.Stock
	return &stock, nil
}

// CurrentStockMany stock actual de varios productos: un solo fetch por IDs y
// join en memoria (evita consultas individuales repetidas).
func (s *StockQueryService) CurrentStockMany(ctx context.Context, ids []string) ([]ProductStock, error) {
	byID, err := s.fetchByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	results := make([]ProductStock, 0, len(ids))
	for _, id := range ids {
		ps := ProductStock{ProductID: id}
		if p, ok := byID[id]; ok {
			ps.Found = true
			ps.CurrentStock = p.Stock
		}
		results = append(results, ps)
	}
	return results, nil
}

func (s *StockQueryService) fetchByIDs(ctx context.Context, ids []string) (map[string]productView, error) {
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("consultar productos: %w", err)
	}
	byID := make(map[string]productView, len(products))
	for _, p := range products {
		byID[p.ID] = productView{Name: p.Name, Price: p.Price, Stock: p.Stock}
	}
	return byID, nil
}

type productView struct {
	Name  string
	Price decimal.Decimal
	Stock int64
}

func productIDs(items []StockCheckItem) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	return ids
}
