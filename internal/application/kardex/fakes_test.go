package kardex_test

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/kardex-core/internal/application/kardex"
	"github.com/tu-usuario/kardex-core/internal/domain/entity"
	"github.com/tu-usuario/kardex-core/internal/domain/repository"
)

// fakeStore estado compartido en memoria: productos, usuarios y el libro.
type fakeStore struct {
	mu       sync.Mutex
	products map[string]*entity.Product
	users    map[string]bool
	entries  []*entity.KardexEntry

	// inyección de errores de infraestructura
	failAppend      error
	failAppendAt    int // 1-based: número de llamada a Append que falla; 0 = todas
	appendCalls     int
	failUpdateStock error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: map[string]*entity.Product{},
		users:    map[string]bool{},
	}
}

func (s *fakeStore) addProduct(id string, stock int64, price string) {
	s.products[id] = &entity.Product{
		ID:    id,
		SKU:   "SKU-" + id,
		Name:  "Producto " + id,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
}

func (s *fakeStore) snapshot() *fakeStore {
	clone := newFakeStore()
	for id, p := range s.products {
		cp := *p
		clone.products[id] = &cp
	}
	for id := range s.users {
		clone.users[id] = true
	}
	clone.entries = append([]*entity.KardexEntry{}, s.entries...)
	return clone
}

func (s *fakeStore) restore(snap *fakeStore) {
	s.products = snap.products
	s.users = snap.users
	s.entries = snap.entries
}

// fakeTxRunner serializa transacciones con un mutex (equivalente en memoria
// del bloqueo de fila) y restaura un snapshot del estado si el callback falla,
// imitando el rollback de la transacción real.
type fakeTxRunner struct {
	store *fakeStore
}

func (r *fakeTxRunner) Run(ctx context.Context, fn func(
	kardexRepo repository.KardexRepository,
	productRepo repository.ProductRepository,
) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	snap := r.store.snapshot()
	err := fn(&fakeKardexRepo{store: r.store}, &fakeProductRepo{store: r.store})
	if err != nil {
		r.store.restore(snap)
	}
	return err
}

type fakeProductRepo struct {
	store *fakeStore
}

func (f *fakeProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	if p, ok := f.store.products[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeProductRepo) GetByIDs(_ context.Context, ids []string) ([]*entity.Product, error) {
	var out []*entity.Product
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := f.store.products[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	// El bloqueo real lo emula el mutex del runner.
	return f.GetByID(ctx, id)
}

func (f *fakeProductRepo) UpdateStock(_ context.Context, id string, stock int64) error {
	if f.store.failUpdateStock != nil {
		return f.store.failUpdateStock
	}
	if p, ok := f.store.products[id]; ok {
		p.Stock = stock
	}
	return nil
}

type fakeKardexRepo struct {
	store *fakeStore
}

func (f *fakeKardexRepo) Append(_ context.Context, entry *entity.KardexEntry) error {
	f.store.appendCalls++
	if f.store.failAppend != nil && (f.store.failAppendAt == 0 || f.store.appendCalls == f.store.failAppendAt) {
		return f.store.failAppend
	}
	cp := *entry
	f.store.entries = append(f.store.entries, &cp)
	return nil
}

func (f *fakeKardexRepo) AppendMany(ctx context.Context, entries []*entity.KardexEntry) error {
	for _, e := range entries {
		if err := f.Append(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeKardexRepo) Page(_ context.Context, flt repository.KardexFilters, _ repository.KardexSort, p repository.Page) (*repository.KardexPage, error) {
	var matched []*entity.KardexEntry
	for _, e := range f.store.entries {
		if flt.ProductID != "" && e.ProductID != flt.ProductID {
			continue
		}
		if flt.Search != "" && !strings.Contains(e.Reason, flt.Search) {
			continue
		}
		if flt.ExcludeDeleted && e.DeletedAt != nil {
			continue
		}
		matched = append(matched, e)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	page := &repository.KardexPage{
		Entries:      matched,
		MatchedCount: int64(len(matched)),
		TotalCount:   int64(len(f.store.entries)),
	}
	return page, nil
}

func (f *fakeKardexRepo) LatestPerProduct(ctx context.Context, flt repository.KardexFilters, s repository.KardexSort, p repository.Page) (*repository.KardexPage, error) {
	latest := map[string]*entity.KardexEntry{}
	for _, e := range f.store.entries {
		// en empate de CreatedAt gana la fila insertada después
		if prev, ok := latest[e.ProductID]; !ok || !e.CreatedAt.Before(prev.CreatedAt) {
			latest[e.ProductID] = e
		}
	}
	var entries []*entity.KardexEntry
	for _, e := range latest {
		entries = append(entries, e)
	}
	return &repository.KardexPage{Entries: entries, MatchedCount: int64(len(entries)), TotalCount: int64(len(latest))}, nil
}

func (f *fakeKardexRepo) ListByProduct(_ context.Context, productID string) ([]*entity.KardexEntry, error) {
	var out []*entity.KardexEntry
	for _, e := range f.store.entries {
		if e.ProductID == productID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type fakeUserRepo struct {
	store *fakeStore
}

func (f *fakeUserRepo) Exists(_ context.Context, id string) (bool, error) {
	return f.store.users[id], nil
}

// buildEngine arma motor, coordinador y servicio de consultas sobre el mismo store.
func buildEngine(store *fakeStore) (*kardex.MovementUseCase, *kardex.BulkDiscountUseCase, *kardex.StockQueryService) {
	runner := &fakeTxRunner{store: store}
	users := &fakeUserRepo{store: store}
	rate := decimal.NewFromInt(19)
	return kardex.NewMovementUseCase(runner, users, rate),
		kardex.NewBulkDiscountUseCase(runner, users, rate),
		kardex.NewStockQueryService(&fakeProductRepo{store: store}, rate)
}

// entriesFor filas del libro de un producto en orden de creación.
func entriesFor(store *fakeStore, productID string) []*entity.KardexEntry {
	out, _ := (&fakeKardexRepo{store: store}).ListByProduct(context.Background(), productID)
	return out
}

// replayChain reproduce la cadena stockBefore -> stockAfter desde cero y
// devuelve el stock final; válido solo si cada eslabón encadena con el anterior.
func replayChain(entries []*entity.KardexEntry) (int64, bool) {
	var stock int64
	for _, e := range entries {
		if e.StockBefore != stock {
			return stock, false
		}
		stock = e.StockAfter
	}
	return stock, true
}
