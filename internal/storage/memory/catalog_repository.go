package memory

import (
	"context"
	"sort"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
)

// catalogRepository — in-memory реализация ProductRepository поверх Store.
type catalogRepository struct {
	store *Store
}

// NewProductRepository возвращает read-only доступ к каталогу.
func NewProductRepository(store *Store) domain.ProductRepository {
	return &catalogRepository{store: store}
}

// FindByUPC возвращает товар или ErrUnknownProduct, если его нет.
func (r *catalogRepository) FindByUPC(_ context.Context, upc string) (domain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	product, ok := r.store.products[upc]
	if !ok {
		return domain.Product{}, &domain.UnknownProductError{UPC: upc}
	}
	return product, nil
}

// List возвращает товары, отсортированные по UPC.
func (r *catalogRepository) List(_ context.Context) ([]domain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.Product, 0, len(r.store.products))
	for _, product := range r.store.products {
		result = append(result, product)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UPC < result[j].UPC })
	return result, nil
}

var _ domain.ProductRepository = (*catalogRepository)(nil)
