package memory

import (
	"context"
	"sort"

	"github.com/vladislavdragonenkov/orderdesk/internal/domain"
)

// customerRepository — in-memory реализация CustomerRepository поверх Store.
type customerRepository struct {
	store *Store
}

// NewCustomerRepository возвращает read-only доступ к покупателям.
func NewCustomerRepository(store *Store) domain.CustomerRepository {
	return &customerRepository{store: store}
}

// FindByID возвращает покупателя или ErrUnknownCustomer, если его нет.
func (r *customerRepository) FindByID(_ context.Context, id string) (domain.Customer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	customer, ok := r.store.customers[id]
	if !ok {
		return domain.Customer{}, domain.ErrUnknownCustomer
	}
	return customer, nil
}

// List возвращает покупателей, отсортированных по фамилии и имени.
func (r *customerRepository) List(_ context.Context) ([]domain.Customer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]domain.Customer, 0, len(r.store.customers))
	for _, customer := range r.store.customers {
		result = append(result, customer)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].LastName != result[j].LastName {
			return result[i].LastName < result[j].LastName
		}
		return result[i].FirstName < result[j].FirstName
	})
	return result, nil
}

var _ domain.CustomerRepository = (*customerRepository)(nil)
