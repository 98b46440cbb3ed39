package domain

import "context"

// ProductRepository описывает read-доступ к каталогу товаров вне транзакции.
type ProductRepository interface {
	// FindByUPC возвращает товар по коду или ErrUnknownProduct, если его нет.
	FindByUPC(ctx context.Context, upc string) (Product, error)
	// List возвращает все товары каталога, отсортированные по UPC.
	List(ctx context.Context) ([]Product, error)
}

// CustomerRepository описывает read-доступ к покупателям вне транзакции.
type CustomerRepository interface {
	// FindByID возвращает покупателя по идентификатору или ErrUnknownCustomer.
	FindByID(ctx context.Context, id string) (Customer, error)
	// List возвращает всех покупателей, отсортированных по фамилии и имени.
	List(ctx context.Context) ([]Customer, error)
}

// OrderRepository описывает read-доступ к журналу заказов.
// Запись заказов идёт только через Tx.InsertOrder внутри unit of work.
type OrderRepository interface {
	// Get возвращает заказ по идентификатору или ErrOrderNotFound, если его нет.
	Get(ctx context.Context, id string) (Order, error)
	// ListByCustomer возвращает заказы клиента с опциональным ограничением на количество.
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]Order, error)
}
