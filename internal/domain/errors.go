package domain

import (
	"errors"
	"fmt"
)

var (
	// Ошибка отсутствующего кода товара.
	ErrUPCRequired = errors.New("product upc is required")
	// Ошибка отсутствующего описания товара.
	ErrDescriptionRequired = errors.New("product description is required")
	// Ошибка отрицательной цены товара.
	ErrPriceNegative = errors.New("product price must be non-negative")
	// Ошибка отрицательного остатка на складе.
	ErrStockNegative = errors.New("product qty_on_hand must be non-negative")
	// Ошибка отсутствующей фамилии покупателя.
	ErrLastNameRequired = errors.New("customer last name is required")
	// Ошибка отсутствующего имени покупателя.
	ErrFirstNameRequired = errors.New("customer first name is required")
	// Ошибка отсутствующего телефона покупателя.
	ErrPhoneRequired = errors.New("customer phone is required")
	// Ошибка отсутствующего идентификатора клиента.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отсутствия хотя бы одного товара в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка отрицательной суммы заказа.
	ErrAmountNegative = errors.New("amount_minor must be non-negative")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item qty must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrAmountMismatch = errors.New("order amount does not match items sum")

	// ErrUnknownCustomer возвращается, если покупатель не найден в хранилище.
	ErrUnknownCustomer = errors.New("unknown customer")
	// ErrUnknownProduct возвращается, если товар с указанным UPC не существует.
	ErrUnknownProduct = errors.New("unknown product")
	// ErrEmptyOrder возвращается при попытке оформить заказ без позиций.
	ErrEmptyOrder = errors.New("order has no requested lines")
	// ErrInvalidQuantity возвращается при запрошенном количестве <= 0.
	ErrInvalidQuantity = errors.New("requested quantity must be greater than zero")
	// ErrInsufficientStock возвращается, когда запрошенное количество превышает остаток.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrDuplicateOrder сигнализирует о повторной вставке заказа с тем же ID.
	ErrDuplicateOrder = errors.New("order already exists")
	// ErrStoreUnavailable оборачивает инфраструктурные сбои хранилища
	// (потеря соединения, ошибка commit). Частичное состояние при этом
	// не наблюдается: транзакция откатывается целиком.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// UnknownProductError уточняет, какой именно UPC не удалось разрешить.
type UnknownProductError struct {
	UPC string
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("unknown product upc=%s", e.UPC)
}

// Is поддерживает сопоставление с ErrUnknownProduct через errors.Is.
func (e *UnknownProductError) Is(target error) bool {
	return target == ErrUnknownProduct
}

// InvalidQuantityError уточняет позицию с некорректным количеством.
type InvalidQuantityError struct {
	UPC string
	Qty int32
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d for upc=%s", e.Qty, e.UPC)
}

func (e *InvalidQuantityError) Is(target error) bool {
	return target == ErrInvalidQuantity
}

// InsufficientStockError описывает нехватку остатка по конкретному товару.
// Requested — суммарное запрошенное количество по всем позициям заказа
// с этим UPC, Available — остаток на момент проверки.
type InsufficientStockError struct {
	UPC       string
	Requested int32
	Available int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for upc=%s: requested %d, available %d",
		e.UPC, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// IsValidationError сообщает, относится ли ошибка к отказам валидации,
// после которых состояние хранилища гарантированно не изменилось.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrUnknownCustomer) ||
		errors.Is(err, ErrUnknownProduct) ||
		errors.Is(err, ErrEmptyOrder) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInsufficientStock)
}
