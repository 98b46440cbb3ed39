package domain

import "time"

// LineItem представляет одну позицию заказа.
type LineItem struct {
	// ID позиции нужен для однозначной идентификации и аудита.
	ID string
	// UPC — код товара, на который ссылается позиция.
	UPC string
	// Qty — количество единиц товара; строго положительное.
	Qty int32
	// PriceMinor — цена за единицу, зафиксированная в момент оформления.
	// Это снимок, а не живая ссылка: последующие изменения цены товара
	// не меняют исторические заказы.
	PriceMinor int64
	// CreatedAt фиксирует момент добавления позиции в заказ.
	CreatedAt time.Time
}

// Order агрегирует заказ покупателя и его позиции.
type Order struct {
	ID         string
	CustomerID string
	// AmountMinor — итоговая сумма заказа: сумма qty * price по позициям.
	AmountMinor int64
	Items       []LineItem
	CreatedAt   time.Time
}

// TotalQtyByUPC возвращает суммарное запрошенное количество по каждому UPC.
// Дубли позиций с одним товаром схлопываются: проверка остатка идёт
// по суммарному количеству, а позиции в заказе остаются раздельными.
func (o *Order) TotalQtyByUPC() map[string]int32 {
	totals := make(map[string]int32, len(o.Items))
	for _, item := range o.Items {
		totals[item.UPC] += item.Qty
	}
	return totals
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.AmountMinor < 0 {
		errs = append(errs, ErrAmountNegative)
	}

	// Сверяем сумму заказа с суммой позиций: qty * price.
	var calc int64
	for _, item := range o.Items {
		if item.Qty <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
		if item.PriceMinor < 0 {
			errs = append(errs, ErrItemPriceInvalid)
		}
		calc += int64(item.Qty) * item.PriceMinor
	}
	if calc != o.AmountMinor {
		errs = append(errs, ErrAmountMismatch)
	}

	return errs
}
