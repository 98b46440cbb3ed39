package domain

import "time"

// Product описывает товар каталога. Натуральный ключ — UPC,
// он неизменяем после создания записи.
type Product struct {
	// UPC — универсальный код товара.
	UPC string
	// Description — человекочитаемое описание товара.
	Description string
	// Manufacturer — производитель товара.
	Manufacturer string
	// ManufacturerCode — код, присвоенный товару производителем.
	ManufacturerCode string
	// PriceMinor — цена за единицу в минимальных денежных единицах (центы).
	PriceMinor int64
	// QtyOnHand — остаток на складе; никогда не уходит в минус.
	QtyOnHand int32
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateInvariants проверяет базовые инварианты товара и возвращает список замечаний.
func (p *Product) ValidateInvariants() []error {
	var errs []error

	if p.UPC == "" {
		errs = append(errs, ErrUPCRequired)
	}
	if p.Description == "" {
		errs = append(errs, ErrDescriptionRequired)
	}
	if p.PriceMinor < 0 {
		errs = append(errs, ErrPriceNegative)
	}
	if p.QtyOnHand < 0 {
		errs = append(errs, ErrStockNegative)
	}

	return errs
}
