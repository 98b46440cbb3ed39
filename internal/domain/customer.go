package domain

import "time"

// Customer описывает покупателя. Суррогатный ID присваивается хранилищем
// при первой записи и после этого неизменяем.
type Customer struct {
	// ID валиден только после успешной вставки: до этого момента поле пустое.
	ID string
	// LastName — фамилия покупателя.
	LastName string
	// FirstName — имя покупателя.
	FirstName string
	// Street — улица для доставки.
	Street string
	// Zip — почтовый индекс.
	Zip string
	// Phone — телефон; используется как натуральный ключ при сидинге.
	Phone     string
	CreatedAt time.Time
}

// ValidateInvariants проверяет обязательные поля покупателя.
func (c *Customer) ValidateInvariants() []error {
	var errs []error

	if c.LastName == "" {
		errs = append(errs, ErrLastNameRequired)
	}
	if c.FirstName == "" {
		errs = append(errs, ErrFirstNameRequired)
	}
	if c.Phone == "" {
		errs = append(errs, ErrPhoneRequired)
	}

	return errs
}
