package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
)

// newValidator настраивает validator: имена полей берутся из тега label,
// decimal.Decimal сравнивается как число.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// validateInput возвращает первую ошибку валидации в виде InvalidRequest.
// Порядок проверки совпадает с порядком полей структуры.
func (s *Service) validateInput(in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.Internal(err)
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required", "min", "gt":
		if fe.Kind() == reflect.Slice {
			return domain.Invalid(fmt.Sprintf("%s are required", fe.Field()))
		}
		return domain.Invalid(fmt.Sprintf("%s is required", fe.Field()))
	default:
		return domain.Invalid(fmt.Sprintf("%s is invalid", fe.Field()))
	}
}

// PaidFlag принимает bool или строки формы "Paid"/"Not Paid".
type PaidFlag bool

// UnmarshalJSON разбирает значение статуса оплаты.
func (p *PaidFlag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*p = PaidFlag(b)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("isPaid: expected bool or string")
	}
	switch s {
	case "Paid", "true":
		*p = true
	case "Not Paid", "false":
		*p = false
	default:
		return fmt.Errorf("isPaid: unknown value %q", s)
	}
	return nil
}
