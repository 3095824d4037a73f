package compensation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	if err := v.RegisterValidation("level", func(fl validator.FieldLevel) bool {
		return Level(fl.Field().String()).Valid()
	}); err != nil {
		panic(err)
	}
	v.RegisterStructValidation(validateBenchmarkRange, Benchmark{})
	return v
}

// decimalValue は validator が数値比較できるよう decimal を float64 に変換します。
func decimalValue(field reflect.Value) interface{} {
	d, ok := field.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	f, _ := d.Float64()
	return f
}

func validateBenchmarkRange(sl validator.StructLevel) {
	b, ok := sl.Current().Interface().(Benchmark)
	if !ok {
		return
	}
	if b.FloorSalary.GreaterThan(b.AverageSalary) {
		sl.ReportError(b.FloorSalary, "FloorSalary", "FloorSalary", "ltefield", "AverageSalary")
	}
	if b.AverageSalary.GreaterThan(b.CeilingSalary) {
		sl.ReportError(b.AverageSalary, "AverageSalary", "AverageSalary", "ltefield", "CeilingSalary")
	}
}

// ValidateRole は職種名と等級を検証します。
func ValidateRole(r Role) error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("role name is required")
	}
	return validate.Struct(r)
}

// ValidateEmployee は分析に必要な社員属性を検証します。
func ValidateEmployee(e *Employee) error {
	if e == nil {
		return fmt.Errorf("%w: employee is required", ErrInvalidEmployee)
	}
	if err := ValidateRole(e.Role); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEmployee, err)
	}
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEmployee, err)
	}
	return nil
}

// ValidateBenchmark はレンジの非負性と floor <= average <= ceiling を検証します。
func ValidateBenchmark(b *Benchmark) error {
	if b == nil {
		return fmt.Errorf("%w: benchmark is required", ErrInvalidBenchmark)
	}
	if err := ValidateRole(b.Role); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBenchmark, err)
	}
	if err := validate.Struct(b); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBenchmark, err)
	}
	return nil
}
