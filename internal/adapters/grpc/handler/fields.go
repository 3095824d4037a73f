package handler

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/structpb"
)

const dateLayout = "2006-01-02"

// fields は structpb.Struct の要求フィールドを型付きで読み出します。
type fields struct {
	values map[string]*structpb.Value
}

func newFields(req *structpb.Struct) fields {
	if req == nil {
		return fields{values: map[string]*structpb.Value{}}
	}
	return fields{values: req.GetFields()}
}

// present はフィールドが指定されているか (null を含む) を返します。
func (f fields) present(name string) bool {
	_, ok := f.values[name]
	return ok
}

func (f fields) isNull(name string) bool {
	v, ok := f.values[name]
	if !ok {
		return true
	}
	_, null := v.GetKind().(*structpb.Value_NullValue)
	return null
}

func (f fields) str(name string) (string, error) {
	v, ok := f.values[name]
	if !ok || f.isNull(name) {
		return "", nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return kind.StringValue, nil
	case *structpb.Value_NumberValue:
		return strconv.FormatFloat(kind.NumberValue, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("%s: expected string", name)
	}
}

func (f fields) optStr(name string) (*string, error) {
	if f.isNull(name) {
		return nil, nil
	}
	s, err := f.str(name)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (f fields) decimal(name string) (decimal.Decimal, error) {
	d, err := f.optDecimal(name)
	if err != nil {
		return decimal.Zero, err
	}
	if d == nil {
		return decimal.Zero, fmt.Errorf("%s: required", name)
	}
	return *d, nil
}

func (f fields) optDecimal(name string) (*decimal.Decimal, error) {
	if f.isNull(name) {
		return nil, nil
	}
	raw, err := f.str(name)
	if err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: invalid decimal %q", name, raw)
	}
	return &d, nil
}

func (f fields) date(name string) (*time.Time, error) {
	raw, err := f.str(name)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, trimmed, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid format, expected YYYY-MM-DD", name)
	}
	return &t, nil
}

// dateUpdate は更新要求の日付を読み出します。null または空文字は値の消去を意味します。
func (f fields) dateUpdate(name string) (*time.Time, bool, error) {
	if !f.present(name) {
		return nil, false, nil
	}
	t, err := f.date(name)
	if err != nil {
		return nil, false, err
	}
	return t, true, nil
}

func (f fields) integer(name string) (int, error) {
	v, ok := f.values[name]
	if !ok || f.isNull(name) {
		return 0, nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		n := kind.NumberValue
		if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
			return 0, fmt.Errorf("%s: expected integer", name)
		}
		return int(n), nil
	case *structpb.Value_StringValue:
		n, err := strconv.Atoi(strings.TrimSpace(kind.StringValue))
		if err != nil {
			return 0, fmt.Errorf("%s: expected integer", name)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s: expected integer", name)
	}
}

func formatDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
