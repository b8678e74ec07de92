package types

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/valyala/fastjson"
)

// Date layouts used by the calendar scalars.
const (
	LocalDateLayout     = "2006-01-02"
	LocalDateTimeLayout = "2006-01-02T15:04:05.999999"
)

var (
	anyType      = reflect.TypeOf((*any)(nil)).Elem()
	stringType   = reflect.TypeOf("")
	boolType     = reflect.TypeOf(false)
	intType      = reflect.TypeOf(int(0))
	int16Type    = reflect.TypeOf(int16(0))
	int32Type    = reflect.TypeOf(int32(0))
	int64Type    = reflect.TypeOf(int64(0))
	float32Type  = reflect.TypeOf(float32(0))
	float64Type  = reflect.TypeOf(float64(0))
	bigIntType   = reflect.TypeOf((*big.Int)(nil))
	decimalType  = reflect.TypeOf(decimal.Decimal{})
	uuidType     = reflect.TypeOf(uuid.UUID{})
	rawJSONType  = reflect.TypeOf(json.RawMessage(nil))
	bytesType    = reflect.TypeOf([]byte(nil))
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
	f32sType     = reflect.TypeOf([]float32(nil))
	f64sType     = reflect.TypeOf([]float64(nil))
)

// Standard library scalars.
var (
	StdStr           = mustScalar("std::str", stringType, nil, coerceString)
	StdBool          = mustScalar("std::bool", boolType, nil, coerceBool)
	StdInt16         = mustScalar("std::int16", int16Type, []reflect.Type{intType, int64Type, int32Type}, coerceInt(16, int16Type))
	StdInt32         = mustScalar("std::int32", int32Type, []reflect.Type{intType, int64Type, int16Type}, coerceInt(32, int32Type))
	StdInt64         = mustScalar("std::int64", int64Type, []reflect.Type{intType, int32Type, int16Type}, coerceInt(64, int64Type))
	StdFloat32       = mustScalar("std::float32", float32Type, []reflect.Type{float64Type}, coerceFloat(float32Type))
	StdFloat64       = mustScalar("std::float64", float64Type, []reflect.Type{float32Type, intType}, coerceFloat(float64Type))
	StdBigInt        = mustScalar("std::bigint", bigIntType, []reflect.Type{intType, int64Type, stringType}, coerceBigInt)
	StdDecimal       = mustScalar("std::decimal", decimalType, []reflect.Type{stringType, float64Type, intType}, coerceDecimal)
	StdUUID          = mustScalar("std::uuid", uuidType, []reflect.Type{stringType}, coerceUUID)
	StdJSON          = mustScalar("std::json", rawJSONType, []reflect.Type{anyType}, coerceJSON)
	StdBytes         = mustScalar("std::bytes", bytesType, nil, coerceBytes)
	StdDatetime      = mustScalar("std::datetime", timeType, []reflect.Type{stringType}, coerceTime(time.RFC3339Nano))
	StdDuration      = mustScalar("std::duration", durationType, []reflect.Type{stringType}, coerceDuration)
	CalLocalDate     = mustScalar("cal::local_date", timeType, []reflect.Type{stringType}, coerceTime(LocalDateLayout))
	CalLocalDateTime = mustScalar("cal::local_datetime", timeType, []reflect.Type{stringType}, coerceTime(LocalDateTimeLayout))
	PgVector         = mustScalar("ext::pgvector::vector", f32sType, []reflect.Type{f64sType}, coerceVector)
)

// SchemaObjectType is schema::ObjectType, the target of every __type__ link.
var SchemaObjectType = newSchemaObjectType()

// FreeObjectType is std::FreeObject, the element of free object selects.
var FreeObjectType = newBareObjectType("std::FreeObject")

func newSchemaObjectType() *ObjectType {
	o := newBareObjectType("schema::ObjectType")
	o.addImplicitPointers(o)
	o.setPointer("name", &PropertyDesc{Target: StdStr, Cardinality: One, PointerFlags: PointerFlags{Readonly: true}})
	o.Freeze()
	return o
}

// StdScalars lists the standard library scalars in registration order.
func StdScalars() []*ScalarType {
	return []*ScalarType{
		StdStr, StdBool, StdInt16, StdInt32, StdInt64, StdFloat32, StdFloat64,
		StdBigInt, StdDecimal, StdUUID, StdJSON, StdBytes, StdDatetime, StdDuration,
		CalLocalDate, CalLocalDateTime, PgVector,
	}
}

func mustScalar(name string, constant reflect.Type, wider []reflect.Type, coerce CoerceFunc) *ScalarType {
	args := append([]reflect.Type{constant}, wider...)
	s, err := NewScalarType(name, HostTypes{Runtime: constant, Const: constant, Args: args}, coerce)
	if err != nil {
		panic(err)
	}
	return s
}

func coerceString(v any) (any, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.String {
		return nil, fmt.Errorf("expected string, got %T", v)
	}
	return rv.String(), nil
}

func coerceBool(v any) (any, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Bool {
		return nil, fmt.Errorf("expected bool, got %T", v)
	}
	return rv.Bool(), nil
}

func coerceInt(bits int, out reflect.Type) CoerceFunc {
	lo, hi := int64(-1)<<(bits-1), int64(1)<<(bits-1)-1
	if bits == 64 {
		lo, hi = math.MinInt64, math.MaxInt64
	}
	return func(v any) (any, error) {
		rv := reflect.ValueOf(v)
		var n int64
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n = rv.Int()
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			u := rv.Uint()
			if u > math.MaxInt64 {
				return nil, fmt.Errorf("%d overflows int%d", u, bits)
			}
			n = int64(u)
		default:
			return nil, fmt.Errorf("expected integer, got %T", v)
		}
		if n < lo || n > hi {
			return nil, fmt.Errorf("%d overflows int%d", n, bits)
		}
		return reflect.ValueOf(n).Convert(out).Interface(), nil
	}
}

func coerceFloat(out reflect.Type) CoerceFunc {
	return func(v any) (any, error) {
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Float32, reflect.Float64:
			return rv.Convert(out).Interface(), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return reflect.ValueOf(float64(rv.Int())).Convert(out).Interface(), nil
		}
		return nil, fmt.Errorf("expected number, got %T", v)
	}
}

func coerceBigInt(v any) (any, error) {
	switch x := v.(type) {
	case *big.Int:
		if x == nil {
			return nil, fmt.Errorf("nil bigint")
		}
		return new(big.Int).Set(x), nil
	case big.Int:
		return new(big.Int).Set(&x), nil
	case string:
		n, ok := new(big.Int).SetString(x, 10)
		if !ok {
			return nil, fmt.Errorf("invalid bigint %q", x)
		}
		return n, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return big.NewInt(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return new(big.Int).SetUint64(rv.Uint()), nil
	}
	return nil, fmt.Errorf("expected integer, got %T", v)
}

func coerceDecimal(v any) (any, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case string:
		return decimal.NewFromString(x)
	case float64:
		return decimal.NewFromFloat(x), nil
	case float32:
		return decimal.NewFromFloat32(x), nil
	case *big.Int:
		return decimal.NewFromBigInt(x, 0), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decimal.NewFromInt(rv.Int()), nil
	}
	return nil, fmt.Errorf("expected decimal, got %T", v)
}

func coerceUUID(v any) (any, error) {
	switch x := v.(type) {
	case uuid.UUID:
		return x, nil
	case [16]byte:
		return uuid.UUID(x), nil
	case string:
		return uuid.Parse(x)
	}
	return nil, fmt.Errorf("expected uuid, got %T", v)
}

func coerceJSON(v any) (any, error) {
	switch x := v.(type) {
	case json.RawMessage:
		if err := fastjson.ValidateBytes(x); err != nil {
			return nil, err
		}
		return append(json.RawMessage(nil), x...), nil
	case *fastjson.Value:
		return json.RawMessage(x.MarshalTo(nil)), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}

func coerceBytes(v any) (any, error) {
	switch x := v.(type) {
	case []byte:
		return append([]byte(nil), x...), nil
	case string:
		return []byte(x), nil
	}
	return nil, fmt.Errorf("expected bytes, got %T", v)
}

func coerceTime(layout string) CoerceFunc {
	return func(v any) (any, error) {
		switch x := v.(type) {
		case time.Time:
			if layout == LocalDateLayout {
				y, m, d := x.Date()
				return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
			}
			return x, nil
		case string:
			return time.Parse(layout, x)
		}
		return nil, fmt.Errorf("expected time, got %T", v)
	}
}

func coerceDuration(v any) (any, error) {
	switch x := v.(type) {
	case time.Duration:
		return x, nil
	case string:
		return time.ParseDuration(x)
	}
	return nil, fmt.Errorf("expected duration, got %T", v)
}

func coerceVector(v any) (any, error) {
	switch x := v.(type) {
	case []float32:
		return append([]float32(nil), x...), nil
	case []float64:
		out := make([]float32, len(x))
		for i, f := range x {
			out[i] = float32(f)
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected vector, got %T", v)
}
