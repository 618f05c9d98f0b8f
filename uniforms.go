package rendergraph

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"reflect"
)

// PackUniform flattens a struct, array, slice or scalar into the
// little-endian byte layout the GPU reads. Nested structs and slices are
// packed field by field; pointer fields are followed.
func PackUniform(data any) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := packValue(reflect.ValueOf(data), buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func packValue(v reflect.Value, buf *bytes.Buffer) error {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return fmt.Errorf("cannot pack nil pointer")
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := packValue(v.Index(i), buf); err != nil {
				return err
			}
		}
		return nil

	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if err := packValue(v.Field(i), buf); err != nil {
				return fmt.Errorf("field %s: %w", v.Type().Field(i).Name, err)
			}
		}
		return nil

	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Float32, reflect.Float64:
		if err := binary.Write(buf, binary.LittleEndian, v.Interface()); err != nil {
			return fmt.Errorf("failed to write scalar: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unsupported uniform type %v", v.Type())
	}
}

// AlignUp rounds n up to the next multiple of align. align must be a power
// of two.
func AlignUp(n, align uint64) uint64 {
	return (n + align - 1) &^ (align - 1)
}
