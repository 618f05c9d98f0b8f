package rendergraph

import (
	"fmt"
	"reflect"
	"strconv"
)

// LayoutOf derives an InputLayout from a vertex struct. Fields tagged
// `render:"layout"` become attributes; their shader location and format come
// from the `location` and `format` tags. Untagged fields still advance the
// offset, so padding fields work.
//
//	type Vertex struct {
//		Pos   [3]float32 `render:"layout" location:"0" format:"float3"`
//		Color [4]float32 `render:"layout" location:"1" format:"float4"`
//	}
func LayoutOf(vertex any) (*InputLayout, error) {
	t := reflect.TypeOf(vertex)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("vertex must be a struct, got %v", t.Kind())
	}

	layout := &InputLayout{}
	var offset uint64
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Tag.Get("render") == "layout" {
			format, err := parseVertexFormat(field.Tag.Get("format"))
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", field.Name, err)
			}
			location, err := strconv.Atoi(field.Tag.Get("location"))
			if err != nil {
				return nil, fmt.Errorf("field %s: bad location tag: %w", field.Name, err)
			}
			layout.Attributes = append(layout.Attributes, AttributeDecl{
				Format:   format,
				Offset:   offset,
				Location: uint32(location),
			})
		}
		offset += uint64(field.Type.Size())
	}
	layout.Stride = offset
	return layout, nil
}

func parseVertexFormat(name string) (VertexFormat, error) {
	switch name {
	case "float":
		return VertexFloat32, nil
	case "float2":
		return VertexFloat32x2, nil
	case "float3":
		return VertexFloat32x3, nil
	case "float4":
		return VertexFloat32x4, nil
	case "uint":
		return VertexUint32, nil
	case "sint":
		return VertexSint32, nil
	case "uint4":
		return VertexUint32x4, nil
	default:
		return 0, fmt.Errorf("unsupported vertex format %q", name)
	}
}
