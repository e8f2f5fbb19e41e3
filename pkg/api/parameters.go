package api

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/tansive/ghrest/internal/common/httpclient"
)

// ToParameters converts a request options struct into query parameters. Field names come
// from mapstructure tags. Zero values are dropped and slices are joined with commas.
// Nested structs and maps cannot be expressed as query parameters and are rejected.
func ToParameters(v any) (map[string]string, error) {
	out := make(map[string]string)
	if v == nil {
		return out, nil
	}
	var raw map[string]any
	switch m := v.(type) {
	case map[string]string:
		for k, s := range m {
			if s != "" {
				out[k] = s
			}
		}
		return out, nil
	case map[string]any:
		raw = m
	default:
		if err := mapstructure.Decode(v, &raw); err != nil {
			return nil, httpclient.ErrInvalidRequest.MsgErr("unable to convert parameters", err)
		}
	}
	for k, val := range raw {
		s, ok, err := formatParameter(reflect.ValueOf(val))
		if err != nil {
			return nil, httpclient.ErrInvalidRequest.MsgErr(fmt.Sprintf("parameter %q", k), err)
		}
		if ok {
			out[k] = s
		}
	}
	return out, nil
}

func formatParameter(v reflect.Value) (string, bool, error) {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return "", false, nil
		}
		v = v.Elem()
	}
	if !v.IsValid() || v.IsZero() {
		return "", false, nil
	}
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String(), true, nil
	}
	switch v.Kind() {
	case reflect.String:
		return v.String(), true, nil
	case reflect.Bool:
		return strconv.FormatBool(v.Bool()), true, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), true, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), true, nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64), true, nil
	case reflect.Slice, reflect.Array:
		parts := make([]string, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			s, ok, err := formatParameter(v.Index(i))
			if err != nil {
				return "", false, err
			}
			if ok {
				parts = append(parts, s)
			}
		}
		if len(parts) == 0 {
			return "", false, nil
		}
		return strings.Join(parts, ","), true, nil
	}
	return "", false, fmt.Errorf("unsupported parameter type %s", v.Type())
}
