package transform

import "fmt"

// Parameter maps survive a JSON round trip before replay, so every numeric
// value may arrive as float64 and every slice as []any. The converters below
// accept both the as-built and the decoded forms.

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}

func toInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case float64:
		return int(x), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

func intTriple(v any) ([3]int, error) {
	var out [3]int
	switch x := v.(type) {
	case []int:
		if len(x) != 3 {
			return out, fmt.Errorf("expected 3 elements, got %d", len(x))
		}
		copy(out[:], x)
		return out, nil
	case [3]int:
		return x, nil
	case []any:
		if len(x) != 3 {
			return out, fmt.Errorf("expected 3 elements, got %d", len(x))
		}
		for i, e := range x {
			n, err := toInt(e)
			if err != nil {
				return out, err
			}
			out[i] = n
		}
		return out, nil
	default:
		return out, fmt.Errorf("expected integer triple, got %T", v)
	}
}

func intMatrix(v any) ([3][3]int, error) {
	var out [3][3]int
	switch x := v.(type) {
	case [][]int:
		if len(x) != 3 {
			return out, fmt.Errorf("expected 3 rows, got %d", len(x))
		}
		for i, row := range x {
			if len(row) != 3 {
				return out, fmt.Errorf("expected 3 columns in row %d, got %d", i, len(row))
			}
			copy(out[i][:], row)
		}
		return out, nil
	case []any:
		if len(x) != 3 {
			return out, fmt.Errorf("expected 3 rows, got %d", len(x))
		}
		for i, rawRow := range x {
			row, ok := rawRow.([]any)
			if !ok || len(row) != 3 {
				return out, fmt.Errorf("expected 3 columns in row %d", i)
			}
			for j, e := range row {
				n, err := toInt(e)
				if err != nil {
					return out, err
				}
				out[i][j] = n
			}
		}
		return out, nil
	default:
		return out, fmt.Errorf("expected integer matrix, got %T", v)
	}
}

func stringSlice(v any) ([]string, error) {
	switch x := v.(type) {
	case []string:
		return x, nil
	case []any:
		out := make([]string, len(x))
		for i, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("expected string at %d, got %T", i, e)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected string slice, got %T", v)
	}
}

func floatTriples(v any) ([][3]float64, error) {
	switch x := v.(type) {
	case [][]float64:
		out := make([][3]float64, len(x))
		for i, row := range x {
			if len(row) != 3 {
				return nil, fmt.Errorf("expected 3 coordinates at %d, got %d", i, len(row))
			}
			copy(out[i][:], row)
		}
		return out, nil
	case [][3]float64:
		return x, nil
	case []any:
		out := make([][3]float64, len(x))
		for i, rawRow := range x {
			row, ok := rawRow.([]any)
			if !ok || len(row) != 3 {
				return nil, fmt.Errorf("expected 3 coordinates at %d", i)
			}
			for j, e := range row {
				f, err := toFloat(e)
				if err != nil {
					return nil, err
				}
				out[i][j] = f
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected coordinate list, got %T", v)
	}
}

func propertyMap(v any) (map[string][]any, error) {
	switch x := v.(type) {
	case map[string][]any:
		return x, nil
	case map[string]any:
		out := make(map[string][]any, len(x))
		for name, raw := range x {
			values, ok := raw.([]any)
			if !ok {
				return nil, fmt.Errorf("property %q: expected value list, got %T", name, raw)
			}
			out[name] = values
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected property map, got %T", v)
	}
}
