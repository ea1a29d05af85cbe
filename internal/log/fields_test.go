package log

import "testing"

func TestLogFieldsBuilder(t *testing.T) {
	f := NewFields().
		WithHTTPRequest("POST", "/transactions").
		WithClientIP("10.0.0.1").
		WithHTTPResponse(201, 42)

	want := map[string]any{
		FieldMethod:     "POST",
		FieldPath:       "/transactions",
		FieldClientIP:   "10.0.0.1",
		FieldStatusCode: 201,
		FieldDuration:   int64(42),
	}
	if len(f) != len(want) {
		t.Fatalf("fields = %v, want %v", f, want)
	}
	for k, v := range want {
		if f[k] != v {
			t.Errorf("field %q = %v, want %v", k, f[k], v)
		}
	}
}

func TestLogFieldsToSlice(t *testing.T) {
	f := NewFields().WithClientIP("127.0.0.1")
	s := f.ToSlice()
	if len(s) != 2*len(f) {
		t.Fatalf("ToSlice length = %d, want %d", len(s), 2*len(f))
	}

	// Pairs must alternate key, value with keys matching the map.
	for i := 0; i < len(s); i += 2 {
		key, ok := s[i].(string)
		if !ok {
			t.Fatalf("slice element %d is %T, want string key", i, s[i])
		}
		if f[key] != s[i+1] {
			t.Errorf("pair %q = %v, want %v", key, s[i+1], f[key])
		}
	}
}
