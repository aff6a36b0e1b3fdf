package jsonc

import "testing"

func TestParseStripsCommentsAndTrailingCommas(t *testing.T) {
	src := []byte(`{
		// shared region
		"region": "us", /* inline */
		"port": 80,
	}`)

	val, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if val.Kind != KindObject {
		t.Fatalf("expected object, got kind %v", val.Kind)
	}

	region, ok := val.Object.Get("region")
	if !ok || region.String != "us" {
		t.Fatalf("expected region=us, got %+v (ok=%v)", region, ok)
	}

	port, ok := val.Object.Get("port")
	if !ok || port.Number != 80 {
		t.Fatalf("expected port=80, got %+v (ok=%v)", port, ok)
	}
}

func TestParsePreservesKeyOrder(t *testing.T) {
	val, err := Parse([]byte(`{"z": 1, "a": 2, "m": 3}`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	var keys []string
	for pair := val.Object.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}

	want := []string{"z", "a", "m"}
	if len(keys) != len(want) {
		t.Fatalf("got %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("got %v, want %v", keys, want)
		}
	}
}

func TestParseMalformedReportsOffset(t *testing.T) {
	_, err := Parse([]byte(`{"a": }`))
	if err == nil {
		t.Fatal("expected parse error")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
	if pe.Offset <= 0 {
		t.Fatalf("expected a positive byte offset, got %d", pe.Offset)
	}
}

func TestParseNestedArraysAndObjects(t *testing.T) {
	val, err := Parse([]byte(`{"servers": [{"host": "a"}, {"host": "b"}]}`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	servers, _ := val.Object.Get("servers")
	if servers.Kind != KindArray || len(servers.Array) != 2 {
		t.Fatalf("expected 2-element array, got %+v", servers)
	}
	first := servers.Array[0]
	host, ok := first.Object.Get("host")
	if !ok || host.String != "a" {
		t.Fatalf("expected host=a, got %+v", host)
	}
}
