package jsonc

import "testing"

func TestEqualScalars(t *testing.T) {
	cases := []struct {
		name string
		a, b Value
		want bool
	}{
		{"equal strings", String("x"), String("x"), true},
		{"different strings", String("x"), String("y"), false},
		{"equal numbers", Number(80), Number(80), true},
		{"different kinds", String("80"), Number(80), false},
		{"null equals null", Null(), Null(), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Equal(c.a, c.b); got != c.want {
				t.Errorf("Equal(%+v, %+v) = %v, want %v", c.a, c.b, got, c.want)
			}
		})
	}
}

func TestEqualObjectsIgnoresKeyOrder(t *testing.T) {
	a := NewObject()
	a.Set("x", Number(1))
	a.Set("y", Number(2))

	b := NewObject()
	b.Set("y", Number(2))
	b.Set("x", Number(1))

	if !Equal(NewObjectValue(a), NewObjectValue(b)) {
		t.Fatal("expected objects with same keys in different order to be equal")
	}
}

func TestAsStringRendersScalars(t *testing.T) {
	if got := String("world").AsString(); got != "world" {
		t.Errorf("got %q", got)
	}
	if got := Number(3000).AsString(); got != "3000" {
		t.Errorf("got %q", got)
	}
	if got := Bool(true).AsString(); got != "true" {
		t.Errorf("got %q", got)
	}
}
