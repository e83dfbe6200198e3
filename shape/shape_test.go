package shape

import (
	"reflect"
	"testing"
)

type widget struct{}

func TestOf_OrderAndArity(t *testing.T) {
	cases := []struct {
		name string
		a, b Shape
		same bool
	}{
		{"identical", Of(1), Of(2), true},
		{"different type", Of(1), Of(1.0), false},
		{"different arity", Of(1), Of(1, 2), false},
		{"different order", Of(1, "a"), Of("a", 1), false},
		{"same pair", Of(1, "a"), Of(2, "b"), true},
		{"empty lists", Of(), Of(), true},
		{"named type", Of(widget{}), Of(widget{}), true},
		{"value vs pointer", Of(widget{}), Of(&widget{}), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if (tc.a == tc.b) != tc.same {
				t.Errorf("a=%v b=%v: expected same=%v", tc.a, tc.b, tc.same)
			}
		})
	}
}

func TestFor_AgreesWithOf(t *testing.T) {
	byTypes := For(reflect.TypeOf(0), reflect.TypeOf(""))
	byValues := Of(42, "orange")

	if byTypes != byValues {
		t.Errorf("For=%v Of=%v: expected equal", byTypes, byValues)
	}
}

func TestString(t *testing.T) {
	if got := Of(1, "a").String(); got != "(int,string)" {
		t.Errorf("expected (int,string), got %s", got)
	}
	if got := Of().String(); got != "()" {
		t.Errorf("expected (), got %s", got)
	}
}

func TestIsZero(t *testing.T) {
	var zero Shape
	if !zero.IsZero() {
		t.Error("zero value should report IsZero")
	}
	if Of().IsZero() {
		t.Error("empty shape is not the zero shape")
	}
	if zero == Of() {
		t.Error("zero shape must not equal the empty shape")
	}
}

func TestArity(t *testing.T) {
	if got := Of().Arity(); got != 0 {
		t.Errorf("expected arity 0, got %d", got)
	}
	if got := Of(1, "a", 3.0).Arity(); got != 3 {
		t.Errorf("expected arity 3, got %d", got)
	}
}

func TestOf_NilArgument(t *testing.T) {
	s := Of(nil)
	if s.IsZero() {
		t.Error("nil argument still yields a non-zero shape")
	}
	if s == Of(0) {
		t.Error("nil argument must not collide with a typed argument")
	}
}
