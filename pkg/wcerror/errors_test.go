package wcerror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormatsPathKindMessage(t *testing.T) {
	e := New(KindGraph, CodeDependencyCycle, "/repo/a", "dependency cycle: a -> b -> a")
	got := e.Error()
	want := "/repo/a: graph: dependency cycle: a -> b -> a"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestErrorWithoutPathOmitsLeadingSegment(t *testing.T) {
	e := New(KindResolution, CodeNonUniformKey, "", "key missing")
	if got, want := e.Error(), "resolution: key missing"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWrapUsesCauseMessage(t *testing.T) {
	cause := fmt.Errorf("unexpected EOF")
	e := Wrap(KindParse, "", "/repo/a/_space.jsonc", cause)
	if got := e.Error(); got != "/repo/a/_space.jsonc: parse: unexpected EOF" {
		t.Errorf("got %q", got)
	}
	if !errors.Is(e, cause) {
		t.Error("expected errors.Is to find the wrapped cause through Unwrap")
	}
}

func TestIsComparesKindAndCode(t *testing.T) {
	a := New(KindGraph, CodeDuplicateSpace, "/x", "dup")
	b := New(KindGraph, CodeDuplicateSpace, "/y", "dup")
	c := New(KindGraph, CodeUnknownDependency, "/x", "unknown")

	if !errors.Is(a, b) {
		t.Error("expected a and b to match on Kind+Code despite different paths/messages")
	}
	if errors.Is(a, c) {
		t.Error("expected a and c to differ by Code")
	}
}

func TestHasCode(t *testing.T) {
	err := New(KindEmission, CodeIO, "/repo/gen/config.json", "permission denied")
	if !HasCode(err, CodeIO) {
		t.Error("expected HasCode to find CodeIO")
	}
	if HasCode(err, CodeDependencyCycle) {
		t.Error("expected HasCode to reject a mismatched code")
	}
	if HasCode(nil, CodeIO) {
		t.Error("expected HasCode(nil, ...) to be false")
	}
}

func TestListAccumulatesAndNeverShortCircuits(t *testing.T) {
	var l List
	l.Add(New(KindParse, "", "/a", "bad a"))
	l.Add(nil)
	l.Add(New(KindParse, "", "/b", "bad b"))

	if l.Empty() {
		t.Fatal("expected a non-empty list")
	}
	if got := len(l.Errors()); got != 2 {
		t.Fatalf("expected 2 errors, got %d", got)
	}
	lines := l.Lines()
	if len(lines) != 2 || lines[0] != "/a: parse: bad a" || lines[1] != "/b: parse: bad b" {
		t.Fatalf("unexpected Lines() output: %v", lines)
	}
}

func TestListAddAllMerges(t *testing.T) {
	var a, b List
	a.Add(New(KindGraph, CodeDependencyCycle, "/x", "cycle"))
	b.Add(New(KindResolution, CodeNonUniformKey, "/y", "non-uniform"))

	a.AddAll(&b)
	if got := len(a.Errors()); got != 2 {
		t.Fatalf("expected 2 errors after merge, got %d", got)
	}
}

func TestEmptyListErrIsNil(t *testing.T) {
	var l List
	if err := l.Err(); err != nil {
		t.Errorf("expected nil Err() on an empty list, got %v", err)
	}
}

func TestNonEmptyListErrSummarizes(t *testing.T) {
	var l List
	l.Add(New(KindParse, "", "/a", "bad a"))
	l.Add(New(KindParse, "", "/b", "bad b"))

	err := l.Err()
	if err == nil {
		t.Fatal("expected a non-nil summary error")
	}
	if want := "2 error(s), first: /a: parse: bad a"; err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestNilListIsEmpty(t *testing.T) {
	var l *List
	if !l.Empty() {
		t.Error("expected a nil *List to report Empty()")
	}
	if l.Errors() != nil {
		t.Error("expected a nil *List to return nil Errors()")
	}
}
