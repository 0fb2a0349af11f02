package cache

import (
	"errors"
	"testing"
	"time"
)

func TestFetch_CachesUntilInvalidated(t *testing.T) {
	l := New(time.Minute)
	calls := 0
	load := func() ([]string, error) {
		calls++
		return []string{"a"}, nil
	}

	for i := 0; i < 3; i++ {
		if _, err := Fetch(l, KeyProjects, load); err != nil {
			t.Fatalf("fetch: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("loader called %d times, want 1", calls)
	}

	l.Invalidate(KeyProjects)
	if _, err := Fetch(l, KeyProjects, load); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if calls != 2 {
		t.Fatalf("loader called %d times after invalidate, want 2", calls)
	}
}

func TestFetch_ErrorsAreNotCached(t *testing.T) {
	l := New(time.Minute)
	boom := errors.New("boom")

	if _, err := Fetch(l, KeySkills, func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	v, err := Fetch(l, KeySkills, func() (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Fatalf("v = %d err = %v", v, err)
	}
}

func TestFetch_NilCacheAlwaysLoads(t *testing.T) {
	var l *Lists
	calls := 0
	for i := 0; i < 2; i++ {
		_, _ = Fetch(l, KeyBlog, func() (int, error) { calls++; return 1, nil })
	}
	l.Invalidate(KeyBlog)
	if calls != 2 {
		t.Fatalf("calls = %d", calls)
	}
}
