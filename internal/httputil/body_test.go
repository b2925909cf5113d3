package httputil

import (
	"errors"
	"strings"
	"testing"
)

func TestReadAllWithLimit(t *testing.T) {
	body, truncated, err := ReadAllWithLimit(strings.NewReader("hello"), 10)
	if err != nil {
		t.Fatalf("ReadAllWithLimit() error = %v", err)
	}
	if truncated {
		t.Error("truncated = true, want false")
	}
	if string(body) != "hello" {
		t.Errorf("body = %q, want hello", body)
	}

	body, truncated, err = ReadAllWithLimit(strings.NewReader("hello world"), 5)
	if err != nil {
		t.Fatalf("ReadAllWithLimit() error = %v", err)
	}
	if !truncated {
		t.Error("truncated = false, want true")
	}
	if string(body) != "hello" {
		t.Errorf("body = %q, want hello", body)
	}
}

func TestReadAllWithLimit_InvalidLimit(t *testing.T) {
	if _, _, err := ReadAllWithLimit(strings.NewReader("x"), 0); err == nil {
		t.Error("expected error for zero limit")
	}
}

func TestReadAllStrict(t *testing.T) {
	if _, err := ReadAllStrict(strings.NewReader("12345"), 5); err != nil {
		t.Fatalf("ReadAllStrict() at limit error = %v", err)
	}
	_, err := ReadAllStrict(strings.NewReader("123456"), 5)
	if !errors.Is(err, ErrBodyTooLarge) {
		t.Errorf("ReadAllStrict() error = %v, want ErrBodyTooLarge", err)
	}
}

func TestIsSuccess(t *testing.T) {
	cases := map[int]bool{199: false, 200: true, 204: true, 299: true, 301: false, 404: false, 500: false}
	for status, want := range cases {
		if got := IsSuccess(status); got != want {
			t.Errorf("IsSuccess(%d) = %v, want %v", status, got, want)
		}
	}
}
