package apiclient

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"network", &NetworkError{Op: "x", Err: errors.New("refused")}, KindNetwork},
		{"status", &HTTPStatusError{Op: "x", StatusCode: 500}, KindHTTPStatus},
		{"decode", &DecodeError{Op: "x", Err: errors.New("bad")}, KindDecode},
		{"timeout", &TimeoutError{Op: "x", Err: context.DeadlineExceeded}, KindTimeout},
		{"validation", Validation("username", "required"), KindValidation},
		{"wrapped status", fmt.Errorf("actions: %w", &HTTPStatusError{StatusCode: 409}), KindHTTPStatus},
		{"bare deadline", context.DeadlineExceeded, KindTimeout},
		{"plain", errors.New("boom"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyTransport(t *testing.T) {
	t.Parallel()

	if got := KindOf(classifyTransport("op", fmt.Errorf("get: %w", context.DeadlineExceeded))); got != KindTimeout {
		t.Fatalf("deadline kind = %v, want timeout", got)
	}
	if got := KindOf(classifyTransport("op", errors.New("connection refused"))); got != KindNetwork {
		t.Fatalf("refused kind = %v, want network", got)
	}
}

func TestMessageFallback(t *testing.T) {
	t.Parallel()

	if got := Message(&HTTPStatusError{StatusCode: 500}, "request failed"); got != "request failed" {
		t.Fatalf("empty body Message = %q", got)
	}
	if got := Message(&NetworkError{Err: errors.New("x")}, "request failed"); got != "request failed" {
		t.Fatalf("network Message = %q", got)
	}
	if got := Message(Validation("password", "at least 6 characters"), "x"); got != "at least 6 characters" {
		t.Fatalf("validation Message = %q", got)
	}
}

func TestIsUnauthorized(t *testing.T) {
	t.Parallel()

	if !IsUnauthorized(&HTTPStatusError{StatusCode: 401}) {
		t.Fatal("401 not unauthorized")
	}
	if !IsUnauthorized(&HTTPStatusError{StatusCode: 403}) {
		t.Fatal("403 not unauthorized")
	}
	if IsUnauthorized(&HTTPStatusError{StatusCode: 500}) {
		t.Fatal("500 reported unauthorized")
	}
	if IsUnauthorized(errors.New("x")) {
		t.Fatal("plain error reported unauthorized")
	}
}

func TestDecodeList(t *testing.T) {
	t.Parallel()

	for _, payload := range []string{"", "null", " null\n", `{"a":1}`, `"text"`, "[]"} {
		got, err := decodeList[int]("op", []byte(payload))
		if err != nil {
			t.Fatalf("decodeList(%q) err = %v", payload, err)
		}
		if got == nil || len(got) != 0 {
			t.Fatalf("decodeList(%q) = %#v, want empty", payload, got)
		}
	}

	if _, err := decodeList[int]("op", []byte("[1,")); KindOf(err) != KindDecode {
		t.Fatalf("truncated payload err = %v, want decode", err)
	}
	if _, err := decodeList[int]("op", []byte(`["a"]`)); KindOf(err) != KindDecode {
		t.Fatalf("mistyped payload err = %v, want decode", err)
	}
}
