package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "link not found",
			err:  New(ErrCodeLinkNotFound, "link %q not found", "L1"),
			want: `LINK_NOT_FOUND: link "L1" not found`,
		},
		{
			name: "store write cancelled",
			err:  Wrap(ErrCodeStore, context.Canceled, "put %s/%s", "mc-link-data", "linkDataList"),
			want: "STORE_ERROR: put mc-link-data/linkDataList: context canceled",
		},
		{
			name: "unknown event type",
			err:  New(ErrCodeInvalidEvent, "unknown event type %q", "bogus"),
			want: `INVALID_EVENT: unknown event type "bogus"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap(ErrCodeStore, context.DeadlineExceeded, "put mc-link-data/locationDataList")

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("store error should match its cause")
	}
	if errors.Unwrap(err) != context.DeadlineExceeded {
		t.Errorf("Unwrap() = %v", errors.Unwrap(err))
	}
}

func TestIs(t *testing.T) {
	storeErr := Wrap(ErrCodeStore, New(ErrCodeInvalidFormat, "bad record"), "get mc-link-data/linkDataList")

	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"direct", New(ErrCodeLinkNotFound, "L1"), ErrCodeLinkNotFound, true},
		{"other code", New(ErrCodeLinkNotFound, "L1"), ErrCodeEntityNotFound, false},
		{"through fmt wrap", fmt.Errorf("event 2: %w", New(ErrCodeInvalidEvent, "missing key")), ErrCodeInvalidEvent, true},
		{"through join", errors.Join(nil, storeErr), ErrCodeStore, true},
		{"outermost code wins", storeErr, ErrCodeInvalidFormat, false},
		{"plain error", context.Canceled, ErrCodeStore, false},
		{"nil", nil, ErrCodeStore, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is(%v, %s) = %v, want %v", tt.err, tt.code, got, tt.want)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"invalid event", New(ErrCodeInvalidEvent, "x"), ErrCodeInvalidEvent},
		{"wrapped store error", fmt.Errorf("flush: %w", Wrap(ErrCodeStore, context.Canceled, "put")), ErrCodeStore},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.want {
				t.Errorf("GetCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"coded", New(ErrCodeEntityNotFound, "entity %q not found", "Ghost"), `entity "Ghost" not found`},
		{"coded store", Wrap(ErrCodeStore, context.Canceled, "put mc-link-data/linkDataList"), "put mc-link-data/linkDataList"},
		{"plain", errors.New("plain error"), "plain error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimitedError(t *testing.T) {
	tests := []struct {
		retryAfter int
		want       string
	}{
		{60, "rate limited: retry after 60 seconds"},
		{0, "rate limited"},
	}
	for _, tt := range tests {
		err := &RateLimitedError{RetryAfter: tt.retryAfter}
		if got := err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
		if err.Code() != ErrCodeRateLimited {
			t.Errorf("Code() = %s", err.Code())
		}
	}
}
