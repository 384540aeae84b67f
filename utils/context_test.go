package utils

import (
	"context"
	"testing"
)

func TestRequestID(t *testing.T) {
	if got := GetRequestIDFromCtx(context.Background()); got != "" {
		t.Errorf("GetRequestIDFromCtx(empty) = %q, want empty", got)
	}

	ctx := WithRequestID(context.Background(), "rq-1")
	if got := GetRequestIDFromCtx(ctx); got != "rq-1" {
		t.Errorf("GetRequestIDFromCtx() = %q, want rq-1", got)
	}

	a := GetRequestIDFromCtx(NewCtxWithRqID(context.Background()))
	b := GetRequestIDFromCtx(NewCtxWithRqID(context.Background()))
	if a == "" || a == b {
		t.Errorf("NewCtxWithRqID() ids = %q, %q, want distinct non-empty", a, b)
	}
}
