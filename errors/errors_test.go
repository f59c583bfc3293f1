package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(CodeInvalidInput, "commit must not be empty")

	require.NotNil(t, err)
	assert.Equal(t, CodeInvalidInput, err.Code())
	assert.Equal(t, ClassificationPermanent, err.Classification())
	assert.Equal(t, "commit must not be empty", err.Message())
	assert.Nil(t, err.Context())
	assert.Nil(t, err.Unwrap())
	assert.Equal(t, "[INVALID_INPUT] commit must not be empty", err.Error())
}

func TestNewf(t *testing.T) {
	err := Newf(CodeRefNotFound, "ref %q not found in %s", "abc123", "/cache/org/app.git")

	assert.Equal(t, `ref "abc123" not found in /cache/org/app.git`, err.Message())
	assert.True(t, err.Classification().IsRetryable())
}

func TestDefaultClassification(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want ErrorClassification
	}{
		{CodeRefNotFound, ClassificationRetryable},
		{CodeLockUnavailable, ClassificationRetryable},
		{CodeTimeout, ClassificationRetryable},
		{CodeCacheMissing, ClassificationPermanent},
		{CodeInvalidInput, ClassificationPermanent},
		{CodeExecutionFailed, ClassificationPermanent},
		{ErrorCode("SOMETHING_NEW"), ClassificationPermanent},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, defaultClassification(tt.code))
		})
	}
}

func TestWrap(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, CodeIO, "ignored"))
		assert.Nil(t, Wrapf(nil, CodeIO, "ignored %d", 1))
	})

	t.Run("standard error", func(t *testing.T) {
		cause := fmt.Errorf("disk full")
		err := Wrap(cause, CodeIO, "failed to write ledger")

		assert.Equal(t, CodeIO, err.Code())
		assert.Equal(t, "[IO_ERROR] failed to write ledger: disk full", err.Error())
		assert.True(t, stderrors.Is(err, cause))
	})

	t.Run("preserves inner classification", func(t *testing.T) {
		inner := New(CodeRefNotFound, "ref missing")
		err := Wrap(inner, CodeExecutionFailed, "materialize failed")

		assert.Equal(t, CodeExecutionFailed, err.Code())
		assert.Equal(t, ClassificationRetryable, err.Classification())
	})
}

func TestWrapWithContext_CopiesMap(t *testing.T) {
	ctx := map[string]any{"repository": "org/app"}
	err := WrapWithContext(fmt.Errorf("boom"), CodeExecutionFailed, "clone failed", ctx)

	ctx["repository"] = "mutated"
	assert.Equal(t, "org/app", err.Context()["repository"])

	got := err.Context()
	got["repository"] = "mutated again"
	assert.Equal(t, "org/app", err.Context()["repository"])
}

func TestWithContextMap(t *testing.T) {
	base := WithContext(New(CodeRefNotFound, "missing"), "commit", "abc")
	err := WithContextMap(base, map[string]any{"commit": "def", "repository": "org/app"})

	assert.Equal(t, CodeRefNotFound, err.Code())
	assert.Equal(t, map[string]any{"commit": "def", "repository": "org/app"}, err.Context())
	assert.Equal(t, map[string]any{"commit": "abc"}, base.Context())
}

func TestWithContext_ForeignError(t *testing.T) {
	cause := fmt.Errorf("plain")
	err := WithContext(cause, "k", "v")

	assert.Equal(t, CodeUnknown, err.Code())
	assert.True(t, stderrors.Is(err, cause))
	assert.Nil(t, WithContext(nil, "k", "v"))
}

func TestWithClassification(t *testing.T) {
	err := WithClassification(New(CodeExecutionFailed, "clone failed"), ClassificationRetryable)

	assert.Equal(t, CodeExecutionFailed, err.Code())
	assert.True(t, IsRetryable(err))
}

func TestHelpers(t *testing.T) {
	inner := New(CodeRefNotFound, "missing")
	outer := fmt.Errorf("materialize: %w", Wrap(inner, CodeExecutionFailed, "outer"))

	assert.Equal(t, CodeExecutionFailed, GetCode(outer))
	assert.True(t, HasCode(outer, CodeRefNotFound))
	assert.True(t, HasCode(outer, CodeExecutionFailed))
	assert.False(t, HasCode(outer, CodeCacheMissing))
	assert.True(t, IsRetryable(outer))

	assert.Equal(t, CodeUnknown, GetCode(nil))
	assert.Equal(t, CodeUnknown, GetCode(fmt.Errorf("plain")))
	assert.Equal(t, ClassificationPermanent, GetClassification(nil))
	assert.False(t, IsRetryable(fmt.Errorf("plain")))
}

func TestIs_Sentinel(t *testing.T) {
	sentinel := New(CodeNotFound, "revision not found")
	err := fmt.Errorf("resolve: %w", New(CodeNotFound, "revision not found"))

	assert.True(t, Is(err, sentinel))
	assert.False(t, Is(err, New(CodeNotFound, "other")))
}

func TestToJSON(t *testing.T) {
	assert.Nil(t, ToJSON(nil))

	resp := ToJSON(WithContext(New(CodeRefNotFound, "missing"), "commit", "deadbeef"))
	require.NotNil(t, resp)
	assert.Equal(t, "REF_NOT_FOUND", resp.Code)
	assert.Equal(t, "missing", resp.Message)
	assert.Equal(t, "RETRYABLE", resp.Classification)
	assert.Equal(t, "deadbeef", resp.Context["commit"])

	foreign := ToJSON(fmt.Errorf("plain"))
	assert.Equal(t, "UNKNOWN", foreign.Code)
	assert.Equal(t, "plain", foreign.Message)
}

func TestMarshalJSON(t *testing.T) {
	err := Wrap(fmt.Errorf("secret stderr"), CodeExecutionFailed, "checkout failed")

	data, mErr := json.Marshal(err)
	require.NoError(t, mErr)
	assert.JSONEq(t, `{"code":"EXECUTION_FAILED","message":"checkout failed","classification":"PERMANENT"}`, string(data))
}
