package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(CodeRepository, "repository has no commits")

	require.NotNil(t, err)
	assert.Equal(t, CodeRepository, err.Code())
	assert.Equal(t, ClassificationFatal, err.Classification())
	assert.Equal(t, "repository has no commits", err.Message())
	assert.Nil(t, err.Context())
	assert.Nil(t, err.Unwrap())
	assert.Equal(t, "[REPOSITORY_ERROR] repository has no commits", err.Error())
}

func TestNewf(t *testing.T) {
	err := Newf(CodeVersionParse, "tag %q is not major.minor.patch", "v1.2")

	assert.Equal(t, CodeVersionParse, err.Code())
	assert.Equal(t, `tag "v1.2" is not major.minor.patch`, err.Message())
}

func TestDefaultClassification(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want ErrorClassification
	}{
		{CodeCache, ClassificationRecoverable},
		{CodeRepository, ClassificationFatal},
		{CodeVersionParse, ClassificationFatal},
		{CodeInvalidConfig, ClassificationFatal},
		{CodeNotFound, ClassificationFatal},
		{ErrorCode("SOMETHING_NEW"), ClassificationFatal},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.code, "x").Classification())
		})
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("object not found")
	err := Wrap(cause, CodeRepository, "failed to resolve HEAD")

	require.NotNil(t, err)
	assert.Equal(t, CodeRepository, err.Code())
	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, "[REPOSITORY_ERROR] failed to resolve HEAD: object not found", err.Error())
}

func TestWrap_NilError(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeRepository, "test"))
	assert.Nil(t, Wrapf(nil, CodeRepository, "test %d", 1))
	assert.Nil(t, WrapWithContext(nil, CodeRepository, "test", nil))
}

func TestWrap_ClassificationFollowsNewCode(t *testing.T) {
	cacheErr := New(CodeCache, "corrupt entry")
	require.True(t, cacheErr.Classification().IsRecoverable())

	wrapped := Wrap(cacheErr, CodeRepository, "failed")
	assert.False(t, wrapped.Classification().IsRecoverable())
}

func TestWrapWithContext_CopiesMap(t *testing.T) {
	ctx := map[string]interface{}{"repository": "/repo"}
	err := WrapWithContext(stderrors.New("boom"), CodeRepository, "describe failed", ctx)

	ctx["repository"] = "/mutated"
	assert.Equal(t, "/repo", err.Context()["repository"])

	got := err.Context()
	got["repository"] = "/also-mutated"
	assert.Equal(t, "/repo", err.Context()["repository"])
}

func TestWithContext(t *testing.T) {
	err := New(CodeVersionParse, "invalid tag")
	err = WithContext(err, "tag", "v1.2")
	err = WithContext(err, "repository", "/repo")

	assert.Equal(t, CodeVersionParse, err.Code())
	assert.Equal(t, map[string]interface{}{"tag": "v1.2", "repository": "/repo"}, err.Context())
}

func TestWithContext_StandardError(t *testing.T) {
	cause := fmt.Errorf("plain")
	err := WithContext(cause, "key", "value")

	assert.Equal(t, CodeUnknown, err.Code())
	assert.Equal(t, "value", err.Context()["key"])
	assert.True(t, stderrors.Is(err, cause))
	assert.Nil(t, WithContext(nil, "key", "value"))
}

func TestWithContextMap_Overrides(t *testing.T) {
	err := WithContext(New(CodeCache, "miss"), "reason", "missing")
	err = WithContextMap(err, map[string]interface{}{"reason": "stale", "commit": "abc1234"})

	assert.Equal(t, "stale", err.Context()["reason"])
	assert.Equal(t, "abc1234", err.Context()["commit"])
	assert.True(t, err.Classification().IsRecoverable())
}

func TestWithClassification(t *testing.T) {
	err := WithClassification(New(CodeInvalidConfig, "bad cache dir"), ClassificationRecoverable)

	assert.Equal(t, CodeInvalidConfig, err.Code())
	assert.True(t, IsRecoverable(err))
	assert.Nil(t, WithClassification(nil, ClassificationFatal))
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"nil", nil, CodeUnknown},
		{"standard error", stderrors.New("x"), CodeUnknown},
		{"platform error", New(CodeRepository, "x"), CodeRepository},
		{"outermost wins", Wrap(New(CodeNotFound, "x"), CodeRepository, "y"), CodeRepository},
		{"fmt wrapped", fmt.Errorf("ctx: %w", New(CodeVersionParse, "x")), CodeVersionParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetCode(tt.err))
		})
	}
}

func TestHasCode(t *testing.T) {
	err := Wrap(fmt.Errorf("ctx: %w", New(CodeNotFound, "reference not found")), CodeRepository, "no HEAD")

	assert.True(t, HasCode(err, CodeRepository))
	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeCache))
	assert.False(t, HasCode(nil, CodeCache))
}

func TestIsHelpers(t *testing.T) {
	assert.True(t, IsRepositoryError(New(CodeRepository, "x")))
	assert.False(t, IsRepositoryError(New(CodeVersionParse, "x")))
	assert.True(t, IsVersionParseError(fmt.Errorf("wrapped: %w", New(CodeVersionParse, "x"))))
	assert.False(t, IsRecoverable(nil))
	assert.False(t, IsRecoverable(stderrors.New("x")))
	assert.True(t, IsRecoverable(New(CodeCache, "x")))

	var platformErr PlatformError
	assert.True(t, As(New(CodeCache, "x"), &platformErr))
	sentinel := New(CodeRepository, "sentinel")
	assert.True(t, Is(Wrap(sentinel, CodeInternal, "outer"), sentinel))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, ExitOK},
		{"repository", New(CodeRepository, "x"), ExitRepository},
		{"version parse", fmt.Errorf("resolve: %w", New(CodeVersionParse, "x")), ExitVersionParse},
		{"config", New(CodeInvalidConfig, "x"), ExitOther},
		{"plain", stderrors.New("x"), ExitOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
