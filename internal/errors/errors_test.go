package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorString(t *testing.T) {
	e := &Error{Kind: KindVCSIO, Op: "tagscan.Scan", Message: "boom", Err: fmt.Errorf("underlying")}
	assert.Equal(t, "tagscan.Scan: boom: underlying", e.Error())

	e2 := &Error{Kind: KindVCSIO, Message: "boom"}
	assert.Equal(t, "boom", e2.Error())
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindConfigParse:          "config-parse",
		KindDependencyCycle:      "dependency-cycle",
		KindPausedState:          "paused-state",
		KindMissingPauseFile:     "missing-pause-file",
		KindRestrictionViolation: "restriction-violation",
		Kind(200):                "unknown",
	}
	for k, want := range cases {
		assert.Equal(t, want, k.String())
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	underlying := errors.New("disk full")
	e := Wrap(underlying, KindVCSIO, "historical.SliceTo", "could not read blob")
	require.ErrorIs(t, e, underlying)
	assert.Equal(t, KindVCSIO, GetKind(e))
	assert.True(t, IsKind(e, KindVCSIO))
	assert.False(t, IsKind(e, KindConfigParse))
}

func TestIsMatchesByKindAndOp(t *testing.T) {
	a := DependencyCycle("plan.Propagate", "cycle detected")
	sentinel := &Error{Kind: KindDependencyCycle}
	assert.True(t, a.Is(sentinel))

	opSentinel := &Error{Kind: KindDependencyCycle, Op: "plan.Propagate"}
	assert.True(t, a.Is(opSentinel))

	wrongOp := &Error{Kind: KindDependencyCycle, Op: "other.Op"}
	assert.False(t, a.Is(wrongOp))
}

func TestWithDetail(t *testing.T) {
	e := TagResolve("tagscan.Scan", "ambiguous peel").WithDetail("tag", "v1.2.3")
	assert.Equal(t, "v1.2.3", e.Details["tag"])
}

func TestGetKindOnPlainError(t *testing.T) {
	assert.Equal(t, KindUnknown, GetKind(errors.New("plain")))
	assert.False(t, IsKind(errors.New("plain"), KindVCSIO))
}
