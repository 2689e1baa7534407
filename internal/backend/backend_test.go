package backend

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestType_String_StableNames(t *testing.T) {
	assert.Equal(t, "system", System.String())
	assert.Equal(t, "high-performance-general", HighPerformanceGeneral.String())
	assert.Equal(t, "platform-secure-native", PlatformSecureNative.String())
	assert.Equal(t, "embedded-heap", EmbeddedHeap.String())
}

func TestParse_RoundTrip(t *testing.T) {
	for _, typ := range All() {
		parsed, err := Parse(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, parsed)
	}
}

func TestParse_Unknown(t *testing.T) {
	_, err := Parse("jemalloc")
	assert.Error(t, err)
}

func TestType_JSON_RoundTrip(t *testing.T) {
	data, err := json.Marshal(HighPerformanceGeneral)
	require.NoError(t, err)
	assert.Equal(t, `"high-performance-general"`, string(data))

	var typ Type
	require.NoError(t, json.Unmarshal(data, &typ))
	assert.Equal(t, HighPerformanceGeneral, typ)
}

func TestType_JSON_RejectsUnknown(t *testing.T) {
	var typ Type
	assert.Error(t, json.Unmarshal([]byte(`"tcmalloc"`), &typ))
}

func TestSet_Membership(t *testing.T) {
	s := NewSet(System, EmbeddedHeap)

	assert.True(t, s.Has(System))
	assert.True(t, s.Has(EmbeddedHeap))
	assert.False(t, s.Has(HighPerformanceGeneral))
	assert.False(t, s.Has(PlatformSecureNative))
}

func TestSet_With_DoesNotMutate(t *testing.T) {
	s := NewSet(System)
	s2 := s.With(HighPerformanceGeneral)

	assert.False(t, s.Has(HighPerformanceGeneral), "original set must be unchanged")
	assert.True(t, s2.Has(HighPerformanceGeneral))
}

func TestSet_String(t *testing.T) {
	assert.Equal(t, "none", Set(0).String())
	assert.Equal(t, "system", NewSet(System).String())
	assert.Equal(t, "system,high-performance-general", NewSet(HighPerformanceGeneral, System).String(),
		"members render in declaration order regardless of insertion order")
}

func TestSet_Slice_DeclarationOrder(t *testing.T) {
	s := NewSet(EmbeddedHeap, System, PlatformSecureNative)
	assert.Equal(t, []Type{System, PlatformSecureNative, EmbeddedHeap}, s.Slice())
}
