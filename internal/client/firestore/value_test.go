package firestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_WholeValuedFloatCollapsesToInteger(t *testing.T) {
	t.Parallel()

	v := Encode(float64(3))
	require.NotNil(t, v.IntegerValue)
	assert.Equal(t, "3", *v.IntegerValue)
	assert.Nil(t, v.DoubleValue)
}

func TestEncode_FractionalFloatStaysDouble(t *testing.T) {
	t.Parallel()

	v := Encode(3.5)
	require.NotNil(t, v.DoubleValue)
	assert.InEpsilon(t, 3.5, *v.DoubleValue, 0)
}

func TestEncode_DoubleOverridesWholeNumberCollapse(t *testing.T) {
	t.Parallel()

	v := Encode(Double(3))
	require.NotNil(t, v.DoubleValue)
	assert.InEpsilon(t, 3.0, *v.DoubleValue, 0)
	assert.Nil(t, v.IntegerValue)
}

func TestEncode_Int64(t *testing.T) {
	t.Parallel()

	v := Encode(int64(42))
	require.NotNil(t, v.IntegerValue)
	assert.Equal(t, "42", *v.IntegerValue)
}

func TestDecode_RoundTripsEncodedDouble(t *testing.T) {
	t.Parallel()

	v := Encode(Double(0))
	assert.InDelta(t, 0.0, Decode(v), 0)
}
