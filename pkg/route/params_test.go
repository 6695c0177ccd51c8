package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsDecode(t *testing.T) {
	type target struct {
		ID      int      `param:"id"`
		Page    uint8    `param:"page"`
		Ratio   float64  `param:"ratio"`
		Draft   bool     `param:"draft"`
		Slug    string   `param:"slug"`
		Rest    []string `param:"*"`
		Ignored string
	}

	var got target
	err := Params{
		"id":    "42",
		"page":  "3",
		"ratio": "0.5",
		"draft": "true",
		"slug":  "hello",
		"*":     "a/b/c",
	}.Decode(&got)
	require.NoError(t, err)

	assert.Equal(t, target{
		ID:    42,
		Page:  3,
		Ratio: 0.5,
		Draft: true,
		Slug:  "hello",
		Rest:  []string{"a", "b", "c"},
	}, got)
}

func TestParamsDecodeEmptySplat(t *testing.T) {
	var got struct {
		Rest []string `param:"*"`
	}
	require.NoError(t, Params{"*": ""}.Decode(&got))
	assert.Nil(t, got.Rest)
}

func TestParamsDecodeErrors(t *testing.T) {
	var notPtr struct{}
	assert.Error(t, Params{}.Decode(notPtr))

	n := 3
	assert.Error(t, Params{}.Decode(&n))

	var bad struct {
		ID int `param:"id"`
	}
	err := Params{"id": "abc"}.Decode(&bad)
	assert.ErrorContains(t, err, `parsing param "id"`)

	var overflow struct {
		Small int8 `param:"n"`
	}
	assert.Error(t, Params{"n": "300"}.Decode(&overflow))

	var unsupported struct {
		M map[string]string `param:"m"`
	}
	assert.Error(t, Params{"m": "x"}.Decode(&unsupported))

	assert.NoError(t, Params{}.Decode(nil))
}

func TestValidateParam(t *testing.T) {
	assert.NoError(t, ValidateParam("12", "int"))
	assert.Error(t, ValidateParam("-1", "uint"))
	assert.Error(t, ValidateParam("x", "int"))
	assert.NoError(t, ValidateParam("123e4567-e89b-12d3-a456-426614174000", "uuid"))
	assert.Error(t, ValidateParam("not-a-uuid", "uuid"))
	assert.NoError(t, ValidateParam("anything", "string"))
	assert.NoError(t, ValidateParam("anything", "custom"))
}

func TestParamsClone(t *testing.T) {
	var nilParams Params
	c := nilParams.Clone()
	assert.NotNil(t, c)

	orig := Params{"a": "1"}
	c = orig.Clone()
	c["a"] = "2"
	assert.Equal(t, "1", orig["a"])
}
