package bundle

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeedsReservedKeys(t *testing.T) {
	b := New()
	out, err := b.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"meta":{},"model":{}}`, string(out))
	assert.Equal(t, 0, b.Messages())
}

func TestSetNestsDottedKeys(t *testing.T) {
	b := New()
	b.Set("title", "Hello")
	b.Set("model.input.placeholder", "Name")
	b.Set("msg.nested", []any{"a {1}", "{{x}}"})

	out, err := b.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"meta":{},"model":{"input":{"placeholder":"Name"}},"title":"Hello","msg":{"nested":["a {1}","{{x}}"]}}`, string(out))

	v, ok := b.Get("msg.nested.1")
	require.True(t, ok)
	assert.Equal(t, "{{x}}", v)

	_, ok = b.Get("msg.nested.2")
	assert.False(t, ok)
	_, ok = b.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 2, b.Messages())
}

func TestSetReplacesScalarOnPath(t *testing.T) {
	b := New()
	b.Set("a", "scalar")
	b.Set("a.b", "deep")

	v, ok := b.Get("a.b")
	require.True(t, ok)
	assert.Equal(t, "deep", v)
}

func TestFormatDoesNotEscapeHTML(t *testing.T) {
	b := New()
	b.Set("link", "<a href=\"x\">&</a>")

	out, err := b.Format(2)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"meta\": {},\n  \"model\": {},\n  \"link\": \"<a href=\\\"x\\\">&</a>\"\n}", string(out))
}

func TestFormatWidth(t *testing.T) {
	b := New()
	b.Set("items", []any{"one", "two"})

	out, err := b.Format(4)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"meta\": {},\n    \"model\": {},\n    \"items\": [\n        \"one\",\n        \"two\"\n    ]\n}", string(out))

	compact, err := b.Format(0)
	require.NoError(t, err)
	assert.Equal(t, `{"meta":{},"model":{},"items":["one","two"]}`, string(compact))
}

func TestFormatKeepsNumberLiterals(t *testing.T) {
	b, err := Decode([]byte(`{"a":1.50,"b":1e3,"c":0.10,"d":[2.00,-0.0]}`))
	require.NoError(t, err)

	compact, err := b.Format(0)
	require.NoError(t, err)
	assert.Equal(t, `{"meta":{},"model":{},"a":1.50,"b":1e3,"c":0.10,"d":[2.00,-0.0]}`, string(compact))

	indented, err := b.Format(2)
	require.NoError(t, err)
	var squeezed bytes.Buffer
	require.NoError(t, json.Compact(&squeezed, indented))
	assert.Equal(t, string(compact), squeezed.String())
}

func TestDecodePreservesOrder(t *testing.T) {
	src := `{"meta":{},"model":{"x":{"cols":[{"label":"Year","type":"number"}]}},"zeta":"z","alpha":"a < b","n":12,"t":true,"nil":null}`
	b, err := Decode([]byte(src))
	require.NoError(t, err)

	out, err := b.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"meta":{},"model":{"x":{"cols":[{"label":"Year","type":"number"}]}},"zeta":"z","alpha":"a < b","n":12,"t":true,"nil":null}`, string(out))

	n, ok := b.Get("n")
	require.True(t, ok)
	assert.Equal(t, json.Number("12"), n)
}

func TestDecodeAddsMissingReservedKeys(t *testing.T) {
	b, err := Decode([]byte(`{"greeting":"hi"}`))
	require.NoError(t, err)

	out, err := b.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"meta":{},"model":{},"greeting":"hi"}`, string(out))
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{name: "malformed", data: `{"a":`, want: ErrInvalidJSON},
		{name: "trailing garbage", data: `{"a":1} x`, want: ErrInvalidJSON},
		{name: "array document", data: `["a"]`, want: ErrNotObject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecodeJSONScalars(t *testing.T) {
	v, err := DecodeJSON([]byte(` "a\nb" `))
	require.NoError(t, err)
	assert.Equal(t, "a\nb", v)

	v, err = DecodeJSON([]byte(`[1, "two", false, null, {"k": []}]`))
	require.NoError(t, err)
	arr, ok := v.([]any)
	require.True(t, ok)
	require.Len(t, arr, 5)
	assert.Equal(t, json.Number("1"), arr[0])
	assert.Equal(t, "two", arr[1])
	assert.Equal(t, false, arr[2])
	assert.Nil(t, arr[3])
	obj, ok := arr[4].(*Object)
	require.True(t, ok)
	k, _ := obj.Get("k")
	assert.Equal(t, []any{}, k)
}

func TestLeavesAndPlain(t *testing.T) {
	b := New()
	b.Set("title", "Hi")
	b.Set("model.chart.options", NewObject())
	b.Set("model.chart.cols", []any{"a"})

	leaves := b.Leaves()
	keys := make([]string, 0, len(leaves))
	for _, l := range leaves {
		keys = append(keys, l.Key)
	}
	assert.Equal(t, []string{"model.chart.cols", "title"}, keys)

	plain := b.Plain()
	model := plain["model"].(map[string]any)
	chart := model["chart"].(map[string]any)
	assert.Equal(t, []any{"a"}, chart["cols"])
	assert.Equal(t, "Hi", plain["title"])
}
