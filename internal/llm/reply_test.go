package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanMarkdownWrapper(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"chatter", "Sure! Here it is: {\"a\":1} Hope that helps.", `{"a":1}`},
		{"whitespace", "  \n{\"a\":1}\n ", `{"a":1}`},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanMarkdownWrapper(tt.input))
		})
	}
}

func TestDecodeObject(t *testing.T) {
	obj, err := DecodeObject(`{"overview": "ok", "strengths": ["a", "b"], "score": 4.5}`)
	require.NoError(t, err)

	s, ok := StringField(obj, "overview")
	assert.True(t, ok)
	assert.Equal(t, "ok", s)

	list, ok := StringSliceField(obj, "strengths")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, list)

	n, ok := NumberField(obj, "score")
	assert.True(t, ok)
	assert.InDelta(t, 4.5, n, 0.0001)

	_, ok = StringField(obj, "missing")
	assert.False(t, ok)

	_, err = DecodeObject("[1,2]")
	assert.ErrorIs(t, err, ErrNotAnObject)

	_, err = DecodeObject("")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = DecodeObject("{not json}")
	assert.Error(t, err)
}

func TestFieldKindChecks(t *testing.T) {
	obj := map[string]any{
		"blank":  "   ",
		"mixed":  []any{"a", 1.0},
		"number": "42",
	}

	_, ok := StringField(obj, "blank")
	assert.False(t, ok)

	_, ok = StringSliceField(obj, "mixed")
	assert.False(t, ok)

	_, ok = NumberField(obj, "number")
	assert.False(t, ok)
}
