package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/spetersoncode/a2ui"
)

const baseSchema = `{
  "type": "object",
  "properties": {
    "beginRendering": {"type": "object"},
    "surfaceUpdate": {
      "type": "object",
      "properties": {
        "surfaceId": {"type": "string"},
        "components": {
          "type": "array",
          "items": {
            "type": "object",
            "properties": {
              "id": {"type": "string"},
              "component": {"type": "object", "properties": {"Placeholder": {}}}
            }
          }
        }
      }
    }
  }
}`

func textSchema() json.RawMessage {
	return Object().
		Field("type", String().Required()).
		Field("text", String().Required()).
		MustBuild()
}

func TestBuilder(t *testing.T) {
	t.Run("object with required and optional fields", func(t *testing.T) {
		raw, err := Object().
			Desc("args").
			Field("a2ui_json", String().Desc("payload").Required()).
			Field("verbose", Bool()).
			Closed().
			Build()
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "object", got["type"])
		assert.Equal(t, "args", got["description"])
		assert.Equal(t, []any{"a2ui_json"}, got["required"])
		assert.Equal(t, false, got["additionalProperties"])
		props := got["properties"].(map[string]any)
		assert.Contains(t, props, "verbose")
	})

	t.Run("array with enum items", func(t *testing.T) {
		raw, err := Array(String().Enum("a", "b")).MinItems(1).Build()
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"array","items":{"type":"string","enum":["a","b"]},"minItems":1}`, string(raw))
	})

	t.Run("array without items", func(t *testing.T) {
		_, err := Array(nil).Build()
		assert.True(t, errors.Is(err, ErrNilItems))
	})

	t.Run("field on non-object", func(t *testing.T) {
		_, err := String().Field("x", String()).Build()
		assert.True(t, errors.Is(err, ErrNotObject))
	})

	t.Run("required field is listed once", func(t *testing.T) {
		raw := Object().
			Field("a", String().Required()).
			Field("a", String().Required()).
			MustBuild()
		assert.Equal(t, `["a"]`, gjson.GetBytes(raw, "required").Raw)
	})

	t.Run("MustBuild panics on error", func(t *testing.T) {
		assert.Panics(t, func() { Array(nil).MustBuild() })
	})
}

func TestWrap(t *testing.T) {
	t.Run("wraps non-empty schema", func(t *testing.T) {
		s := textSchema()
		wrapped, err := Wrap(s)
		require.NoError(t, err)
		assert.Equal(t, "array", gjson.GetBytes(wrapped, "type").String())
		assert.JSONEq(t, string(s), gjson.GetBytes(wrapped, "items").Raw)
	})

	for _, empty := range []string{"", "  ", "null", "{}", "{ }"} {
		t.Run("empty "+strings.TrimSpace(empty), func(t *testing.T) {
			_, err := Wrap(json.RawMessage(empty))
			require.Error(t, err)
			assert.True(t, a2ui.IsConfiguration(err))
			assert.True(t, errors.Is(err, a2ui.ErrEmptySchema))
			assert.Equal(t, "A2UI schema is empty", err.Error())
		})
	}

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := Wrap(json.RawMessage(`{"type":`))
		assert.True(t, a2ui.IsConfiguration(err))
	})
}

func TestCompose(t *testing.T) {
	catalog := json.RawMessage(`{"Text":{"type":"object","properties":{"text":{"type":"string"}}},"Chart":{"type":"object"}}`)

	t.Run("replaces the component subtree", func(t *testing.T) {
		base := json.RawMessage(baseSchema)
		out, err := Compose(base, catalog)
		require.NoError(t, err)

		assert.JSONEq(t, string(catalog), gjson.GetBytes(out, ComponentsPath).Raw)
		assert.False(t, gjson.GetBytes(out, ComponentsPath+".Placeholder").Exists())
		assert.True(t, gjson.GetBytes(out, "properties.beginRendering").Exists())
		// base is untouched
		assert.True(t, gjson.GetBytes(base, ComponentsPath+".Placeholder").Exists())
	})

	t.Run("creates missing path", func(t *testing.T) {
		out, err := Compose(json.RawMessage(`{"type":"object"}`), catalog)
		require.NoError(t, err)
		assert.JSONEq(t, string(catalog), gjson.GetBytes(out, ComponentsPath).Raw)
	})

	t.Run("idempotent", func(t *testing.T) {
		a, err := Compose(json.RawMessage(baseSchema), catalog)
		require.NoError(t, err)
		b, err := Compose(json.RawMessage(baseSchema), catalog)
		require.NoError(t, err)
		assert.JSONEq(t, string(a), string(b))
	})

	t.Run("empty base", func(t *testing.T) {
		_, err := Compose(nil, catalog)
		assert.True(t, errors.Is(err, a2ui.ErrEmptySchema))
	})

	t.Run("invalid catalog", func(t *testing.T) {
		_, err := Compose(json.RawMessage(baseSchema), json.RawMessage(`{nope`))
		assert.True(t, a2ui.IsConfiguration(err))
	})

	t.Run("base not an object", func(t *testing.T) {
		_, err := Compose(json.RawMessage(`[1,2]`), catalog)
		assert.True(t, a2ui.IsConfiguration(err))
	})
}

func TestJSONSchemaValidator(t *testing.T) {
	v := NewValidator()
	wrapped, err := Wrap(textSchema())
	require.NoError(t, err)

	t.Run("valid list", func(t *testing.T) {
		var doc any
		require.NoError(t, json.Unmarshal([]byte(`[{"type":"Text","text":"Hello"}]`), &doc))
		violations, err := v.Validate(doc, wrapped)
		require.NoError(t, err)
		assert.Empty(t, violations)
	})

	t.Run("missing field names the field", func(t *testing.T) {
		violations, err := v.Validate(json.RawMessage(`[{"type":"Text"}]`), wrapped)
		require.NoError(t, err)
		first, ok := First(violations)
		require.True(t, ok)
		assert.Contains(t, first.String(), "text")
		assert.Equal(t, "/0", first.Location)
	})

	t.Run("non-array fails against wrapped schema", func(t *testing.T) {
		violations, err := v.Validate(map[string]any{"type": "Text", "text": "x"}, wrapped)
		require.NoError(t, err)
		assert.NotEmpty(t, violations)
	})

	t.Run("bad schema is an error", func(t *testing.T) {
		_, err := v.Validate([]any{}, json.RawMessage(`{"type":"nonsense-type"}`))
		assert.Error(t, err)
	})

	t.Run("concurrent use", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				violations, err := v.Validate(json.RawMessage(`[{"type":"Text","text":"hi"}]`), wrapped)
				assert.NoError(t, err)
				assert.Empty(t, violations)
			}()
		}
		wg.Wait()
	})
}

func TestJSONSchemaValidator_CacheIsBounded(t *testing.T) {
	v := NewValidatorSize(8)
	for i := 0; i < 50; i++ {
		s := json.RawMessage(fmt.Sprintf(`{"type":"array","items":{"type":"object","description":"inline-%d"}}`, i))
		violations, err := v.Validate(json.RawMessage(`[{}]`), s)
		require.NoError(t, err)
		assert.Empty(t, violations)
	}
	assert.Equal(t, 8, v.Cached())

	wrapped, err := Wrap(textSchema())
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := v.Validate(json.RawMessage(`[]`), wrapped)
		require.NoError(t, err)
	}
	assert.Equal(t, 8, v.Cached())

	assert.Equal(t, DefaultCacheSize, NewValidatorSize(0).cache.MaxEntries)
}

func TestFirst(t *testing.T) {
	_, ok := First(nil)
	assert.False(t, ok)

	v, ok := First([]Violation{{Message: "a"}, {Message: "b"}})
	assert.True(t, ok)
	assert.Equal(t, "a", v.String())
	assert.Equal(t, "at '/0/x': bad", Violation{Location: "/0/x", Message: "bad"}.String())
}
