package pack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetDefinitionValidate(t *testing.T) {
	t.Run("valid definition", func(t *testing.T) {
		d := AssetDefinition{Name: "profile", Required: true, Blueprint: "profile"}
		assert.NoError(t, d.Validate())
	})

	t.Run("empty name", func(t *testing.T) {
		d := AssetDefinition{Blueprint: "x"}
		assert.Error(t, d.Validate())
	})

	t.Run("empty blueprint", func(t *testing.T) {
		d := AssetDefinition{Name: "profile"}
		assert.Error(t, d.Validate())
	})
}

func TestAssetResults(t *testing.T) {
	t.Run("insertion order preserved", func(t *testing.T) {
		r := NewAssetResults()
		require.NoError(t, r.Set("profile", "p"))
		require.NoError(t, r.Set("appearance", "a"))
		require.NoError(t, r.Set("voice", "v"))

		assert.Equal(t, []string{"profile", "appearance", "voice"}, r.Names())
		assert.Equal(t, 3, r.Len())
	})

	t.Run("keys are write-once", func(t *testing.T) {
		r := NewAssetResults()
		require.NoError(t, r.Set("profile", "first"))
		err := r.Set("profile", "second")
		require.Error(t, err)

		content, ok := r.Get("profile")
		require.True(t, ok)
		assert.Equal(t, "first", content)
	})

	t.Run("get missing key", func(t *testing.T) {
		r := NewAssetResults()
		_, ok := r.Get("ghost")
		assert.False(t, ok)
	})
}
