package intake

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomIssuer(t *testing.T) {
	t.Run("CodeShape", func(t *testing.T) {
		issuer := NewRandomIssuer()
		for range 200 {
			code, err := issuer.Code()
			require.NoError(t, err)
			assert.Regexp(t, `^[0-9]{6}$`, code)
		}
	})

	t.Run("PublicIDShape", func(t *testing.T) {
		issuer := NewRandomIssuer()
		for range 200 {
			id, err := issuer.PublicID()
			require.NoError(t, err)
			assert.Regexp(t, `^[A-Z0-9]{8}$`, id)
		}
	})

	t.Run("LeadingZerosKept", func(t *testing.T) {
		issuer := &RandomIssuer{source: bytes.NewReader(make([]byte, 64))}

		code, err := issuer.Code()
		require.NoError(t, err)
		assert.Equal(t, "000000", code, "zero draws must still produce six digits")
	})

	t.Run("SourceExhausted", func(t *testing.T) {
		issuer := &RandomIssuer{source: bytes.NewReader(nil)}

		_, err := issuer.PublicID()
		assert.Error(t, err)
	})

	t.Run("CodesVary", func(t *testing.T) {
		issuer := NewRandomIssuer()
		seen := map[string]struct{}{}
		for range 50 {
			code, err := issuer.Code()
			require.NoError(t, err)
			seen[code] = struct{}{}
		}
		assert.Greater(t, len(seen), 40, "codes should not repeat often")
	})
}
