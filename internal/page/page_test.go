package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Defaults(t *testing.T) {
	b, err := Render(Data{})
	require.NoError(t, err)

	html := string(b)
	assert.Contains(t, html, "<title>My App</title>")
	assert.Contains(t, html, "Welcome to bedrockapp!")
	assert.Contains(t, html, "Count: 0")
}

func TestRender_EscapesInput(t *testing.T) {
	b, err := Render(Data{Title: "<script>x</script>"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "<title><script>")
}
