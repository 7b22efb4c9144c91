package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Basics(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render([]byte("# Title\n\nSome **bold** text."))
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, `<h1 id="title">Title</h1>`)
	assert.Contains(t, html, "<strong>bold</strong>")
}

func TestRender_GFM(t *testing.T) {
	r := NewRenderer()

	src := "| a | b |\n|---|---|\n| 1 | 2 |\n\n- [x] done\n\n~~gone~~\n\nhttps://example.com"
	out, err := r.Render([]byte(src))
	require.NoError(t, err)

	html := string(out)
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, `type="checkbox"`)
	assert.Contains(t, html, "<del>gone</del>")
	assert.Contains(t, html, `<a href="https://example.com">`)
}

func TestRender_RawHTMLPassesThrough(t *testing.T) {
	r := NewRenderer()

	out, err := r.Render([]byte(`<p align="center"><img src="logo.png"></p>`))
	require.NoError(t, err)
	assert.Contains(t, string(out), `<img src="logo.png">`)
}

func TestRender_Empty(t *testing.T) {
	out, err := NewRenderer().Render(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
