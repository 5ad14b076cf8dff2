package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	require.Equal(t, "Rex & friends", Text("  <b>Rex</b> & friends\x00 "))
	require.Equal(t, "", Text(`<script>alert("x")</script>`))
	require.Equal(t, "I'd love a \"dog\"", Text("I'd love a \"dog\""))
}

func TestText_EncodedMarkupIsStripped(t *testing.T) {
	out := Text("&lt;script&gt;alert(1)&lt;/script&gt; I would love to adopt")
	require.Equal(t, "I would love to adopt", out)

	for _, input := range []string{
		"&lt;img src=x onerror=alert(1)&gt;hello",
		"&amp;lt;b&amp;gt;bold&amp;lt;/b&amp;gt;",
		"<<b>script>alert(1)<</b>/script>",
		"5 &lt; 6",
	} {
		out := Text(input)
		require.NotContains(t, out, "<", input)
		require.NotContains(t, out, ">", input)
	}
}

func TestText_DoesNotTruncate(t *testing.T) {
	require.Len(t, []rune(Text(strings.Repeat("é", 5000))), 5000)
}
