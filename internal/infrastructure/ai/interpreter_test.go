package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/doeshing/aicmd-go/internal/domain"
)

func feedAll(in *Interpreter, chunks ...string) []string {
	var emitted []string
	for _, chunk := range chunks {
		if out := in.Feed(chunk); out != "" {
			emitted = append(emitted, out)
		}
	}
	if out, _ := in.Finish(); out != "" {
		emitted = append(emitted, out)
	}
	return emitted
}

func TestInterpreterOpenAndCloseInDifferentChunks(t *testing.T) {
	in := NewInterpreter("<think>", "</think>")

	emitted := feedAll(in, "before", "<think>hidden", "more hidden</think>after")

	require.Equal(t, []string{"before", "after"}, emitted)
	require.Equal(t, "beforeafter", in.Visible())
	require.Equal(t, "hiddenmore hidden", in.Suppressed())
	require.Equal(t, domain.ModeVisible, in.Mode())
}

func TestInterpreterMarkersInOneChunk(t *testing.T) {
	in := NewInterpreter("<think>", "</think>")

	emitted := feedAll(in, "a<think>x</think>b<think>y</think>c")

	require.Equal(t, []string{"abc"}, emitted)
	require.Equal(t, "xy", in.Suppressed())
}

func TestInterpreterMarkerSplitAcrossChunks(t *testing.T) {
	in := NewInterpreter("<think>", "</think>")

	emitted := feedAll(in, "ok <th", "ink>secret</thi", "nk> done")

	require.Equal(t, []string{"ok ", " done"}, emitted)
	require.Equal(t, "secret", in.Suppressed())
}

func TestInterpreterHoldsBackOnlyMarkerPrefix(t *testing.T) {
	in := NewInterpreter("<think>", "</think>")

	require.Equal(t, "a ", in.Feed("a <"))
	require.Equal(t, "<b", in.Feed("b"))
	require.Equal(t, " 1 < 2", in.Feed(" 1 < 2"))
}

func TestInterpreterFinishFlushesPendingText(t *testing.T) {
	in := NewInterpreter("<think>", "</think>")

	require.Equal(t, "value ", in.Feed("value <t"))
	out, err := in.Finish()
	require.NoError(t, err)
	require.Equal(t, "<t", out)
	require.Equal(t, "value <t", in.Visible())
}

func TestInterpreterEmptyResponse(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
	}{
		{name: "no chunks"},
		{name: "only whitespace", chunks: []string{"  ", "\n"}},
		{name: "only reasoning", chunks: []string{"<think>all of it</think>"}},
		{name: "unclosed reasoning", chunks: []string{"<think>never closes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := NewInterpreter("", "")
			for _, chunk := range tt.chunks {
				in.Feed(chunk)
			}
			_, err := in.Finish()
			require.True(t, errors.Is(err, domain.ErrEmptyResponse), "got %v", err)
		})
	}
}

func TestPartialMarkerSuffix(t *testing.T) {
	require.Equal(t, 0, partialMarkerSuffix("hello", "<think>"))
	require.Equal(t, 1, partialMarkerSuffix("hello<", "<think>"))
	require.Equal(t, 6, partialMarkerSuffix("x<think", "<think>"))
	require.Equal(t, 2, partialMarkerSuffix("<t", "<think>"))
}
