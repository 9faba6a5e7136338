package granola_test

import (
	"testing"

	"github.com/fwojciec/granola"
	"github.com/stretchr/testify/assert"
)

func TestFormatTranscript(t *testing.T) {
	t.Parallel()

	t.Run("renders speakers and timestamps", func(t *testing.T) {
		t.Parallel()

		tr := &granola.Transcript{Utterances: []granola.Utterance{
			{Source: "microphone", Text: "Hello everyone.", StartTimestamp: "2025-03-03T15:00:01.250Z"},
			{Source: "system", Text: "Hi!", StartTimestamp: "garbage"},
		}}

		got := granola.FormatTranscript(tr)

		want := "# Transcript\n\n" +
			"**Microphone** [15:00:01]\n\nHello everyone.\n\n" +
			"**System**\n\nHi!\n\n"
		assert.Equal(t, want, got)
	})

	t.Run("renders placeholder for empty transcript", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "# Transcript\n\nNo transcript content available.\n", granola.FormatTranscript(nil))
	})
}
