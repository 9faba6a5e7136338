package granola

import (
	"strings"
	"time"
)

// FormatTranscript renders a transcript as markdown, one block per
// utterance labelled with its speaker and UTC start time.
func FormatTranscript(t *Transcript) string {
	if t == nil || len(t.Utterances) == 0 {
		return "# Transcript\n\nNo transcript content available.\n"
	}

	var b strings.Builder
	b.WriteString("# Transcript\n\n")
	for _, u := range t.Utterances {
		b.WriteString("**")
		b.WriteString(SpeakerLabel(u.Source))
		b.WriteString("**")
		if ts, ok := ParseTime(u.StartTimestamp); ok {
			b.WriteString(" [")
			b.WriteString(ts.Format(time.TimeOnly))
			b.WriteString("]")
		}
		b.WriteString("\n\n")
		b.WriteString(u.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// SpeakerLabel names the speaker of an utterance source. Audio captured
// from the microphone is the local user; everything else is the system
// audio of the other participants.
func SpeakerLabel(source string) string {
	if source == "microphone" {
		return "Microphone"
	}
	return "System"
}
