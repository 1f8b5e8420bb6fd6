package mimetypes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name     string
		detected string
		expected MIME
		want     bool
	}{
		{"WAV", "audio/wav", AudioWAV, true},
		{"x-wav alias", "audio/x-wav", AudioXWAV, true},
		{"XML with charset", "text/xml; charset=utf-8", TextXML, true},
		{"XML detected as text/xml", "text/xml; charset=utf-8", ApplicationXML, false},

		// Fallback / mismatch
		{"Mismatch", "audio/mpeg", AudioWAV, false},
		{"Octet stream", "application/octet-stream", AudioWAV, false},
		{"Invalid MIME", "not a mime", AudioWAV, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Matches(tt.detected, tt.expected)
			require.Equal(t, tt.want, ok)
		})
	}
}

func TestMatchesAny(t *testing.T) {
	req := require.New(t)

	got, ok := MatchesAny("audio/x-wav", WAV()...)
	req.True(ok)
	req.Equal(AudioXWAV, got)

	got, ok = MatchesAny("audio/flac", WAV()...)
	req.False(ok)
	req.Equal(Unknown, got)
}

func TestMatchesAny_Annotation(t *testing.T) {
	req := require.New(t)

	got, ok := MatchesAny("text/xml; charset=utf-8", Annotation()...)
	req.True(ok)
	req.Equal(TextXML, got)

	_, ok = MatchesAny("text/plain; charset=utf-8", Annotation()...)
	req.True(ok)

	_, ok = MatchesAny("image/png", Annotation()...)
	req.False(ok)
}
