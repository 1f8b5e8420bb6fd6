package mimetypes

import "mime"

type MIME string

const (
	Unknown MIME = "unknown"

	AudioWAV  MIME = "audio/wav"
	AudioXWAV MIME = "audio/x-wav"

	ApplicationXML MIME = "application/xml"
	TextXML        MIME = "text/xml"
	TextPlain      MIME = "text/plain"
)

// Matches reports whether a sniffed media type (parameters allowed) equals expected.
func Matches(detected string, expected MIME) (MIME, bool) {
	mt, _, err := mime.ParseMediaType(detected)
	if err != nil {
		return Unknown, false
	}
	return expected, mt == string(expected)
}

// MatchesAny returns the first expected type the sniffed media type equals.
func MatchesAny(detected string, expected ...MIME) (MIME, bool) {
	for _, e := range expected {
		if m, ok := Matches(detected, e); ok {
			return m, true
		}
	}
	return Unknown, false
}

// WAV lists the media types a RIFF/WAVE recording may be sniffed as.
func WAV() []MIME {
	return []MIME{AudioWAV, AudioXWAV}
}

// Annotation lists the media types an Annotation.xml may be sniffed as. A
// document without an XML declaration is only recognised as plain text.
func Annotation() []MIME {
	return []MIME{TextXML, ApplicationXML, TextPlain}
}
