package markdown

import (
	"strings"

	domainerrors "github.com/leengari/mdtable/internal/domain/errors"
)

// DefaultHeadingMarker is the prefix that starts any markdown headline
const DefaultHeadingMarker = "#"

// ExtractSection returns the lines that follow the first line starting with
// headline, up to (not including) the next line starting with marker.
// Lines keep their original terminators.
func ExtractSection(document, headline, marker string) (string, error) {
	if marker == "" {
		marker = DefaultHeadingMarker
	}
	if headline == "" {
		return "", &domainerrors.SectionNotFoundError{Headline: headline, Marker: marker, Reason: "empty headline"}
	}

	var b strings.Builder
	started := false
	lines := 0

	for _, line := range strings.SplitAfter(document, "\n") {
		if line == "" {
			continue
		}
		if !started {
			started = strings.HasPrefix(line, headline)
			continue
		}
		if strings.HasPrefix(line, marker) {
			break
		}
		b.WriteString(line)
		lines++
	}

	if lines == 0 {
		reason := "headline not present"
		if started {
			reason = "no lines before the next headline"
		}
		return "", &domainerrors.SectionNotFoundError{Headline: headline, Marker: marker, Reason: reason}
	}

	return b.String(), nil
}
