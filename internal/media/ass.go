package media

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Event is one subtitle line as extracted from a media file. Times are
// milliseconds from the start of the stream. Comment events are carried
// through so callers can decide whether to index them.
type Event struct {
	StartMs int64
	EndMs   int64
	Comment bool
	Text    string
}

// parseASS reads an ASS/SSA script and returns its dialogue events with
// markup stripped. Field order inside the [Events] section is taken from the
// Format line, as emitted by ffmpeg's ass muxer.
func parseASS(r io.Reader) ([]Event, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var (
		events    []Event
		inEvents  bool
		fieldIdx  map[string]int
		numFields int
	)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			inEvents = strings.EqualFold(trimmed, "[Events]")
			continue
		}
		if !inEvents || trimmed == "" {
			continue
		}

		key, rest, found := strings.Cut(trimmed, ":")
		if !found {
			continue
		}
		rest = strings.TrimLeft(rest, " ")

		switch {
		case strings.EqualFold(key, "Format"):
			names := strings.Split(rest, ",")
			fieldIdx = make(map[string]int, len(names))
			for i, name := range names {
				fieldIdx[strings.ToLower(strings.TrimSpace(name))] = i
			}
			numFields = len(names)
		case strings.EqualFold(key, "Dialogue"), strings.EqualFold(key, "Comment"):
			if fieldIdx == nil {
				return nil, fmt.Errorf("ass parse: event line before Format line")
			}
			event, err := parseASSEvent(rest, fieldIdx, numFields)
			if err != nil {
				return nil, err
			}
			event.Comment = strings.EqualFold(key, "Comment")
			events = append(events, event)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ass parse: %w", err)
	}
	return events, nil
}

func parseASSEvent(rest string, fieldIdx map[string]int, numFields int) (Event, error) {
	// The Text field is last and may contain commas, so split at most
	// numFields pieces.
	parts := strings.SplitN(rest, ",", numFields)
	if len(parts) < numFields {
		return Event{}, fmt.Errorf("ass parse: event has %d fields, want %d", len(parts), numFields)
	}

	field := func(name string) (string, error) {
		idx, ok := fieldIdx[name]
		if !ok || idx >= len(parts) {
			return "", fmt.Errorf("ass parse: missing %s field", name)
		}
		return parts[idx], nil
	}

	startRaw, err := field("start")
	if err != nil {
		return Event{}, err
	}
	endRaw, err := field("end")
	if err != nil {
		return Event{}, err
	}
	textRaw, err := field("text")
	if err != nil {
		return Event{}, err
	}

	startMs, err := parseASSTime(startRaw)
	if err != nil {
		return Event{}, err
	}
	endMs, err := parseASSTime(endRaw)
	if err != nil {
		return Event{}, err
	}

	return Event{StartMs: startMs, EndMs: endMs, Text: stripASSMarkup(textRaw)}, nil
}

// parseASSTime converts an "h:mm:ss.cc" timestamp to milliseconds.
func parseASSTime(value string) (int64, error) {
	value = strings.TrimSpace(value)
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("ass parse: bad timestamp %q", value)
	}

	hours, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("ass parse: bad timestamp %q", value)
	}
	minutes, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("ass parse: bad timestamp %q", value)
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("ass parse: bad timestamp %q", value)
	}

	ms := (hours*3600+minutes*60)*1000 + int64(seconds*1000+0.5)
	return ms, nil
}

// stripASSMarkup removes override tags and resolves escaped line breaks,
// yielding the plain dialogue text.
func stripASSMarkup(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))

	depth := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case '\\':
			if depth > 0 {
				continue
			}
			if i+1 < len(text) {
				switch text[i+1] {
				case 'N', 'n':
					sb.WriteByte('\n')
					i++
					continue
				case 'h':
					sb.WriteByte(' ')
					i++
					continue
				}
			}
			sb.WriteByte(c)
		default:
			if depth == 0 {
				sb.WriteByte(c)
			}
		}
	}
	return strings.TrimSpace(sb.String())
}
