package server

import (
	"bufio"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MKhiriev/go-pim-sync/internal/channel"
	"github.com/MKhiriev/go-pim-sync/models"
)

// Verbs and replies of the line protocol.
const (
	VerbUser = "USER"
	VerbPass = "PASS"
	VerbCall = "CALL"
	VerbNoop = "NOOP"
	VerbQuit = "QUIT"

	ReplyAuthenticated = "230 authenticated"
	ReplyNotAuthorized = "530 not authorized"
	ReplyBusy          = "421 busy"
	ReplyBye           = "221 bye"
)

// Greeting returns the first line the device sends on a connection.
func Greeting(v models.Version) string {
	return fmt.Sprintf("220 pimsync %s ready", v)
}

// Frame is one parsed protocol line.
type Frame struct {
	Verb string
	// Arg is the remainder of a USER or PASS line.
	Arg string
	// Msg is set for CALL lines.
	Msg channel.Message
}

// ParseFrame parses one line without its terminator.
func ParseFrame(line string) (Frame, error) {
	verb, rest, _ := strings.Cut(line, " ")

	switch verb {
	case VerbUser:
		if rest == "" {
			return Frame{}, fmt.Errorf("%w: USER without client id", ErrFraming)
		}
		return Frame{Verb: verb, Arg: rest}, nil
	case VerbPass:
		return Frame{Verb: verb, Arg: rest}, nil
	case VerbNoop, VerbQuit:
		if rest != "" {
			return Frame{}, fmt.Errorf("%w: %s takes no argument", ErrFraming, verb)
		}
		return Frame{Verb: verb}, nil
	case VerbCall:
		msg, err := parseCall(rest)
		if err != nil {
			return Frame{}, err
		}
		return Frame{Verb: verb, Msg: msg}, nil
	default:
		return Frame{}, fmt.Errorf("%w: unknown verb %q", ErrFraming, verb)
	}
}

func parseCall(rest string) (channel.Message, error) {
	fields := strings.Split(rest, " ")
	if len(fields) < 2 || fields[0] == "" || fields[1] == "" {
		return channel.Message{}, fmt.Errorf("%w: CALL needs a channel and a message", ErrFraming)
	}

	msg := channel.Message{Channel: fields[0], Name: fields[1]}
	for i, field := range fields[2:] {
		arg, err := base64.StdEncoding.DecodeString(field)
		if err != nil {
			return channel.Message{}, fmt.Errorf("%w: argument %d of %s: %w", ErrFraming, i, msg.Name, err)
		}
		msg.Args = append(msg.Args, string(arg))
	}
	return msg, nil
}

// FormatCall renders msg as a CALL line without terminator.
func FormatCall(msg channel.Message) string {
	var b strings.Builder
	b.WriteString(VerbCall)
	b.WriteByte(' ')
	b.WriteString(msg.Channel)
	b.WriteByte(' ')
	b.WriteString(msg.Name)
	for _, arg := range msg.Args {
		b.WriteByte(' ')
		b.WriteString(base64.StdEncoding.EncodeToString([]byte(arg)))
	}
	return b.String()
}

// ReadLine reads one '\n' terminated line from r, which must have been
// created with a buffer of the maximum frame size. A trailing "\r" is
// dropped. A line that does not fit the buffer is a framing error.
func ReadLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadSlice('\n')
	switch {
	case errors.Is(err, bufio.ErrBufferFull):
		return "", fmt.Errorf("%w: line exceeds %d bytes", ErrFraming, r.Size())
	case errors.Is(err, io.EOF) && len(line) > 0:
		return "", fmt.Errorf("%w: unterminated line", ErrFraming)
	case err != nil:
		return "", err
	}

	line = line[:len(line)-1]
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return string(line), nil
}

// WriteLine writes s followed by '\n'.
func WriteLine(w io.Writer, s string) error {
	_, err := io.WriteString(w, s+"\n")
	return err
}
