package callback

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/shrinex/warden/authc"
	"golang.org/x/term"
)

type (
	// TerminalHandler prompts on out and reads answers from in. Secrets are
	// read without echo when in is a terminal. Input is read unbuffered so
	// no copy of a secret outlives the callback.
	TerminalHandler struct {
		in       io.Reader
		out      io.Writer
		fd       int
		terminal bool
	}
)

var _ authc.CallbackHandler = (*TerminalHandler)(nil)

// NewTerminalHandler reads from in, switching to no-echo input for
// secrets if in is a terminal
func NewTerminalHandler(in *os.File, out io.Writer) *TerminalHandler {
	fd := int(in.Fd())
	return &TerminalHandler{
		in:       in,
		out:      out,
		fd:       fd,
		terminal: term.IsTerminal(fd),
	}
}

// NewReaderHandler reads every answer line by line from in
func NewReaderHandler(in io.Reader, out io.Writer) *TerminalHandler {
	return &TerminalHandler{in: in, out: out, fd: -1}
}

func (h *TerminalHandler) Handle(ctx context.Context, callbacks ...authc.Callback) error {
	for _, cb := range callbacks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		switch c := cb.(type) {
		case *authc.NameCallback:
			if err := h.prompt(c.Prompt()); err != nil {
				return err
			}
			line, err := h.readLine()
			if err != nil {
				return errors.Wrap(err, "read name")
			}
			c.SetName(strings.TrimSpace(string(line)))
		case *authc.PasswordCallback:
			if err := h.prompt(c.Prompt()); err != nil {
				return err
			}
			secret, err := h.readSecret(c.EchoOn())
			if err != nil {
				return errors.Wrap(err, "read password")
			}
			c.SetPassword(secret)
			clear(secret)
		default:
			return &authc.UnsupportedCallbackError{Callback: cb}
		}
	}

	return nil
}

//=====================================
//		    Private
//=====================================

func (h *TerminalHandler) prompt(prompt string) error {
	_, err := fmt.Fprintf(h.out, "%s: ", prompt)
	return errors.Wrap(err, "write prompt")
}

func (h *TerminalHandler) readSecret(echo bool) ([]rune, error) {
	if !h.terminal || echo {
		line, err := h.readLine()
		if err != nil {
			return nil, err
		}
		defer clear(line)
		return toRunes(line), nil
	}

	raw, err := term.ReadPassword(h.fd)
	// the newline typed by the user was not echoed
	_, _ = fmt.Fprintln(h.out)
	if err != nil {
		return nil, err
	}
	defer clear(raw)
	return toRunes(raw), nil
}

// readLine returns the next line without its terminator, reading one byte
// at a time and wiping every buffer it outgrows. The returned slice is
// owned by the caller.
func (h *TerminalHandler) readLine() ([]byte, error) {
	var (
		line []byte
		b    [1]byte
	)
	defer clear(b[:])

	for {
		n, err := h.in.Read(b[:])
		if n == 1 {
			if b[0] == '\n' {
				return bytes.TrimRight(line, "\r"), nil
			}
			line = appendWiping(line, b[0])
			continue
		}
		if err == io.EOF && len(line) != 0 {
			return bytes.TrimRight(line, "\r"), nil
		}
		if err != nil {
			clear(line)
			return nil, err
		}
	}
}

func appendWiping(buf []byte, c byte) []byte {
	if len(buf) < cap(buf) {
		return append(buf, c)
	}

	grown := make([]byte, len(buf), 2*cap(buf)+16)
	copy(grown, buf)
	clear(buf)
	return append(grown, c)
}

func toRunes(b []byte) []rune {
	result := make([]rune, 0, utf8.RuneCount(b))
	for len(b) != 0 {
		r, size := utf8.DecodeRune(b)
		result = append(result, r)
		b = b[size:]
	}
	return result
}
