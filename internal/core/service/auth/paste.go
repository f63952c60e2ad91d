package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// PasteReceiver asks the user to open the authorization URL and paste back the URL the browser was redirected to
type PasteReceiver struct {
	in  io.Reader
	out io.Writer
}

// NewPasteReceiver creates a receiver reading the pasted URL from in
func NewPasteReceiver(in io.Reader, out io.Writer) *PasteReceiver {
	return &PasteReceiver{in: in, out: out}
}

type readResult struct {
	line string
	err  error
}

// Receive prints authURL and reads a single line
func (p *PasteReceiver) Receive(ctx context.Context, authURL string) (*url.URL, error) {
	fmt.Fprintf(p.out, "Visit the following URL to authorize your App on behalf of your X handle in a browser:\n%s\n", authURL)
	fmt.Fprint(p.out, "Paste the full redirect URL here: ")

	lines := make(chan readResult, 1)
	go func() {
		line, err := bufio.NewReader(p.in).ReadString('\n')
		lines <- readResult{line: line, err: err}
	}()

	var result readResult
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result = <-lines:
	}

	line := strings.TrimSpace(result.line)
	if result.err != nil && (!errors.Is(result.err, io.EOF) || line == "") {
		return nil, fmt.Errorf("failed to read redirect url: %w", result.err)
	}

	redirect, err := url.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect url: %w", err)
	}
	return redirect, nil
}
