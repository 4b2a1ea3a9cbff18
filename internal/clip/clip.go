// Package clip hands a finished report to the user's clipboard, degrading
// to a temp file when no clipboard is reachable.
package clip

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	atotto "github.com/atotto/clipboard"
	osc52 "github.com/aymanbagabas/go-osc52/v2"
	"golang.org/x/term"
)

// Method identifies which mechanism accepted the report.
type Method string

const (
	MethodNative Method = "native" // OS clipboard
	MethodOSC52  Method = "osc52"  // terminal escape sequence, survives SSH
	MethodFile   Method = "file"   // temp file, clipboard unreachable
)

// Result tells the caller where the report ended up so the CLI can print
// the right hint.
type Result struct {
	Method   Method
	FilePath string // set for MethodFile
}

// Swappable in tests.
var (
	nativeCopy = atotto.WriteAll
	osc52Copy  = copyViaOSC52
)

// Copy places report text on the clipboard: native OS clipboard first,
// then OSC52 for terminal sessions without one (SSH, WSL), then a temp
// file as the last resort. The temp file path is returned in the Result.
func Copy(report string) (Result, error) {
	if err := nativeCopy(report); err == nil {
		return Result{Method: MethodNative}, nil
	}
	if err := osc52Copy(report); err == nil {
		return Result{Method: MethodOSC52}, nil
	}

	path, err := spillToFile(report)
	if err != nil {
		return Result{}, err
	}
	return Result{Method: MethodFile, FilePath: path}, nil
}

// Terminals silently drop oversized OSC52 payloads, so large reports go
// straight to the file fallback.
const maxOSC52Bytes = 100_000

func copyViaOSC52(report string) error {
	switch {
	case report == "":
		return errors.New("empty report")
	case !term.IsTerminal(int(os.Stderr.Fd())):
		return errors.New("stderr is not a terminal")
	case len(report) > maxOSC52Bytes:
		return fmt.Errorf("report too large for OSC52 (%d > %d bytes)", len(report), maxOSC52Bytes)
	}

	seq := osc52.New(report).Limit(maxOSC52Bytes)
	if os.Getenv("TMUX") != "" {
		seq = seq.Tmux()
	} else if os.Getenv("STY") != "" {
		seq = seq.Screen()
	}

	// The escape sequence goes to stderr so a piped report on stdout
	// stays clean.
	_, err := seq.WriteTo(os.Stderr)
	return err
}

func spillToFile(report string) (string, error) {
	f, err := os.CreateTemp("", fmt.Sprintf("panel-report-%d-*.md", time.Now().UnixNano()))
	if err != nil {
		return "", err
	}
	path := f.Name()
	defer func() {
		_ = f.Close()
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if _, err = f.WriteString(report); err != nil {
		return "", err
	}
	if err = f.Close(); err != nil {
		return "", err
	}
	return filepath.Clean(path), nil
}
