package editor

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/voltcfg/volt/internal/logging"
)

// Resolve returns the editor argv from $VISUAL, then $EDITOR, falling
// back to vi. The variables may carry arguments ("code -w"), so the
// value is split shell-style.
func Resolve() []string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			if args := splitShellWords(v); len(args) > 0 {
				return args
			}
		}
	}
	return []string{"vi"}
}

// Session is a pending external edit backed by a temporary file.
type Session struct {
	path string
}

// Begin serializes value to a temporary .json file and returns the
// session together with the editor command ready to run on it.
func Begin(value any) (*Session, *exec.Cmd, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("serializing value for editor: %w", err)
	}

	f, err := os.CreateTemp("", "volt-*.json")
	if err != nil {
		return nil, nil, fmt.Errorf("creating temp file: %w", err)
	}
	path := f.Name()

	if _, err := f.Write(append(data, '\n')); err != nil {
		f.Close()
		os.Remove(path)
		return nil, nil, fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, nil, fmt.Errorf("writing temp file: %w", err)
	}

	args := Resolve()
	logging.Debug("launching external editor",
		zap.String("editor", args[0]),
		zap.String("path", path),
	)

	cmd := exec.Command(args[0], append(args[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return &Session{path: path}, cmd, nil
}

// Result finishes the session: runErr is the editor's exit error, and
// on success the edited file is parsed back into a JSON value. The
// temporary file is removed either way.
func (s *Session) Result(runErr error) (any, error) {
	defer os.Remove(s.path)

	if runErr != nil {
		return nil, fmt.Errorf("editor failed: %w", runErr)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading edited file: %w", err)
	}

	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var edited any
	if err := dec.Decode(&edited); err != nil {
		return nil, fmt.Errorf("parsing edited JSON: %w", err)
	}
	return edited, nil
}

// EditValue is the blocking round trip: write, run the editor to
// completion, read back.
func EditValue(value any) (any, error) {
	session, cmd, err := Begin(value)
	if err != nil {
		return nil, err
	}
	return session.Result(cmd.Run())
}

// splitShellWords splits a command string into argv, honoring single
// quotes, double quotes, and backslash escapes outside single quotes.
func splitShellWords(s string) []string {
	var out []string
	var cur []rune
	inSingle := false
	inDouble := false
	escaped := false

	flush := func() {
		if len(cur) == 0 {
			return
		}
		out = append(out, string(cur))
		cur = cur[:0]
	}

	for _, r := range s {
		switch {
		case escaped:
			cur = append(cur, r)
			escaped = false
		case r == '\\' && !inSingle:
			escaped = true
		case r == '\'' && !inDouble:
			inSingle = !inSingle
		case r == '"' && !inSingle:
			inDouble = !inDouble
		case !inSingle && !inDouble && unicode.IsSpace(r):
			flush()
		default:
			cur = append(cur, r)
		}
	}

	flush()
	return out
}
