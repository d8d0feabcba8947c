// Package scenario loads and replays JSON-lines logs of normalization calls.
//
// Each line of a call log is a JSON object naming the entry point and its
// arguments:
//
//	{"call":"normalizePath","args":["/a/./b"]}
//	{"call":"getNormalizedAbsolutePath","args":["a/..","/base/"]}
package scenario

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/michaelscutari/pathnorm/internal/pathutil"
	"github.com/tidwall/gjson"
)

// ErrUnknownCall is returned for a log line naming an unsupported entry point.
var ErrUnknownCall = errors.New("unknown call")

// ErrMalformed is returned for a log line that is not a valid call object.
var ErrMalformed = errors.New("malformed call")

// maxLineSize bounds a single call-log line.
const maxLineSize = 1 << 20

// Kind identifies the entry point a call targets.
type Kind uint8

const (
	KindNormalize         Kind = 0
	KindNormalizeAbsolute Kind = 1
)

func (k Kind) String() string {
	switch k {
	case KindNormalizeAbsolute:
		return "getNormalizedAbsolutePath"
	default:
		return "normalizePath"
	}
}

// ParseKind maps a logged call name to its Kind.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "normalizePath":
		return KindNormalize, nil
	case "getNormalizedAbsolutePath":
		return KindNormalizeAbsolute, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCall, name)
	}
}

// Call is a single recorded invocation.
type Call struct {
	Kind Kind
	Path string
	Base string // empty when no current directory was passed
	Line int    // 1-based line in the source log, 0 for built-in calls
}

// Impl is a pair of entry points to replay calls against.
type Impl struct {
	Name              string
	Normalize         func(path string) string
	NormalizeAbsolute func(path, currentDirectory string) string
}

var (
	// Scanner is the lazy-buffer implementation.
	Scanner = Impl{
		Name:              "scanner",
		Normalize:         pathutil.Normalize,
		NormalizeAbsolute: pathutil.NormalizeAbsolute,
	}

	// Reference is the component-reduction implementation.
	Reference = Impl{
		Name:              "reference",
		Normalize:         pathutil.ReferenceNormalize,
		NormalizeAbsolute: pathutil.ReferenceNormalizeAbsolute,
	}
)

// LookupImpl returns the implementation with the given name.
func LookupImpl(name string) (Impl, bool) {
	switch name {
	case Scanner.Name:
		return Scanner, true
	case Reference.Name:
		return Reference, true
	}
	return Impl{}, false
}

// Apply invokes the call against impl.
func (c Call) Apply(impl Impl) string {
	if c.Kind == KindNormalizeAbsolute {
		return impl.NormalizeAbsolute(c.Path, c.Base)
	}
	return impl.Normalize(c.Path)
}

// ParseLine decodes one call-log line.
func ParseLine(line string) (Call, error) {
	if !gjson.Valid(line) {
		return Call{}, ErrMalformed
	}
	res := gjson.Parse(line)
	name := res.Get("call")
	if !name.Exists() {
		return Call{}, fmt.Errorf("%w: missing \"call\"", ErrMalformed)
	}
	kind, err := ParseKind(name.String())
	if err != nil {
		return Call{}, err
	}

	args := res.Get("args").Array()
	if len(args) == 0 {
		return Call{}, fmt.Errorf("%w: missing \"args\"", ErrMalformed)
	}
	call := Call{Kind: kind, Path: args[0].String()}
	if kind == KindNormalizeAbsolute && len(args) > 1 && args[1].Type == gjson.String {
		call.Base = args[1].String()
	}
	return call, nil
}

// Load reads a JSON-lines call log. Blank lines are skipped.
func Load(r io.Reader) ([]Call, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var calls []Call
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		call, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		call.Line = lineNo
		calls = append(calls, call)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read call log: %w", err)
	}
	return calls, nil
}

// LoadFile reads the call log at path.
func LoadFile(path string) ([]Call, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open call log: %w", err)
	}
	defer f.Close()

	calls, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return calls, nil
}
