package script

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/tidwall/match"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/keychord/internal/capture"
	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/logging"
	"github.com/dshills/keychord/internal/notify"
)

// Result summarizes one replayed scenario or script.
type Result struct {
	Name string

	// Steps is the number of operations performed.
	Steps int

	// Failures lists every failed expectation.
	Failures []*StepError

	// Final is the recorder state after the last step.
	Final capture.State
}

// Passed reports whether every expectation held.
func (r *Result) Passed() bool {
	return len(r.Failures) == 0
}

// Runner replays scenarios.
type Runner struct {
	mods   key.ModifierSet
	trace  io.Writer
	pretty bool
	filter string
	logger *logging.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithModifiers sets the modifier set used by scenarios that do not name
// their own.
func WithModifiers(mods key.ModifierSet) RunnerOption {
	return func(r *Runner) {
		r.mods = mods
	}
}

// WithTrace sets where JSON trace lines are written.
func WithTrace(w io.Writer) RunnerOption {
	return func(r *Runner) {
		r.trace = w
	}
}

// WithPretty indents trace lines.
func WithPretty(enabled bool) RunnerOption {
	return func(r *Runner) {
		r.pretty = enabled
	}
}

// WithFilter restricts RunFile to scenarios whose name matches the glob
// pattern (* and ? wildcards).
func WithFilter(pattern string) RunnerOption {
	return func(r *Runner) {
		r.filter = pattern
	}
}

// WithRunnerLogger sets the logger.
func WithRunnerLogger(l *logging.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// NewRunner creates a runner. By default it uses the standard modifier
// set and discards the trace.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		mods:  key.DefaultModifiers(),
		trace: io.Discard,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrDefault(r.logger).WithComponent("replay")
	return r
}

// Matches reports whether a scenario name passes the runner's filter.
func (r *Runner) Matches(name string) bool {
	return r.filter == "" || match.Match(name, r.filter)
}

// RunFile replays every matching scenario in path. YAML files (.yaml,
// .yml) may hold several scenarios; a Lua file (.lua) is one scenario
// named after the file.
func (r *Runner) RunFile(ctx context.Context, path string) ([]*Result, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		scenarios, err := LoadScenarios(path)
		if err != nil {
			return nil, err
		}
		var results []*Result
		for _, s := range scenarios {
			if !r.Matches(s.Name) {
				continue
			}
			res, err := r.Run(ctx, s)
			if err != nil {
				return results, err
			}
			results = append(results, res)
		}
		return results, nil

	case ".lua":
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if !r.Matches(name) {
			return nil, nil
		}
		res, err := r.RunLuaFile(ctx, name, path)
		if err != nil {
			return nil, err
		}
		return []*Result{res}, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Run replays a scenario against a fresh recorder. Failed expectations
// are collected in the result; the error is reserved for scenarios that
// cannot be run at all.
func (r *Runner) Run(ctx context.Context, s *Scenario) (*Result, error) {
	mods := r.mods
	if len(s.Modifiers) > 0 {
		var err error
		if mods, err = key.ParseModifierSet(s.Modifiers); err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
	}

	sess := r.newSession(s.Name, mods)
	defer sess.close()

	if s.Initial != "" {
		sess.rec.WriteValue(s.Initial)
	}

	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return sess.result(), err
		}
		op, arg, err := step.Op()
		if err != nil {
			return sess.result(), fmt.Errorf("scenario %q: step %d: %w", s.Name, i+1, err)
		}
		snap, err := sess.apply(op, arg)
		if err != nil {
			return sess.result(), err
		}
		for _, f := range step.Expect.Check(snap) {
			sess.fail(f)
		}
	}

	res := sess.result()
	r.logger.Debug("scenario %q: %d steps, %d failures", s.Name, res.Steps, len(res.Failures))
	return res, nil
}

// session is one recorder plus the bookkeeping shared by YAML and Lua
// replays.
type session struct {
	runner  *Runner
	name    string
	rec     *capture.Recorder
	sub     *notify.Subscription
	emitted []string
	steps   int
	lastOp  string
	fails   []*StepError
}

func (r *Runner) newSession(name string, mods key.ModifierSet) *session {
	s := &session{runner: r, name: name}
	s.attach(capture.NewRecorder(mods, capture.WithLogger(r.logger), capture.WithID(name)))
	return s
}

// attach makes rec the session's recorder and starts collecting its
// emissions.
func (s *session) attach(rec *capture.Recorder) {
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
	s.rec = rec
	s.sub = rec.RegisterOnChange(func(v string) {
		s.emitted = append(s.emitted, v)
	})
}

// setModifiers swaps in a recorder with a new modifier set, keeping the
// committed value.
func (s *session) setModifiers(mods key.ModifierSet) {
	old := s.rec
	s.attach(old.Rebuild(mods))
	old.Close()
}

// apply performs one operation, writes its trace line and returns the
// resulting snapshot.
func (s *session) apply(op, arg string) (capture.Snapshot, error) {
	s.emitted = nil

	switch op {
	case "press":
		parts := key.Split(arg)
		for i, p := range parts {
			parts[i] = key.Normalize(p)
		}
		if len(parts) > 0 {
			s.rec.HandleAll(key.Chord(parts[:len(parts)-1], parts[len(parts)-1]))
		}
	case "blur":
		s.rec.Blur()
	case "write":
		s.rec.WriteValue(arg)
	case "reset":
		s.rec.Reset()
	default:
		action, err := key.ParseAction(op)
		if err != nil {
			return capture.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidStep, err)
		}
		s.rec.Handle(key.Event{Action: action, Key: key.Normalize(arg)})
	}

	s.steps++
	s.lastOp = op
	if arg != "" {
		s.lastOp = fmt.Sprintf("%s %q", op, arg)
	}

	snap := capture.NewSnapshot(s.rec.State(), s.emitted)
	return snap, s.writeTrace(op, arg, snap)
}

// writeTrace writes snap as a JSON line annotated with the scenario name,
// step number and operation.
func (s *session) writeTrace(op, arg string, snap capture.Snapshot) error {
	line, err := snap.MarshalJSON()
	if err != nil {
		return err
	}
	for _, kv := range []struct {
		path  string
		value any
	}{
		{"scenario", s.name},
		{"step", s.steps},
		{"op", op},
		{"arg", arg},
	} {
		if line, err = sjson.SetBytes(line, kv.path, kv.value); err != nil {
			return err
		}
	}

	if s.runner.pretty {
		line = pretty.Pretty(line)
	} else {
		line = append(line, '\n')
	}
	_, err = s.runner.trace.Write(line)
	return err
}

func (s *session) fail(f *StepError) {
	f.Scenario = s.name
	f.Step = s.steps
	f.Op = s.lastOp
	s.fails = append(s.fails, f)
}

func (s *session) result() *Result {
	return &Result{
		Name:     s.name,
		Steps:    s.steps,
		Failures: s.fails,
		Final:    s.rec.State(),
	}
}

func (s *session) close() {
	s.rec.Close()
}
