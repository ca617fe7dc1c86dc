package runtime

import "fmt"

// Frame is one stack-trace entry: the statement line a thrown exception
// propagated through.
type Frame struct {
	File   string
	Line   int
	Source string
}

func (f Frame) String() string {
	return fmt.Sprintf("%s:%d: %s", f.File, f.Line, f.Source)
}

// Thrown carries an in-flight language exception and the frames it has
// accumulated.
type Thrown struct {
	Value  Value
	Frames []Frame
	last   *Environment
}

func (*Thrown) Kind() Kind { return KindThrown }

// Throw wraps v in a fresh exception carrier.
func Throw(v Value) *Thrown {
	if IsNull(v) {
		v = Null
	}
	return &Thrown{Value: v}
}

// Annotate records frame for the statement sequence running in env. Only the
// first sequence boundary per context level adds a frame, so repeated passes
// through enclosing sequences of the same context do not duplicate entries.
func (t *Thrown) Annotate(env *Environment, frame Frame) bool {
	if len(t.Frames) > 0 && t.last == env {
		return false
	}
	t.Frames = append(t.Frames, frame)
	t.last = env
	return true
}

// AsThrown reports whether v is an exception carrier.
func AsThrown(v Value) (*Thrown, bool) {
	t, ok := v.(*Thrown)
	return t, ok && t != nil
}
