package builtins

import (
	"fmt"

	"github.com/pingf/toy-lang/pkg/runtime"
)

// TraceProperty is the own property holding the frames of a trace-aware
// exception.
const TraceProperty = "stackTraceElements"

func traceableMethods(l *Library) map[string]runtime.NativeFunc {
	return map[string]runtime.NativeFunc{
		"init": func(call *runtime.NativeCall, _ []runtime.Value) (runtime.Value, error) {
			call.This.Set(TraceProperty, l.NewList(nil))
			return runtime.Void, nil
		},
		"printStackTrace": func(call *runtime.NativeCall, _ []runtime.Value) (runtime.Value, error) {
			trace, ok := call.This.Own(TraceProperty)
			if !ok {
				return runtime.Void, nil
			}
			elems, ok := ListElements(trace)
			if !ok {
				return nil, fmt.Errorf("Traceable.printStackTrace: %s is not a list", TraceProperty)
			}
			for _, elem := range elems {
				frame, ok := elem.(*runtime.Instance)
				if !ok {
					continue
				}
				file, _ := frame.Own("fileName")
				line, _ := frame.Own("lineNumber")
				stmt, _ := frame.Own("statement")
				text := fmt.Sprintf("at %s:%s %s\n", plain(file), plain(line), plain(stmt))
				call.Output(text)
			}
			return runtime.Void, nil
		},
	}
}

func plain(v runtime.Value) string {
	switch val := runtime.Unbox(v).(type) {
	case runtime.TextValue:
		return val.Val
	case runtime.NumberValue:
		return runtime.FormatNumber(val.Val)
	}
	return ""
}

// TraceList returns the trace list of a thrown value, creating it for
// Traceable instances that do not carry one yet. ok is false for values
// that are not trace-aware.
func (l *Library) TraceList(v runtime.Value) (*runtime.Instance, bool) {
	inst, ok := v.(*runtime.Instance)
	if !ok {
		return nil, false
	}
	if trace, ok := inst.Own(TraceProperty); ok {
		if list, ok := trace.(*runtime.Instance); ok {
			if _, isList := ListElements(list); isList {
				return list, true
			}
		}
		return nil, false
	}
	if !inst.InstanceOf(l.Traceable) {
		return nil, false
	}
	list := l.NewList(nil)
	inst.Set(TraceProperty, list)
	return list, true
}

// RecordTrace appends frames to the trace list of a trace-aware value, so a
// rethrown exception keeps the frames of every catch it went through.
func (l *Library) RecordTrace(v runtime.Value, frames []runtime.Frame) bool {
	list, ok := l.TraceList(v)
	if !ok {
		return false
	}
	elems := make([]runtime.Value, len(frames))
	for i, frame := range frames {
		obj := l.NewObject()
		obj.Set("fileName", runtime.Text(frame.File))
		obj.Set("lineNumber", runtime.Number(float64(frame.Line)))
		obj.Set("statement", runtime.Text(frame.Source))
		elems[i] = obj
	}
	return AppendListElements(list, elems...)
}
