package builtins

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pingf/toy-lang/pkg/runtime"
)

func selfText(call *runtime.NativeCall, method string) (string, error) {
	if call.This != nil {
		if text, ok := call.This.Internal.(runtime.TextValue); ok {
			return text.Val, nil
		}
	}
	return "", fmt.Errorf("String.%s: receiver is not a string", method)
}

// runeIndex converts a byte offset into a rune offset (-1 stays -1).
func runeIndex(s string, byteIdx int) int {
	if byteIdx < 0 {
		return -1
	}
	return utf8.RuneCountInString(s[:byteIdx])
}

func clampRange(start, end, length int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end > length {
		end = length
	}
	if start > end {
		start, end = end, start
	}
	return start, end
}

func textMethod(name string, fn func(s string, call *runtime.NativeCall, args []runtime.Value) (runtime.Value, error)) runtime.NativeFunc {
	return func(call *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
		s, err := selfText(call, name)
		if err != nil {
			return nil, err
		}
		return fn(s, call, args)
	}
}

func textPredicate(name string, pred func(s, sub string) bool) runtime.NativeFunc {
	return textMethod(name, func(s string, _ *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
		sub, err := textArg("String."+name, args, 0)
		if err != nil {
			return nil, err
		}
		return runtime.Bool(pred(s, sub)), nil
	})
}

func stringMethods(l *Library) map[string]runtime.NativeFunc {
	return map[string]runtime.NativeFunc{
		"init": func(call *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
			v := arg(args, 0)
			text := ""
			if !runtime.IsNull(v) {
				s, thrown, err := stringify(call, v)
				if thrown != nil || err != nil {
					return thrownOrNil(thrown), err
				}
				text = s
			}
			call.This.Internal = runtime.Text(text)
			return runtime.Void, nil
		},
		"length": textMethod("length", func(s string, _ *runtime.NativeCall, _ []runtime.Value) (runtime.Value, error) {
			return runtime.Number(float64(utf8.RuneCountInString(s))), nil
		}),
		"toUpperCase": textMethod("toUpperCase", func(s string, _ *runtime.NativeCall, _ []runtime.Value) (runtime.Value, error) {
			return runtime.Text(strings.ToUpper(s)), nil
		}),
		"toLowerCase": textMethod("toLowerCase", func(s string, _ *runtime.NativeCall, _ []runtime.Value) (runtime.Value, error) {
			return runtime.Text(strings.ToLower(s)), nil
		}),
		"trim": textMethod("trim", func(s string, _ *runtime.NativeCall, _ []runtime.Value) (runtime.Value, error) {
			return runtime.Text(strings.TrimSpace(s)), nil
		}),
		"toString": textMethod("toString", func(s string, _ *runtime.NativeCall, _ []runtime.Value) (runtime.Value, error) {
			return runtime.Text(s), nil
		}),
		"charAt": textMethod("charAt", func(s string, _ *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
			idx, err := intArg("String.charAt", args, 0)
			if err != nil {
				return nil, err
			}
			runes := []rune(s)
			if idx < 0 || idx >= len(runes) {
				return runtime.Text(""), nil
			}
			return runtime.Text(string(runes[idx])), nil
		}),
		"indexOf": textMethod("indexOf", func(s string, _ *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
			sub, err := textArg("String.indexOf", args, 0)
			if err != nil {
				return nil, err
			}
			return runtime.Number(float64(runeIndex(s, strings.Index(s, sub)))), nil
		}),
		"lastIndexOf": textMethod("lastIndexOf", func(s string, _ *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
			sub, err := textArg("String.lastIndexOf", args, 0)
			if err != nil {
				return nil, err
			}
			return runtime.Number(float64(runeIndex(s, strings.LastIndex(s, sub)))), nil
		}),
		"startsWith": textPredicate("startsWith", strings.HasPrefix),
		"endsWith":   textPredicate("endsWith", strings.HasSuffix),
		"includes":   textPredicate("includes", strings.Contains),
		"substring": textMethod("substring", func(s string, _ *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
			runes := []rune(s)
			start, err := intArg("String.substring", args, 0)
			if err != nil {
				return nil, err
			}
			end := len(runes)
			if !runtime.IsNull(arg(args, 1)) {
				if end, err = intArg("String.substring", args, 1); err != nil {
					return nil, err
				}
			}
			start, end = clampRange(start, end, len(runes))
			return runtime.Text(string(runes[start:end])), nil
		}),
		"split": textMethod("split", func(s string, _ *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
			sep, err := textArg("String.split", args, 0)
			if err != nil {
				return nil, err
			}
			parts := strings.Split(s, sep)
			elems := make([]runtime.Value, len(parts))
			for i, part := range parts {
				elems[i] = runtime.Text(part)
			}
			return l.NewList(elems), nil
		}),
	}
}

func (l *Library) installStringStatics() {
	l.String.Object.Set("format", l.native("format", func(call *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
		format, err := textArg("String.format", args, 0)
		if err != nil {
			return nil, err
		}
		var b strings.Builder
		next := 1
		for {
			idx := strings.Index(format, "{}")
			if idx < 0 {
				b.WriteString(format)
				break
			}
			b.WriteString(format[:idx])
			format = format[idx+2:]
			if next >= len(args) {
				b.WriteString("{}")
				continue
			}
			text, thrown, err := stringify(call, args[next])
			if thrown != nil || err != nil {
				return thrownOrNil(thrown), err
			}
			b.WriteString(text)
			next++
		}
		return runtime.Text(b.String()), nil
	}))
}
