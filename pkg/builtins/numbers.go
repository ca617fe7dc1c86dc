package builtins

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pingf/toy-lang/pkg/runtime"
)

func selfNumber(call *runtime.NativeCall, method string) (float64, error) {
	if call.This != nil {
		if n, ok := call.This.Internal.(runtime.NumberValue); ok {
			return n.Val, nil
		}
	}
	return 0, fmt.Errorf("Number.%s: receiver is not a number", method)
}

func numberMethods(_ *Library) map[string]runtime.NativeFunc {
	return map[string]runtime.NativeFunc{
		"init": func(call *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
			n := 0.0
			switch v := runtime.Unbox(arg(args, 0)).(type) {
			case runtime.NumberValue:
				n = v.Val
			case runtime.TextValue:
				n = parseFloatPrefix(v.Val)
			case runtime.BoolValue:
				if v.Val {
					n = 1
				}
			}
			call.This.Internal = runtime.Number(n)
			return runtime.Void, nil
		},
		"toString": func(call *runtime.NativeCall, _ []runtime.Value) (runtime.Value, error) {
			n, err := selfNumber(call, "toString")
			if err != nil {
				return nil, err
			}
			return runtime.Text(runtime.FormatNumber(n)), nil
		},
		"toFixed": func(call *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
			n, err := selfNumber(call, "toFixed")
			if err != nil {
				return nil, err
			}
			digits := 0
			if !runtime.IsNull(arg(args, 0)) {
				if digits, err = intArg("Number.toFixed", args, 0); err != nil {
					return nil, err
				}
			}
			return runtime.Text(strconv.FormatFloat(n, 'f', digits, 64)), nil
		},
	}
}

// parseFloatPrefix parses the longest numeric prefix of s, NaN when there
// is none.
func parseFloatPrefix(s string) float64 {
	s = strings.TrimSpace(s)
	for end := len(s); end > 0; end-- {
		if n, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return n
		}
	}
	return math.NaN()
}

func parseIntPrefix(s string, base int) float64 {
	s = strings.TrimSpace(s)
	for end := len(s); end > 0; end-- {
		if n, err := strconv.ParseInt(s[:end], base, 64); err == nil {
			return float64(n)
		}
	}
	return math.NaN()
}

func (l *Library) installNumberStatics() {
	statics := l.Number.Object
	statics.Set("MAX_VALUE", runtime.Number(math.MaxFloat64))
	statics.Set("MIN_VALUE", runtime.Number(math.SmallestNonzeroFloat64))
	statics.Set("NaN", runtime.Number(math.NaN()))
	statics.Set("POSITIVE_INFINITY", runtime.Number(math.Inf(1)))
	statics.Set("NEGATIVE_INFINITY", runtime.Number(math.Inf(-1)))

	statics.Set("parseFloat", l.native("parseFloat", func(_ *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
		s, err := textArg("Number.parseFloat", args, 0)
		if err != nil {
			return nil, err
		}
		return runtime.Number(parseFloatPrefix(s)), nil
	}))
	statics.Set("parseInt", l.native("parseInt", func(_ *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
		s, err := textArg("Number.parseInt", args, 0)
		if err != nil {
			return nil, err
		}
		base := 10
		if !runtime.IsNull(arg(args, 1)) {
			if base, err = intArg("Number.parseInt", args, 1); err != nil {
				return nil, err
			}
			if base < 2 || base > 36 {
				return runtime.Number(math.NaN()), nil
			}
		}
		return runtime.Number(parseIntPrefix(s, base)), nil
	}))
	statics.Set("isNaN", l.native("isNaN", func(_ *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
		n, ok := runtime.Unbox(arg(args, 0)).(runtime.NumberValue)
		return runtime.Bool(ok && math.IsNaN(n.Val)), nil
	}))
	statics.Set("isFinite", l.native("isFinite", func(_ *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
		n, ok := runtime.Unbox(arg(args, 0)).(runtime.NumberValue)
		return runtime.Bool(ok && !math.IsNaN(n.Val) && !math.IsInf(n.Val, 0)), nil
	}))
	statics.Set("isInteger", l.native("isInteger", func(_ *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
		n, ok := runtime.Unbox(arg(args, 0)).(runtime.NumberValue)
		return runtime.Bool(ok && !math.IsInf(n.Val, 0) && n.Val == math.Trunc(n.Val)), nil
	}))
}
