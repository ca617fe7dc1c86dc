package builtins

import (
	"fmt"
	"strings"

	"github.com/pingf/toy-lang/pkg/runtime"
)

type listStore struct {
	elems []runtime.Value
}

// NewList creates a List instance owning elems.
func (l *Library) NewList(elems []runtime.Value) *runtime.Instance {
	inst := runtime.NewInstance(l.List)
	inst.Internal = &runtime.Native{Val: &listStore{elems: elems}}
	return inst
}

// ListElements returns the backing elements of a List instance.
func ListElements(v runtime.Value) ([]runtime.Value, bool) {
	store, ok := listOf(v)
	if !ok {
		return nil, false
	}
	return store.elems, true
}

// AppendListElements adds elems to the end of a List instance.
func AppendListElements(v runtime.Value, elems ...runtime.Value) bool {
	store, ok := listOf(v)
	if ok {
		store.elems = append(store.elems, elems...)
	}
	return ok
}

func listOf(v runtime.Value) (*listStore, bool) {
	inst, ok := v.(*runtime.Instance)
	if !ok {
		return nil, false
	}
	native, ok := inst.Internal.(*runtime.Native)
	if !ok {
		return nil, false
	}
	store, ok := native.Val.(*listStore)
	return store, ok
}

func selfList(call *runtime.NativeCall, method string) (*listStore, error) {
	if call.This != nil {
		if store, ok := listOf(call.This); ok {
			return store, nil
		}
	}
	return nil, fmt.Errorf("List.%s: receiver is not a list", method)
}

func listMethod(name string, fn func(store *listStore, call *runtime.NativeCall, args []runtime.Value) (runtime.Value, error)) runtime.NativeFunc {
	return func(call *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
		store, err := selfList(call, name)
		if err != nil {
			return nil, err
		}
		return fn(store, call, args)
	}
}

func indexArg(method string, store *listStore, args []runtime.Value, idx int) (int, error) {
	i, err := intArg("List."+method, args, idx)
	if err != nil {
		return 0, err
	}
	if i < 0 || i >= len(store.elems) {
		return 0, fmt.Errorf("List.%s: index %d out of range (length %d)", method, i, len(store.elems))
	}
	return i, nil
}

func indexOfValue(elems []runtime.Value, target runtime.Value) int {
	for i, elem := range elems {
		if runtime.Equal(elem, target) {
			return i
		}
	}
	return -1
}

// each invokes fn for every element and stops at the first exception.
func each(call *runtime.NativeCall, elems []runtime.Value, fn runtime.Value, visit func(elem, out runtime.Value)) (*runtime.Thrown, error) {
	for _, elem := range elems {
		out, err := call.Invoke(fn, []runtime.Value{elem}, call.Env)
		if err != nil {
			return nil, err
		}
		if thrown, ok := runtime.AsThrown(out); ok {
			return thrown, nil
		}
		visit(elem, out)
	}
	return nil, nil
}

func listMethods(l *Library) map[string]runtime.NativeFunc {
	return map[string]runtime.NativeFunc{
		"init": func(call *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
			elems := make([]runtime.Value, len(args))
			copy(elems, args)
			call.This.Internal = &runtime.Native{Val: &listStore{elems: elems}}
			return runtime.Void, nil
		},
		"add": listMethod("add", func(store *listStore, call *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
			store.elems = append(store.elems, arg(args, 0))
			return call.This, nil
		}),
		"get": listMethod("get", func(store *listStore, _ *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
			i, err := indexArg("get", store, args, 0)
			if err != nil {
				return nil, err
			}
			return store.elems[i], nil
		}),
		"set": listMethod("set", func(store *listStore, _ *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
			i, err := indexArg("set", store, args, 0)
			if err != nil {
				return nil, err
			}
			store.elems[i] = arg(args, 1)
			return runtime.Void, nil
		}),
		"swap": listMethod("swap", func(store *listStore, call *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
			i, err := indexArg("swap", store, args, 0)
			if err != nil {
				return nil, err
			}
			j, err := indexArg("swap", store, args, 1)
			if err != nil {
				return nil, err
			}
			store.elems[i], store.elems[j] = store.elems[j], store.elems[i]
			return call.This, nil
		}),
		"length": listMethod("length", func(store *listStore, _ *runtime.NativeCall, _ []runtime.Value) (runtime.Value, error) {
			return runtime.Number(float64(len(store.elems))), nil
		}),
		"isEmpty": listMethod("isEmpty", func(store *listStore, _ *runtime.NativeCall, _ []runtime.Value) (runtime.Value, error) {
			return runtime.Bool(len(store.elems) == 0), nil
		}),
		"indexOf": listMethod("indexOf", func(store *listStore, _ *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
			return runtime.Number(float64(indexOfValue(store.elems, arg(args, 0)))), nil
		}),
		"includes": listMethod("includes", func(store *listStore, _ *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
			return runtime.Bool(indexOfValue(store.elems, arg(args, 0)) >= 0), nil
		}),
		"reverse": listMethod("reverse", func(store *listStore, call *runtime.NativeCall, _ []runtime.Value) (runtime.Value, error) {
			for i, j := 0, len(store.elems)-1; i < j; i, j = i+1, j-1 {
				store.elems[i], store.elems[j] = store.elems[j], store.elems[i]
			}
			return call.This, nil
		}),
		"slice": listMethod("slice", func(store *listStore, _ *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
			start, end := 0, len(store.elems)
			var err error
			if !runtime.IsNull(arg(args, 0)) {
				if start, err = intArg("List.slice", args, 0); err != nil {
					return nil, err
				}
			}
			if !runtime.IsNull(arg(args, 1)) {
				if end, err = intArg("List.slice", args, 1); err != nil {
					return nil, err
				}
			}
			start, end = clampRange(start, end, len(store.elems))
			elems := make([]runtime.Value, end-start)
			copy(elems, store.elems[start:end])
			return l.NewList(elems), nil
		}),
		"join": listMethod("join", func(store *listStore, call *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
			sep := ","
			if !runtime.IsNull(arg(args, 0)) {
				s, err := textArg("List.join", args, 0)
				if err != nil {
					return nil, err
				}
				sep = s
			}
			return joinElements(call, store.elems, sep)
		}),
		"toString": listMethod("toString", func(store *listStore, call *runtime.NativeCall, _ []runtime.Value) (runtime.Value, error) {
			return joinElements(call, store.elems, ",")
		}),
		"map": listMethod("map", func(store *listStore, call *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
			out := make([]runtime.Value, 0, len(store.elems))
			thrown, err := each(call, store.elems, arg(args, 0), func(_, mapped runtime.Value) {
				out = append(out, mapped)
			})
			if thrown != nil || err != nil {
				return thrownOrNil(thrown), err
			}
			return l.NewList(out), nil
		}),
		"filter": listMethod("filter", func(store *listStore, call *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
			var out []runtime.Value
			thrown, err := each(call, store.elems, arg(args, 0), func(elem, keep runtime.Value) {
				if runtime.Truthy(keep) {
					out = append(out, elem)
				}
			})
			if thrown != nil || err != nil {
				return thrownOrNil(thrown), err
			}
			return l.NewList(out), nil
		}),
		"forEach": listMethod("forEach", func(store *listStore, call *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
			thrown, err := each(call, store.elems, arg(args, 0), func(_, _ runtime.Value) {})
			if thrown != nil || err != nil {
				return thrownOrNil(thrown), err
			}
			return runtime.Void, nil
		}),
	}
}

func joinElements(call *runtime.NativeCall, elems []runtime.Value, sep string) (runtime.Value, error) {
	parts := make([]string, len(elems))
	for i, elem := range elems {
		text, thrown, err := stringify(call, elem)
		if thrown != nil || err != nil {
			return thrownOrNil(thrown), err
		}
		parts[i] = text
	}
	return runtime.Text(strings.Join(parts, sep)), nil
}

func (l *Library) installListStatics() {
	l.List.Object.Set("create", l.native("create", func(_ *runtime.NativeCall, args []runtime.Value) (runtime.Value, error) {
		n, err := intArg("List.create", args, 0)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("List.create: negative length %d", n)
		}
		elems := make([]runtime.Value, n)
		for i := range elems {
			elems[i] = arg(args, 1)
		}
		return l.NewList(elems), nil
	}))
}
