package expr

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/tracksync/internal/value"
)

var (
	pathX      = cue.ParsePath("x")
	pathResult = cue.ParsePath("result")
)

// Expr is a compiled expression. It is not safe for concurrent use.
type Expr struct {
	src string
	val cue.Value
}

// Compile parses src as a CUE expression over x.
// Errors are returned as *CompileError with the CUE position when known.
func Compile(src string) (*Expr, error) {
	if src == "" {
		return nil, &CompileError{Field: "expr", Message: "empty expression"}
	}
	ctx := cuecontext.New()
	v := ctx.CompileString("x: _\nresult: (\n"+src+"\n)", cue.Filename("expr"))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return &Expr{src: src, val: v}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(src string) *Expr {
	e, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return e
}

// Source returns the expression text.
func (e *Expr) Source() string {
	return e.src
}

// Eval evaluates the expression with x bound to rec.
func (e *Expr) Eval(rec value.Record) (value.Value, error) {
	filled := e.val.FillPath(pathX, value.ToAny(rec))
	res := filled.LookupPath(pathResult)
	if err := res.Err(); err != nil {
		return nil, &EvalError{Expr: e.src, Err: formatCUEError(err)}
	}
	if !res.IsConcrete() {
		return nil, &EvalError{Expr: e.src, Err: fmt.Errorf("result is not concrete: %v", res.IncompleteKind())}
	}
	v, err := fromCUE(res)
	if err != nil {
		return nil, &EvalError{Expr: e.src, Err: err}
	}
	return v, nil
}

// Bool evaluates the expression and requires a boolean result.
func (e *Expr) Bool(rec value.Record) (bool, error) {
	v, err := e.Eval(rec)
	if err != nil {
		return false, err
	}
	b, ok := v.(value.Bool)
	if !ok {
		return false, &EvalError{Expr: e.src, Err: fmt.Errorf("want bool, got %s", value.KindOf(v))}
	}
	return bool(b), nil
}

// fromCUE converts a concrete CUE value into the value model.
func fromCUE(v cue.Value) (value.Value, error) {
	switch v.Kind() {
	case cue.NullKind:
		return value.Null{}, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return value.Bool(b), nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return value.Int(n), nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return value.String(s), nil
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out := value.List{}
		for iter.Next() {
			elem, err := fromCUE(iter.Value())
			if err != nil {
				return nil, err
			}
			out = append(out, elem)
		}
		return out, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out := value.Record{}
		for iter.Next() {
			elem, err := fromCUE(iter.Value())
			if err != nil {
				return nil, fmt.Errorf("%s: %w", iter.Label(), err)
			}
			out[iter.Label()] = elem
		}
		return out, nil
	case cue.FloatKind, cue.NumberKind:
		return nil, &CompileError{
			Field:   "type",
			Message: "float results are forbidden, use int instead",
			Pos:     v.Pos(),
		}
	default:
		return nil, &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("unsupported result kind: %v", v.Kind()),
			Pos:     v.Pos(),
		}
	}
}

// CompileError represents an expression error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// EvalError reports an expression that failed for a particular record.
type EvalError struct {
	Expr string
	Err  error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluate %q: %v", e.Expr, e.Err)
}

func (e *EvalError) Unwrap() error {
	return e.Err
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &CompileError{Field: "cue", Message: err.Error()}
	}

	firstErr := errs[0]
	ce := &CompileError{Field: "cue", Message: firstErr.Error()}
	if positions := errors.Positions(firstErr); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}
