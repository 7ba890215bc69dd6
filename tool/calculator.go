package tool

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
)

var (
	// ErrDivisionByZero is returned for x/0, x//0 and x%0.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrOverflow is returned when a result does not fit a float64.
	ErrOverflow = errors.New("result too large")
)

// CalculatorName is the tool name models see.
const CalculatorName = "calculator_tool"

// CalculatorInput is the argument object of the calculator tool.
type CalculatorInput struct {
	Expression string `json:"expression" jsonschema:"A mathematical expression like 25 + 17 or 100 / 4"`
}

// NewCalculator returns the arithmetic tool. Evaluation failures are
// reported in the result text so the model can see them.
func NewCalculator() (Tool, error) {
	return NewTyped(CalculatorName, "Evaluates basic mathematical expressions.",
		func(_ context.Context, in CalculatorInput) (string, error) {
			out, err := Evaluate(in.Expression)
			if err != nil {
				return "Error calculating: " + err.Error(), nil
			}
			return out, nil
		})
}

// Evaluate computes an arithmetic expression. It supports + - * / // % **,
// parentheses, unary signs, list literals and the functions abs, round,
// min, max, sum, len, int and float. Integers stay exact until they
// overflow int64, then continue as floats; / always yields a float.
func Evaluate(expression string) (string, error) {
	src, err := prepare(expression)
	if err != nil {
		return "", err
	}
	tree, err := parser.Parse(src)
	if err != nil {
		return "", fmt.Errorf("invalid syntax: %w", err)
	}
	v, err := eval(tree.Node)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// floorDiv stands in for //, which expr reads as a comment. Unary plus is
// dropped by prepare, so a "/" whose right operand is wrapped in two unary
// pluses can only come from here.
const floorDiv = "/++"

// prepare rewrites the Python spellings expr does not read.
func prepare(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", errors.New("empty expression")
	}
	if strings.Contains(s, "/*") {
		return "", errors.New("invalid syntax: unexpected /*")
	}
	var b strings.Builder
	var prev byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= utf8.RuneSelf:
			r, _ := utf8.DecodeRuneInString(s[i:])
			return "", fmt.Errorf("invalid character %q", r)
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			b.WriteString(floorDiv)
			prev = '/'
			i++
			continue
		case c == '+' && (prev == 0 || strings.IndexByte("+-*/%([,", prev) >= 0):
			b.WriteByte(' ')
			continue
		}
		b.WriteByte(c)
		if c != ' ' && c != '\t' && c != '\n' {
			prev = c
		}
	}
	return b.String(), nil
}

func floorDivOperand(n ast.Node) (ast.Node, bool) {
	outer, ok := n.(*ast.UnaryNode)
	if !ok || outer.Operator != "+" {
		return nil, false
	}
	inner, ok := outer.Node.(*ast.UnaryNode)
	if !ok || inner.Operator != "+" {
		return nil, false
	}
	return inner.Node, true
}

func eval(node ast.Node) (value, error) {
	switch n := node.(type) {
	case *ast.IntegerNode:
		return intVal(int64(n.Value)), nil
	case *ast.FloatNode:
		return floatVal(n.Value), nil
	case *ast.UnaryNode:
		if n.Operator != "-" {
			return value{}, fmt.Errorf("unsupported operator %q", n.Operator)
		}
		v, err := eval(n.Node)
		if err != nil {
			return value{}, err
		}
		return arith("-", intVal(0), v)
	case *ast.BinaryNode:
		op, right := n.Operator, n.Right
		if op == "/" {
			if operand, ok := floorDivOperand(right); ok {
				op, right = "//", operand
			}
		}
		if op == "^" {
			return value{}, errors.New("unsupported operator \"^\", use **")
		}
		a, err := eval(n.Left)
		if err != nil {
			return value{}, err
		}
		b, err := eval(right)
		if err != nil {
			return value{}, err
		}
		return arith(op, a, b)
	case *ast.ArrayNode:
		items, err := evalAll(n.Nodes)
		if err != nil {
			return value{}, err
		}
		return value{isList: true, list: items}, nil
	case *ast.BuiltinNode:
		args, err := evalAll(n.Arguments)
		if err != nil {
			return value{}, err
		}
		return call(n.Name, args)
	case *ast.CallNode:
		ident, ok := n.Callee.(*ast.IdentifierNode)
		if !ok {
			return value{}, errors.New("unsupported call")
		}
		args, err := evalAll(n.Arguments)
		if err != nil {
			return value{}, err
		}
		return call(ident.Value, args)
	case *ast.IdentifierNode:
		return value{}, fmt.Errorf("name %q is not defined", n.Value)
	}
	return value{}, fmt.Errorf("unsupported expression %T", node)
}

func evalAll(nodes []ast.Node) ([]value, error) {
	out := make([]value, len(nodes))
	for i, n := range nodes {
		v, err := eval(n)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

type value struct {
	isInt  bool
	i      int64
	f      float64
	list   []value
	isList bool
}

func intVal(i int64) value     { return value{isInt: true, i: i} }
func floatVal(f float64) value { return value{f: f} }

func (v value) float() float64 {
	if v.isInt {
		return float64(v.i)
	}
	return v.f
}

func (v value) String() string {
	switch {
	case v.isList:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case v.isInt:
		return strconv.FormatInt(v.i, 10)
	default:
		return formatFloat(v.f)
	}
}

// formatFloat prints f the way Python's repr does.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	if f != 0 {
		exp := math.Floor(math.Log10(math.Abs(f)))
		if exp < -4 || exp >= 16 {
			return strconv.FormatFloat(f, 'e', -1, 64)
		}
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func arith(op string, a, b value) (value, error) {
	if a.isList || b.isList {
		return value{}, fmt.Errorf("unsupported operand for %s: list", op)
	}
	if a.isInt && b.isInt {
		return intArith(op, a.i, b.i)
	}
	x, y := a.float(), b.float()
	switch op {
	case "+":
		return floatVal(x + y), nil
	case "-":
		return floatVal(x - y), nil
	case "*":
		return floatVal(x * y), nil
	case "/":
		if y == 0 {
			return value{}, ErrDivisionByZero
		}
		return floatVal(x / y), nil
	case "//":
		if y == 0 {
			return value{}, ErrDivisionByZero
		}
		return floatVal(math.Floor(x / y)), nil
	case "%":
		if y == 0 {
			return value{}, ErrDivisionByZero
		}
		m := math.Mod(x, y)
		if m != 0 && (m < 0) != (y < 0) {
			m += y
		}
		return floatVal(m), nil
	case "**":
		if x == 0 && y < 0 {
			return value{}, ErrDivisionByZero
		}
		return pow(x, y)
	}
	return value{}, fmt.Errorf("unknown operator %s", op)
}

func intArith(op string, x, y int64) (value, error) {
	switch op {
	case "+":
		if r := x + y; (r > x) == (y > 0) {
			return intVal(r), nil
		}
		return floatVal(float64(x) + float64(y)), nil
	case "-":
		if r := x - y; (r < x) == (y > 0) {
			return intVal(r), nil
		}
		return floatVal(float64(x) - float64(y)), nil
	case "*":
		if r, ok := mulInt(x, y); ok {
			return intVal(r), nil
		}
		return floatVal(float64(x) * float64(y)), nil
	case "/":
		if y == 0 {
			return value{}, ErrDivisionByZero
		}
		return floatVal(float64(x) / float64(y)), nil
	case "//":
		if y == 0 {
			return value{}, ErrDivisionByZero
		}
		if x == math.MinInt64 && y == -1 {
			return floatVal(-float64(x)), nil
		}
		q := x / y
		if (x%y != 0) && ((x < 0) != (y < 0)) {
			q--
		}
		return intVal(q), nil
	case "%":
		if y == 0 {
			return value{}, ErrDivisionByZero
		}
		m := x % y
		if m != 0 && (m < 0) != (y < 0) {
			m += y
		}
		return intVal(m), nil
	case "**":
		if y < 0 {
			if x == 0 {
				return value{}, ErrDivisionByZero
			}
			return pow(float64(x), float64(y))
		}
		if r, ok := powInt(x, y); ok {
			return intVal(r), nil
		}
		return pow(float64(x), float64(y))
	}
	return value{}, fmt.Errorf("unknown operator %s", op)
}

func mulInt(x, y int64) (int64, bool) {
	if x == 0 || y == 0 {
		return 0, true
	}
	if (x == -1 && y == math.MinInt64) || (y == -1 && x == math.MinInt64) {
		return 0, false
	}
	r := x * y
	return r, r/y == x
}

// powInt squares its way to x**y, so the loop runs once per bit of y.
func powInt(x, y int64) (int64, bool) {
	r, base := int64(1), x
	for e := y; e > 0; e >>= 1 {
		var ok bool
		if e&1 == 1 {
			if r, ok = mulInt(r, base); !ok {
				return 0, false
			}
		}
		if e > 1 {
			if base, ok = mulInt(base, base); !ok {
				return 0, false
			}
		}
	}
	return r, true
}

func pow(x, y float64) (value, error) {
	r := math.Pow(x, y)
	if math.IsInf(r, 0) && !math.IsInf(x, 0) && !math.IsInf(y, 0) {
		return value{}, ErrOverflow
	}
	return floatVal(r), nil
}

// toInt truncates f like Python's int(), failing outside int64.
func toInt(f float64) (value, error) {
	if math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return value{}, ErrOverflow
	}
	return intVal(int64(f)), nil
}

// numbers flattens a single list argument, so max(1, 2) and max([1, 2]) agree.
func numbers(name string, args []value) ([]value, error) {
	if len(args) == 1 && args[0].isList {
		args = args[0].list
	}
	for _, a := range args {
		if a.isList {
			return nil, fmt.Errorf("%s: nested lists are not supported", name)
		}
	}
	return args, nil
}

func call(name string, args []value) (value, error) {
	switch name {
	case "abs":
		if len(args) != 1 || args[0].isList {
			return value{}, errors.New("abs() takes exactly one number")
		}
		if args[0].isInt {
			if args[0].i < 0 {
				return arith("-", intVal(0), args[0])
			}
			return args[0], nil
		}
		return floatVal(math.Abs(args[0].f)), nil
	case "round":
		return round(args)
	case "min", "max":
		nums, err := numbers(name, args)
		if err != nil {
			return value{}, err
		}
		if len(nums) == 0 {
			return value{}, fmt.Errorf("%s() arg is an empty sequence", name)
		}
		best := nums[0]
		for _, n := range nums[1:] {
			if (name == "min" && n.float() < best.float()) || (name == "max" && n.float() > best.float()) {
				best = n
			}
		}
		return best, nil
	case "sum":
		nums, err := numbers(name, args)
		if err != nil {
			return value{}, err
		}
		total := intVal(0)
		for _, n := range nums {
			if total, err = arith("+", total, n); err != nil {
				return value{}, err
			}
		}
		return total, nil
	case "len":
		if len(args) != 1 || !args[0].isList {
			return value{}, errors.New("len() takes exactly one list")
		}
		return intVal(int64(len(args[0].list))), nil
	case "int":
		if len(args) != 1 || args[0].isList {
			return value{}, errors.New("int() takes exactly one number")
		}
		if args[0].isInt {
			return args[0], nil
		}
		return toInt(math.Trunc(args[0].f))
	case "float":
		if len(args) != 1 || args[0].isList {
			return value{}, errors.New("float() takes exactly one number")
		}
		return floatVal(args[0].float()), nil
	}
	return value{}, fmt.Errorf("name %q is not defined", name)
}

// round uses round-half-to-even. Without digits the result is an integer.
func round(args []value) (value, error) {
	if len(args) < 1 || len(args) > 2 || args[0].isList {
		return value{}, errors.New("round() takes a number and optional digits")
	}
	if len(args) == 1 {
		if args[0].isInt {
			return args[0], nil
		}
		return toInt(math.RoundToEven(args[0].f))
	}
	if !args[1].isInt {
		return value{}, errors.New("round() digits must be an integer")
	}
	if args[0].isInt && args[1].i >= 0 {
		return args[0], nil
	}
	scale := math.Pow(10, float64(args[1].i))
	return floatVal(math.RoundToEven(args[0].float()*scale) / scale), nil
}
