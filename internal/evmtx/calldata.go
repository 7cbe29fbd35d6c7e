package evmtx

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Function is a parsed function signature such as "transfer(address,uint256)".
type Function struct {
	Name   string
	Inputs []string
}

// Signature returns the canonical signature used for the selector.
func (f Function) Signature() string {
	return f.Name + "(" + strings.Join(f.Inputs, ",") + ")"
}

// Selector returns the first four bytes of Keccak256(Signature()).
func (f Function) Selector() []byte {
	return Keccak256([]byte(f.Signature()))[:4]
}

// ParseFunction parses a human-readable signature. A leading "function"
// keyword, parameter names, data locations and a trailing modifier list are
// accepted and dropped, as is a returns clause:
//
//	function batchSend(address[] calldata recipients, uint256 amount) external payable
//	function balanceOf(address owner) external view returns (uint256)
func ParseFunction(signature string) (Function, error) {
	s := strings.TrimSpace(signature)
	s = strings.TrimPrefix(s, "function ")
	open := strings.Index(s, "(")
	closing := matchingParen(s, open)
	if open <= 0 || closing < 0 {
		return Function{}, fmt.Errorf("invalid function signature %q", signature)
	}
	fn := Function{Name: strings.TrimSpace(s[:open])}
	if strings.ContainsAny(fn.Name, " \t") {
		return Function{}, fmt.Errorf("invalid function name %q", fn.Name)
	}

	params := strings.TrimSpace(s[open+1 : closing])
	if params == "" {
		return fn, nil
	}
	for _, param := range splitTopLevel(params) {
		fields := strings.Fields(param)
		if len(fields) == 0 {
			return Function{}, fmt.Errorf("empty parameter in %q", signature)
		}
		fn.Inputs = append(fn.Inputs, canonicalType(fields[0]))
	}
	return fn, nil
}

// matchingParen returns the index of the ")" closing the "(" at open, or -1.
// Anything after it, such as a returns clause, is not part of the inputs.
func matchingParen(s string, open int) int {
	if open < 0 {
		return -1
	}
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// canonicalType expands the uint/int aliases, including inside arrays.
func canonicalType(t string) string {
	base, suffix := t, ""
	if i := strings.Index(t, "["); i >= 0 {
		base, suffix = t[:i], t[i:]
	}
	switch base {
	case "uint":
		base = "uint256"
	case "int":
		base = "int256"
	}
	return base + suffix
}

// EncodeCall returns "0x"-prefixed call data for signature with args.
//
// Arguments are strings: addresses and bytes in hex, integers in decimal or
// "0x" hex, booleans as "true"/"false", arrays as "[a,b,c]".
func EncodeCall(signature string, args []string) (string, error) {
	fn, err := ParseFunction(signature)
	if err != nil {
		return "", err
	}
	if len(args) != len(fn.Inputs) {
		return "", fmt.Errorf("%s expects %d arguments, got %d", fn.Signature(), len(fn.Inputs), len(args))
	}

	arguments := make(abi.Arguments, len(fn.Inputs))
	values := make([]interface{}, len(fn.Inputs))
	for i, typeName := range fn.Inputs {
		if strings.HasPrefix(typeName, "(") || strings.HasPrefix(typeName, "tuple") {
			return "", fmt.Errorf("argument %d: tuple types are not supported", i)
		}
		typ, err := abi.NewType(typeName, "", nil)
		if err != nil {
			return "", fmt.Errorf("argument %d: %w", i, err)
		}
		value, err := convertArg(typ, args[i])
		if err != nil {
			return "", fmt.Errorf("argument %d (%s): %w", i, typeName, err)
		}
		arguments[i] = abi.Argument{Type: typ}
		values[i] = value.Interface()
	}

	packed, err := arguments.Pack(values...)
	if err != nil {
		return "", fmt.Errorf("failed to pack arguments: %w", err)
	}
	return hexutil.Encode(append(fn.Selector(), packed...)), nil
}

// convertArg parses s into a value of typ's Go type.
func convertArg(typ abi.Type, s string) (reflect.Value, error) {
	s = strings.TrimSpace(s)
	switch typ.T {
	case abi.AddressTy:
		if !common.IsHexAddress(s) {
			return reflect.Value{}, fmt.Errorf("invalid address %q", s)
		}
		return reflect.ValueOf(common.HexToAddress(s)), nil

	case abi.UintTy, abi.IntTy:
		n, ok := new(big.Int).SetString(s, 0)
		if !ok {
			return reflect.Value{}, fmt.Errorf("invalid integer %q", s)
		}
		return integerValue(typ, n)

	case abi.BoolTy:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid bool %q", s)
		}
		return reflect.ValueOf(b), nil

	case abi.StringTy:
		return reflect.ValueOf(s), nil

	case abi.BytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid bytes %q: %w", s, err)
		}
		return reflect.ValueOf(b), nil

	case abi.FixedBytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid bytes%d %q: %w", typ.Size, s, err)
		}
		if len(b) != typ.Size {
			return reflect.Value{}, fmt.Errorf("bytes%d needs %d bytes, got %d", typ.Size, typ.Size, len(b))
		}
		arr := reflect.New(typ.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr, nil

	case abi.SliceTy, abi.ArrayTy:
		elems, err := splitArray(s)
		if err != nil {
			return reflect.Value{}, err
		}
		var out reflect.Value
		if typ.T == abi.ArrayTy {
			if len(elems) != typ.Size {
				return reflect.Value{}, fmt.Errorf("array needs %d elements, got %d", typ.Size, len(elems))
			}
			out = reflect.New(typ.GetType()).Elem()
		} else {
			out = reflect.MakeSlice(typ.GetType(), len(elems), len(elems))
		}
		for i, e := range elems {
			v, err := convertArg(*typ.Elem, e)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			out.Index(i).Set(v)
		}
		return out, nil

	default:
		return reflect.Value{}, fmt.Errorf("unsupported type %s", typ.String())
	}
}

// integerValue range-checks n and converts it to the Go type abi expects:
// uint8/16/32/64 and their signed forms map to fixed-width ints, every other
// width to *big.Int.
func integerValue(typ abi.Type, n *big.Int) (reflect.Value, error) {
	if typ.T == abi.UintTy {
		if n.Sign() < 0 || n.BitLen() > typ.Size {
			return reflect.Value{}, fmt.Errorf("%s out of range for uint%d", n, typ.Size)
		}
	} else {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(typ.Size-1))
		if n.Cmp(limit) >= 0 || n.Cmp(new(big.Int).Neg(limit)) < 0 {
			return reflect.Value{}, fmt.Errorf("%s out of range for int%d", n, typ.Size)
		}
	}

	goType := typ.GetType()
	switch goType.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return reflect.ValueOf(n.Uint64()).Convert(goType), nil
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return reflect.ValueOf(n.Int64()).Convert(goType), nil
	default:
		return reflect.ValueOf(new(big.Int).Set(n)), nil
	}
}

// splitArray parses "[a,b,c]" into its top-level elements.
func splitArray(s string) ([]string, error) {
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("array argument must be wrapped in brackets, got %q", s)
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return nil, nil
	}
	return splitTopLevel(inner), nil
}

// splitTopLevel splits on commas not nested in brackets or parentheses.
func splitTopLevel(s string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i, c := range s {
		switch c {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(s[start:]))
}
