package txflow

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var bigIntType = reflect.TypeOf(&big.Int{})

// coerceArgs checks arity, converts each raw value to the Go type go-ethereum
// packs for the matching ABI type, and verifies it packs on its own.
func coerceArgs(operation string, inputs abi.Arguments, raw []any) ([]any, error) {
	if len(raw) != len(inputs) {
		return nil, &ArgumentMismatchError{
			Operation: operation,
			Index:     -1,
			Err:       fmt.Errorf("%w: want %d, got %d", ErrArityMismatch, len(inputs), len(raw)),
		}
	}

	out := make([]any, len(raw))
	for i, v := range raw {
		t := inputs[i].Type
		converted, err := convertToABIType(v, t)
		if err == nil {
			_, err = abi.Arguments{{Type: t}}.Pack(converted)
		}
		if err != nil {
			return nil, &ArgumentMismatchError{
				Operation: operation,
				Index:     i,
				Expected:  t.String(),
				Err:       err,
			}
		}
		out[i] = converted
	}
	return out, nil
}

// convertToABIType handles common Go and string conversions for ABI encoding.
// Values it does not recognise are passed through for Pack to judge.
func convertToABIType(value any, t abi.Type) (any, error) {
	if value == nil {
		return nil, errors.New("nil argument")
	}
	switch t.T {
	case abi.AddressTy:
		return toAddress(value)
	case abi.UintTy, abi.IntTy:
		return toInteger(value, t)
	case abi.BoolTy:
		if s, ok := value.(string); ok {
			return strconv.ParseBool(strings.TrimSpace(s))
		}
	case abi.BytesTy:
		if s, ok := value.(string); ok {
			return hexutil.Decode(s)
		}
	case abi.FixedBytesTy:
		return toFixedBytes(value, t)
	}
	return value, nil
}

func toAddress(value any) (any, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		if v == nil {
			return nil, errors.New("nil address")
		}
		return *v, nil
	case string:
		if !common.IsHexAddress(v) {
			return nil, fmt.Errorf("%q is not a hex address", v)
		}
		return common.HexToAddress(v), nil
	default:
		return nil, fmt.Errorf("cannot use %T as address", value)
	}
}

func toInteger(value any, t abi.Type) (any, error) {
	n, err := toBigInt(value)
	if err != nil {
		return nil, err
	}

	if t.T == abi.UintTy {
		if n.Sign() < 0 || n.BitLen() > t.Size {
			return nil, fmt.Errorf("%s out of range for %s", n, t)
		}
	} else {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
		lower := new(big.Int).Neg(limit)
		if n.Cmp(lower) < 0 || n.Cmp(limit) >= 0 {
			return nil, fmt.Errorf("%s out of range for %s", n, t)
		}
	}

	target := t.GetType()
	if target == bigIntType {
		return n, nil
	}
	if t.T == abi.UintTy {
		return reflect.ValueOf(n.Uint64()).Convert(target).Interface(), nil
	}
	return reflect.ValueOf(n.Int64()).Convert(target).Interface(), nil
}

func toBigInt(value any) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		if v == nil {
			return nil, errors.New("nil integer")
		}
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case string:
		n, ok := new(big.Int).SetString(strings.TrimSpace(v), 0)
		if !ok {
			return nil, fmt.Errorf("%q is not an integer", v)
		}
		return n, nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return big.NewInt(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return new(big.Int).SetUint64(rv.Uint()), nil
	default:
		return nil, fmt.Errorf("cannot use %T as integer", value)
	}
}

func toFixedBytes(value any, t abi.Type) (any, error) {
	var raw []byte
	switch v := value.(type) {
	case string:
		b, err := hexutil.Decode(v)
		if err != nil {
			return nil, err
		}
		raw = b
	case []byte:
		raw = v
	case common.Hash:
		raw = v.Bytes()
	default:
		return value, nil
	}
	if len(raw) != t.Size {
		return nil, fmt.Errorf("want %d bytes, got %d", t.Size, len(raw))
	}
	arr := reflect.New(t.GetType()).Elem()
	reflect.Copy(arr, reflect.ValueOf(raw))
	return arr.Interface(), nil
}
