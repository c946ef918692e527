package txflow

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Call is a validated, packed state-changing call ready for submission.
// Call is immutable - modifier methods return new instances.
type Call struct {
	ref      *ContractReference
	method   abi.Method
	args     []any
	calldata []byte
	value    *big.Int
}

// newCall coerces rawArgs to the method's input types and packs them.
// Every failure is an ArgumentMismatchError.
func newCall(ref *ContractReference, method abi.Method, rawArgs []any) (*Call, error) {
	args, err := coerceArgs(method.Name, method.Inputs, rawArgs)
	if err != nil {
		return nil, err
	}

	packed, err := method.Inputs.Pack(args...)
	if err != nil {
		return nil, &ArgumentMismatchError{Operation: method.Name, Index: -1, Err: err}
	}

	calldata := make([]byte, 0, len(method.ID)+len(packed))
	calldata = append(calldata, method.ID...)
	calldata = append(calldata, packed...)

	return &Call{
		ref:      ref,
		method:   method,
		args:     args,
		calldata: calldata,
	}, nil
}

// Contract returns the target contract for this call.
func (c *Call) Contract() *ContractReference {
	return c.ref
}

// Operation returns the operation name.
func (c *Call) Operation() string {
	return c.method.Name
}

// Method returns the ABI method for this call.
func (c *Call) Method() abi.Method {
	return c.method
}

// Args returns the coerced arguments.
func (c *Call) Args() []any {
	return c.args
}

// Calldata returns the selector followed by the packed arguments.
func (c *Call) Calldata() []byte {
	out := make([]byte, len(c.calldata))
	copy(out, c.calldata)
	return out
}

// Selector returns the 4-byte function selector.
func (c *Call) Selector() [4]byte {
	var sel [4]byte
	copy(sel[:], c.method.ID[:4])
	return sel
}

// EthValue returns the wei attached to the call (nil if none).
func (c *Call) EthValue() *big.Int {
	return c.value
}

// WithValue attaches wei to the call. Only payable operations accept value.
//
// Returns a new Call with the value set.
func (c *Call) WithValue(amount *big.Int) (*Call, error) {
	if amount != nil && amount.Sign() != 0 && !c.method.IsPayable() {
		return nil, &ArgumentMismatchError{Operation: c.method.Name, Index: -1, Err: ErrNotPayable}
	}
	clone := c.clone()
	if amount != nil {
		clone.value = new(big.Int).Set(amount)
	} else {
		clone.value = nil
	}
	return clone, nil
}

// clone creates a shallow copy of the Call.
func (c *Call) clone() *Call {
	clone := *c
	clone.args = make([]any, len(c.args))
	copy(clone.args, c.args)
	return &clone
}
