package txflow

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ContractReference is a callable handle to a contract instance, valid only
// under the binding it was resolved with.
type ContractReference struct {
	address    common.Address
	descriptor *Descriptor
	binding    *NetworkBinding
}

// Resolve validates address and binds it to desc and the binding's signer.
// It does not check that code exists at the address; that happens on submit.
func Resolve(binding *NetworkBinding, address string, desc *Descriptor) (*ContractReference, error) {
	if desc == nil {
		return nil, &ConfigurationError{Network: binding.Name(), Err: ErrNoDescriptor}
	}
	addr, err := ParseAddress(address)
	if err != nil {
		return nil, err
	}
	return &ContractReference{
		address:    addr,
		descriptor: desc,
		binding:    binding,
	}, nil
}

// ParseAddress validates a hex account address. Mixed-case input must carry
// a valid EIP-55 checksum and the zero address is rejected.
func ParseAddress(s string) (common.Address, error) {
	input := strings.TrimSpace(s)
	if !common.IsHexAddress(input) {
		return common.Address{}, &InvalidAddressError{Input: s, Reason: "not a 20-byte hex address"}
	}
	if !has0xPrefix(input) {
		return common.Address{}, &InvalidAddressError{Input: s, Reason: "missing 0x prefix"}
	}

	body := input[2:]
	if strings.ToLower(body) != body && strings.ToUpper(body) != body {
		mixed, err := common.NewMixedcaseAddressFromString(input)
		if err != nil || !mixed.ValidChecksum() {
			return common.Address{}, &InvalidAddressError{Input: s, Reason: "bad EIP-55 checksum"}
		}
	}

	addr := common.HexToAddress(input)
	if addr == (common.Address{}) {
		return common.Address{}, &InvalidAddressError{Input: s, Reason: "zero address"}
	}
	return addr, nil
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// Address returns the contract address.
func (c *ContractReference) Address() common.Address {
	return c.address
}

// Descriptor returns the interface descriptor.
func (c *ContractReference) Descriptor() *Descriptor {
	return c.descriptor
}

// Binding returns the network binding the reference was resolved under.
func (c *ContractReference) Binding() *NetworkBinding {
	return c.binding
}

// HasOperation returns true if the contract declares the operation.
func (c *ContractReference) HasOperation(name string) bool {
	return c.descriptor.HasOperation(name)
}

// OperationNames returns the names of all declared operations, sorted.
func (c *ContractReference) OperationNames() []string {
	ops := c.descriptor.Operations()
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = op.Name
	}
	return names
}

// Prepare validates args for a state-changing operation and packs the call.
// It performs no network I/O.
func (c *ContractReference) Prepare(operation string, args ...any) (*Call, error) {
	method, ok := c.descriptor.abi.Methods[operation]
	if !ok {
		return nil, &ArgumentMismatchError{Operation: operation, Index: -1, Err: ErrUnknownOperation}
	}
	if method.IsConstant() {
		return nil, &ArgumentMismatchError{Operation: operation, Index: -1, Err: ErrNotStateChanging}
	}
	return newCall(c, method, args)
}
