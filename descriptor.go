package txflow

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Mutability says whether an operation may change contract state.
type Mutability uint8

const (
	// ReadOnly operations are view or pure functions.
	ReadOnly Mutability = iota

	// StateChanging operations require a transaction.
	StateChanging
)

func (m Mutability) String() string {
	if m == StateChanging {
		return "state-changing"
	}
	return "read-only"
}

// Operation is one callable entry of a contract interface.
type Operation struct {
	Name       string
	Inputs     []string
	Outputs    []string
	Mutability Mutability
	Payable    bool
}

// Signature returns the canonical signature, e.g. "mint(address,string)".
func (o Operation) Signature() string {
	return o.Name + "(" + strings.Join(o.Inputs, ",") + ")"
}

// OperationSpec statically declares an operation for NewDescriptor.
// A spec with Constructor set describes the creation arguments.
type OperationSpec struct {
	Name        string
	Inputs      []string
	Outputs     []string
	Mutability  Mutability
	Payable     bool
	Constructor bool
}

// Descriptor is the immutable interface description of a contract.
type Descriptor struct {
	name string
	abi  abi.ABI
}

// ParseDescriptor builds a Descriptor from ABI JSON.
func ParseDescriptor(name, abiJSON string) (*Descriptor, error) {
	parsed, err := ParseABI(abiJSON)
	if err != nil {
		return nil, fmt.Errorf("txflow: parse abi for %s: %w", name, err)
	}
	return &Descriptor{name: name, abi: parsed}, nil
}

// MustParseDescriptor is like ParseDescriptor but panics on error.
func MustParseDescriptor(name, abiJSON string) *Descriptor {
	d, err := ParseDescriptor(name, abiJSON)
	if err != nil {
		panic(err)
	}
	return d
}

// NewDescriptor builds a Descriptor from a static list of operations.
func NewDescriptor(name string, specs ...OperationSpec) (*Descriptor, error) {
	type jsonArg struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	type jsonEntry struct {
		Type            string    `json:"type"`
		Name            string    `json:"name,omitempty"`
		Inputs          []jsonArg `json:"inputs"`
		Outputs         []jsonArg `json:"outputs,omitempty"`
		StateMutability string    `json:"stateMutability"`
	}

	args := func(types []string) []jsonArg {
		out := make([]jsonArg, len(types))
		for i, t := range types {
			out[i] = jsonArg{Type: t}
		}
		return out
	}

	entries := make([]jsonEntry, 0, len(specs))
	for _, s := range specs {
		e := jsonEntry{
			Type:            "function",
			Name:            s.Name,
			Inputs:          args(s.Inputs),
			Outputs:         args(s.Outputs),
			StateMutability: stateMutability(s.Mutability, s.Payable),
		}
		if s.Constructor {
			e.Type = "constructor"
			e.Name = ""
			e.Outputs = nil
		} else if s.Name == "" {
			return nil, fmt.Errorf("txflow: descriptor %s: operation without a name", name)
		}
		entries = append(entries, e)
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("txflow: descriptor %s: %w", name, err)
	}
	return ParseDescriptor(name, string(raw))
}

func stateMutability(m Mutability, payable bool) string {
	switch {
	case m == ReadOnly:
		return "view"
	case payable:
		return "payable"
	default:
		return "nonpayable"
	}
}

// Name returns the contract name.
func (d *Descriptor) Name() string {
	return d.name
}

// ABI returns the parsed ABI.
func (d *Descriptor) ABI() abi.ABI {
	return d.abi
}

// Operation looks up an operation by name.
func (d *Descriptor) Operation(name string) (Operation, bool) {
	method, ok := d.abi.Methods[name]
	if !ok {
		return Operation{}, false
	}
	return operationFromMethod(method), true
}

// HasOperation reports whether the descriptor declares name.
func (d *Descriptor) HasOperation(name string) bool {
	_, ok := d.abi.Methods[name]
	return ok
}

// Operations returns all operations sorted by name.
func (d *Descriptor) Operations() []Operation {
	ops := make([]Operation, 0, len(d.abi.Methods))
	for _, m := range d.abi.Methods {
		ops = append(ops, operationFromMethod(m))
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].Name < ops[j].Name })
	return ops
}

// Constructor returns the creation operation. A contract without an
// explicit constructor has one with no inputs.
func (d *Descriptor) Constructor() Operation {
	op := operationFromMethod(d.abi.Constructor)
	op.Name = "constructor"
	op.Mutability = StateChanging
	return op
}

func operationFromMethod(m abi.Method) Operation {
	op := Operation{
		Name:       m.Name,
		Inputs:     typeNames(m.Inputs),
		Outputs:    typeNames(m.Outputs),
		Mutability: StateChanging,
		Payable:    m.IsPayable(),
	}
	if m.IsConstant() {
		op.Mutability = ReadOnly
	}
	return op
}

func typeNames(args abi.Arguments) []string {
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = a.Type.String()
	}
	return names
}

// ParseABI parses a JSON ABI string into an abi.ABI.
func ParseABI(abiJSON string) (abi.ABI, error) {
	return abi.JSON(strings.NewReader(abiJSON))
}

// MustParseABI is like ParseABI but panics on error.
func MustParseABI(abiJSON string) abi.ABI {
	parsed, err := ParseABI(abiJSON)
	if err != nil {
		panic(err)
	}
	return parsed
}
