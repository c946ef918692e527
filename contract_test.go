package txflow

import (
	"errors"
	"math/big"
	"reflect"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestResolve(t *testing.T) {
	desc := MustParseDescriptor("ERC721", erc721ABIJSON)

	t.Run("binds address, descriptor and signer", func(t *testing.T) {
		b := testBinding(t)
		ref, err := Resolve(b, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", desc)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if ref.Address() != common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266") {
			t.Errorf("Unexpected address %s", ref.Address().Hex())
		}
		if ref.Descriptor() != desc || ref.Binding() != b {
			t.Error("Reference should keep descriptor and binding")
		}
		if !ref.HasOperation("mint") {
			t.Error("Expected mint to be callable")
		}
	})

	t.Run("accepts all lower and all upper case", func(t *testing.T) {
		b := testBinding(t)
		for _, addr := range []string{
			"0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266",
			"0xF39FD6E51AAD88F6F4CE6AB8827279CFFFB92266",
		} {
			if _, err := Resolve(b, addr, desc); err != nil {
				t.Errorf("%s: unexpected error %v", addr, err)
			}
		}
	})

	t.Run("same inputs give equivalent references", func(t *testing.T) {
		b := testBinding(t)
		addr := assignedAddress.Hex()

		first, err := Resolve(b, addr, desc)
		if err != nil {
			t.Fatal(err)
		}
		second, err := Resolve(b, addr, desc)
		if err != nil {
			t.Fatal(err)
		}
		if first == second {
			t.Error("Expected distinct values")
		}
		if first.Address() != second.Address() {
			t.Error("Expected the same address")
		}
		if !reflect.DeepEqual(first.OperationNames(), second.OperationNames()) {
			t.Error("Expected the same operation set")
		}
	})
}

func TestResolveNilDescriptor(t *testing.T) {
	o, backend := newTestOrchestrator(t)

	_, err := o.Resolve(assignedAddress.Hex(), nil)

	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigurationError, got %T: %v", err, err)
	}
	if !errors.Is(err, ErrNoDescriptor) {
		t.Errorf("Expected ErrNoDescriptor, got %v", err)
	}
	if FateOf(err) != FateNotSent {
		t.Errorf("Expected %v, got %v", FateNotSent, FateOf(err))
	}
	if backend.Calls() != 0 {
		t.Errorf("Expected no backend calls, got %d", backend.Calls())
	}
}

func TestResolveInvalidAddress(t *testing.T) {
	desc := MustParseDescriptor("ERC721", erc721ABIJSON)

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"too short", "0x1234"},
		{"too long", "0x" + strings.Repeat("1", 42)},
		{"non hex", "0x" + strings.Repeat("g", 40)},
		{"missing prefix", strings.Repeat("1", 40)},
		{"bad checksum", "0xF39Fd6e51aad88F6F4ce6aB8827279cffFb92266"},
		{"zero address", "0x0000000000000000000000000000000000000000"},
		{"ens name", "profilepics.eth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, backend := newTestOrchestrator(t)

			_, err := o.Resolve(tt.input, desc)

			var addrErr *InvalidAddressError
			if !errors.As(err, &addrErr) {
				t.Fatalf("Expected InvalidAddressError, got %T: %v", err, err)
			}
			if addrErr.Input != tt.input {
				t.Errorf("Expected input %q, got %q", tt.input, addrErr.Input)
			}
			if backend.Calls() != 0 {
				t.Errorf("Expected no backend calls, got %d", backend.Calls())
			}
		})
	}
}

func TestPrepare(t *testing.T) {
	o, backend := newTestOrchestrator(t)
	ref := deployedReference(t, o, backend)

	t.Run("packs selector and arguments", func(t *testing.T) {
		call, err := ref.Prepare("mint", testSigner, "ipfs://token-uri")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		method := ref.Descriptor().ABI().Methods["mint"]
		sel := call.Selector()
		if !reflect.DeepEqual(sel[:], method.ID) {
			t.Errorf("Expected selector %x, got %x", method.ID, sel)
		}
		want, err := ref.Descriptor().ABI().Pack("mint", testSigner, "ipfs://token-uri")
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(call.Calldata(), want) {
			t.Errorf("Calldata mismatch:\n got %x\nwant %x", call.Calldata(), want)
		}
		if call.Operation() != "mint" || call.Contract() != ref {
			t.Error("Call should remember its operation and contract")
		}
	})

	t.Run("unknown operation", func(t *testing.T) {
		_, err := ref.Prepare("burn", big.NewInt(1))
		if !errors.Is(err, ErrUnknownOperation) {
			t.Errorf("Expected ErrUnknownOperation, got %v", err)
		}
	})

	t.Run("read-only operation", func(t *testing.T) {
		_, err := ref.Prepare("ownerOf", big.NewInt(1))
		if !errors.Is(err, ErrNotStateChanging) {
			t.Errorf("Expected ErrNotStateChanging, got %v", err)
		}
	})

	if backend.Calls() != 0 {
		t.Errorf("Prepare should not touch the backend, got %d calls", backend.Calls())
	}
}
