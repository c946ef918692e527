package txflow

import (
	"reflect"
	"testing"
)

func TestParseDescriptor(t *testing.T) {
	desc := MustParseDescriptor("ERC721", erc721ABIJSON)

	t.Run("name", func(t *testing.T) {
		if desc.Name() != "ERC721" {
			t.Errorf("Expected ERC721, got %s", desc.Name())
		}
	})

	t.Run("operations sorted by name", func(t *testing.T) {
		var names []string
		for _, op := range desc.Operations() {
			names = append(names, op.Name)
		}
		want := []string{"approve", "donate", "mint", "ownerOf"}
		if !reflect.DeepEqual(names, want) {
			t.Errorf("Expected %v, got %v", want, names)
		}
	})

	t.Run("mutability", func(t *testing.T) {
		tests := []struct {
			op   string
			want Mutability
		}{
			{"mint", StateChanging},
			{"approve", StateChanging},
			{"donate", StateChanging},
			{"ownerOf", ReadOnly},
		}
		for _, tt := range tests {
			op, ok := desc.Operation(tt.op)
			if !ok {
				t.Fatalf("Expected operation %s", tt.op)
			}
			if op.Mutability != tt.want {
				t.Errorf("%s: expected %s, got %s", tt.op, tt.want, op.Mutability)
			}
		}
	})

	t.Run("signature", func(t *testing.T) {
		op, _ := desc.Operation("mint")
		if op.Signature() != "mint(address,string)" {
			t.Errorf("Unexpected signature %s", op.Signature())
		}
		if op.Payable {
			t.Error("mint should not be payable")
		}
	})

	t.Run("payable", func(t *testing.T) {
		op, _ := desc.Operation("donate")
		if !op.Payable {
			t.Error("donate should be payable")
		}
	})

	t.Run("constructor", func(t *testing.T) {
		ctor := desc.Constructor()
		if !reflect.DeepEqual(ctor.Inputs, []string{"string", "string"}) {
			t.Errorf("Unexpected constructor inputs %v", ctor.Inputs)
		}
		if ctor.Mutability != StateChanging {
			t.Error("Constructor should be state-changing")
		}
	})

	t.Run("unknown operation", func(t *testing.T) {
		if _, ok := desc.Operation("burn"); ok {
			t.Error("Expected burn to be absent")
		}
		if desc.HasOperation("burn") {
			t.Error("HasOperation should be false for burn")
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := ParseDescriptor("Bad", "{not json"); err == nil {
			t.Error("Expected error for invalid ABI")
		}
	})
}

func TestNewDescriptor(t *testing.T) {
	desc, err := NewDescriptor("Collection",
		OperationSpec{Constructor: true, Inputs: []string{"string", "string"}},
		OperationSpec{Name: "safeMint", Inputs: []string{"address", "string"}, Mutability: StateChanging},
		OperationSpec{Name: "balanceOf", Inputs: []string{"address"}, Outputs: []string{"uint256"}, Mutability: ReadOnly},
		OperationSpec{Name: "buy", Inputs: []string{"uint256"}, Mutability: StateChanging, Payable: true},
	)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	t.Run("state-changing operation", func(t *testing.T) {
		op, ok := desc.Operation("safeMint")
		if !ok {
			t.Fatal("Expected safeMint")
		}
		if op.Mutability != StateChanging || op.Signature() != "safeMint(address,string)" {
			t.Errorf("Unexpected operation %+v", op)
		}
	})

	t.Run("read-only operation", func(t *testing.T) {
		op, _ := desc.Operation("balanceOf")
		if op.Mutability != ReadOnly {
			t.Errorf("Expected read-only, got %s", op.Mutability)
		}
		if !reflect.DeepEqual(op.Outputs, []string{"uint256"}) {
			t.Errorf("Unexpected outputs %v", op.Outputs)
		}
	})

	t.Run("payable operation", func(t *testing.T) {
		op, _ := desc.Operation("buy")
		if !op.Payable {
			t.Error("Expected buy to be payable")
		}
	})

	t.Run("constructor", func(t *testing.T) {
		if got := desc.Constructor().Inputs; !reflect.DeepEqual(got, []string{"string", "string"}) {
			t.Errorf("Unexpected constructor inputs %v", got)
		}
	})

	t.Run("rejects unnamed operation", func(t *testing.T) {
		if _, err := NewDescriptor("X", OperationSpec{Inputs: []string{"uint256"}}); err == nil {
			t.Error("Expected error for unnamed operation")
		}
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		if _, err := NewDescriptor("X", OperationSpec{Name: "f", Inputs: []string{"notatype"}}); err == nil {
			t.Error("Expected error for invalid type")
		}
	})
}

func TestMutabilityString(t *testing.T) {
	if ReadOnly.String() != "read-only" || StateChanging.String() != "state-changing" {
		t.Errorf("Unexpected strings %q %q", ReadOnly, StateChanging)
	}
}
