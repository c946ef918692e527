package txflow

import (
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/branched-services/go-txflow/txflowtest"
)

// Anvil account 0, derived from txflowtest.TestKey.
var testSigner = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

// assignedAddress is the address the stub hands to the test deployment.
var assignedAddress = common.HexToAddress("0x" + strings.Repeat("a", 39) + "1")

const erc721ABIJSON = `[
	{
		"type": "constructor",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "name", "type": "string"},
			{"name": "symbol", "type": "string"}
		]
	},
	{
		"name": "mint",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "to", "type": "address"},
			{"name": "uri", "type": "string"}
		],
		"outputs": [
			{"name": "", "type": "uint256"}
		]
	},
	{
		"name": "ownerOf",
		"type": "function",
		"stateMutability": "view",
		"inputs": [
			{"name": "tokenId", "type": "uint256"}
		],
		"outputs": [
			{"name": "", "type": "address"}
		]
	},
	{
		"name": "approve",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "to", "type": "address"},
			{"name": "tokenId", "type": "uint256"}
		],
		"outputs": []
	},
	{
		"name": "donate",
		"type": "function",
		"stateMutability": "payable",
		"inputs": [],
		"outputs": []
	}
]`

var testBytecode = []byte{0x60, 0x80, 0x60, 0x40, 0x52, 0x34, 0x80, 0x15}

func testBinding(t *testing.T) *NetworkBinding {
	t.Helper()
	b, err := NewNetworkBinding(DefaultNetworks(), "localhost", MapSource{
		"LOCALHOST_PRIVATE_KEY": txflowtest.TestKey,
	})
	if err != nil {
		t.Fatalf("Failed to bind: %v", err)
	}
	return b
}

func newTestOrchestrator(t *testing.T, opts ...Option) (*Orchestrator, *txflowtest.Backend) {
	t.Helper()
	backend := txflowtest.NewBackend()
	opts = append([]Option{WithPollInterval(10 * time.Millisecond)}, opts...)
	return NewOrchestrator(testBinding(t), backend, opts...), backend
}

// deployedReference installs code at assignedAddress and resolves it.
func deployedReference(t *testing.T, o *Orchestrator, backend *txflowtest.Backend) *ContractReference {
	t.Helper()
	backend.SetCode(assignedAddress, txflowtest.DefaultCode)
	ref, err := o.Resolve(assignedAddress.Hex(), MustParseDescriptor("ERC721", erc721ABIJSON))
	if err != nil {
		t.Fatalf("Failed to resolve: %v", err)
	}
	return ref
}
