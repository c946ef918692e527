package txflow

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Artifact is a compiled contract: its interface and creation bytecode.
type Artifact struct {
	ContractName string
	Descriptor   *Descriptor
	Bytecode     []byte
}

// artifactJSON covers Hardhat ("bytecode": "0x...") and Foundry
// ("bytecode": {"object": "0x..."}) output.
type artifactJSON struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     json.RawMessage `json:"bytecode"`
}

// LoadArtifact reads a compiled contract artifact from path. When the file
// does not name the contract, the file name without extension is used.
func LoadArtifact(path string) (*Artifact, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("txflow: read artifact: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ParseArtifact(name, raw)
}

// ParseArtifact decodes artifact JSON. fallbackName is used when the JSON has
// no contractName.
func ParseArtifact(fallbackName string, raw []byte) (*Artifact, error) {
	var doc artifactJSON
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("txflow: decode artifact: %w", err)
	}
	name := doc.ContractName
	if name == "" {
		name = fallbackName
	}
	if len(doc.ABI) == 0 {
		return nil, fmt.Errorf("txflow: artifact %s has no abi", name)
	}

	desc, err := ParseDescriptor(name, string(doc.ABI))
	if err != nil {
		return nil, err
	}
	code, err := decodeBytecode(doc.Bytecode)
	if err != nil {
		return nil, fmt.Errorf("txflow: artifact %s bytecode: %w", name, err)
	}

	return &Artifact{ContractName: name, Descriptor: desc, Bytecode: code}, nil
}

func decodeBytecode(raw json.RawMessage) ([]byte, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var hex string
	if err := json.Unmarshal(raw, &hex); err != nil {
		var foundry struct {
			Object string `json:"object"`
		}
		if err := json.Unmarshal(raw, &foundry); err != nil {
			return nil, err
		}
		hex = foundry.Object
	}
	if hex == "" || hex == "0x" {
		return nil, nil
	}
	if !strings.HasPrefix(hex, "0x") {
		hex = "0x" + hex
	}
	return hexutil.Decode(hex)
}
