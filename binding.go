package txflow

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Network describes an EVM endpoint and the credential that signs for it.
type Network struct {
	// URL is the JSON-RPC endpoint.
	URL string
	// ChainID is the EIP-155 chain id served by URL.
	ChainID uint64
	// KeyVar names the credential holding the hex private key.
	KeyVar string
}

// DefaultNetworks returns the built-in network table.
func DefaultNetworks() map[string]Network {
	return map[string]Network{
		"sepolia": {
			URL:     "https://0xrpc.io/sep",
			ChainID: 11155111,
			KeyVar:  "SEPOLIA_PRIVATE_KEY",
		},
		"lisk-sepolia": {
			URL:     "https://rpc.sepolia-api.lisk.com",
			ChainID: 4202,
			KeyVar:  "LISK_SEPOLIA_PRIVATE_KEY",
		},
		"localhost": {
			URL:     "http://127.0.0.1:8545",
			ChainID: 31337,
			KeyVar:  "LOCALHOST_PRIVATE_KEY",
		},
	}
}

// NetworkBinding is the endpoint, chain and signing identity used for one run.
// It is immutable once created.
type NetworkBinding struct {
	name    string
	url     string
	chainID *big.Int
	key     *ecdsa.PrivateKey
	from    common.Address
}

// NewNetworkBinding resolves the named network and its signing key.
// It performs no network I/O.
func NewNetworkBinding(networks map[string]Network, name string, creds CredentialSource) (*NetworkBinding, error) {
	network, ok := networks[name]
	if !ok {
		return nil, &ConfigurationError{
			Network: name,
			Err:     fmt.Errorf("%w (known: %s)", ErrUnknownNetwork, strings.Join(networkNames(networks), ", ")),
		}
	}
	if network.URL == "" || network.ChainID == 0 {
		return nil, &ConfigurationError{Network: name, Err: ErrInvalidNetwork}
	}
	if network.KeyVar == "" {
		return nil, &ConfigurationError{Network: name, Err: fmt.Errorf("%w: no credential name configured", ErrMissingCredential)}
	}
	if creds == nil {
		creds = EnvSource{}
	}

	secret, ok := creds.Lookup(network.KeyVar)
	if !ok {
		return nil, &ConfigurationError{Network: name, Err: fmt.Errorf("%w: %s", ErrMissingCredential, network.KeyVar)}
	}
	key, err := parsePrivateKey(secret)
	if err != nil {
		return nil, &ConfigurationError{Network: name, Err: fmt.Errorf("%w: %s: %v", ErrMalformedKey, network.KeyVar, err)}
	}

	return &NetworkBinding{
		name:    name,
		url:     network.URL,
		chainID: new(big.Int).SetUint64(network.ChainID),
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// parsePrivateKey accepts a 64 character hex key with an optional 0x prefix.
func parsePrivateKey(secret string) (*ecdsa.PrivateKey, error) {
	s := strings.TrimSpace(secret)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != 64 {
		return nil, fmt.Errorf("want 64 hex characters, got %d", len(s))
	}
	return crypto.HexToECDSA(s)
}

func networkNames(networks map[string]Network) []string {
	names := make([]string, 0, len(networks))
	for n := range networks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Name returns the network name.
func (b *NetworkBinding) Name() string {
	if b == nil {
		return ""
	}
	return b.name
}

// EndpointURL returns the JSON-RPC endpoint.
func (b *NetworkBinding) EndpointURL() string {
	return b.url
}

// ChainID returns a copy of the chain id.
func (b *NetworkBinding) ChainID() *big.Int {
	return new(big.Int).Set(b.chainID)
}

// From returns the signer address.
func (b *NetworkBinding) From() common.Address {
	return b.from
}

// TransactOpts returns fresh transaction options signed by the binding's key.
// Nonce, gas price and gas limit are left to the backend.
func (b *NetworkBinding) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(b.key, b.chainID)
	if err != nil {
		return nil, &ConfigurationError{Network: b.name, Err: err}
	}
	opts.Context = ctx
	return opts, nil
}

// Dial connects to the binding's endpoint and checks that it serves the
// configured chain.
func Dial(ctx context.Context, b *NetworkBinding) (*ethclient.Client, error) {
	client, err := ethclient.DialContext(ctx, b.url)
	if err != nil {
		return nil, &ConfigurationError{Network: b.name, Err: fmt.Errorf("dial %s: %w", b.url, err)}
	}
	remote, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, &TransportError{Network: b.name, Op: "query chain id from " + b.url, Err: err}
	}
	if remote.Cmp(b.chainID) != 0 {
		client.Close()
		return nil, &ConfigurationError{
			Network: b.name,
			Err:     fmt.Errorf("%w: endpoint reports %s, configured %s", ErrChainMismatch, remote, b.chainID),
		}
	}
	return client, nil
}
