// Package record persists deployed contract addresses per chain so later
// runs can resolve them by key.
package record

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the per-chain record file.
const FileName = "deployed_addresses.yaml"

// ErrNotFound indicates no record exists for the key on that chain.
var ErrNotFound = errors.New("record: deployment not found")

// Record describes one deployed contract.
type Record struct {
	Key         string    `yaml:"key"`
	Contract    string    `yaml:"contract"`
	Address     string    `yaml:"address"`
	TxHash      string    `yaml:"tx_hash"`
	BlockNumber uint64    `yaml:"block_number"`
	Network     string    `yaml:"network"`
	ChainID     uint64    `yaml:"chain_id"`
	RunID       string    `yaml:"run_id,omitempty"`
	DeployedAt  time.Time `yaml:"deployed_at"`
}

type document struct {
	ChainID     uint64            `yaml:"chain_id"`
	Deployments map[string]Record `yaml:"deployments"`
}

// Store keeps records under dir/chain-<id>/deployed_addresses.yaml.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the record file for chainID.
func (s *Store) Path(chainID uint64) string {
	return filepath.Join(s.dir, fmt.Sprintf("chain-%d", chainID), FileName)
}

// Save adds or replaces the record for r.Key on r.ChainID.
func (s *Store) Save(r Record) error {
	if r.Key == "" {
		return errors.New("record: key is required")
	}
	doc, err := s.load(r.ChainID)
	if err != nil {
		return err
	}
	doc.Deployments[r.Key] = r

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("record: encode: %w", err)
	}

	path := s.Path(r.ChainID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("record: %w", err)
	}
	return nil
}

// Lookup returns the record for key on chainID.
func (s *Store) Lookup(chainID uint64, key string) (Record, error) {
	doc, err := s.load(chainID)
	if err != nil {
		return Record{}, err
	}
	r, ok := doc.Deployments[key]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s on chain %d", ErrNotFound, key, chainID)
	}
	return r, nil
}

// List returns all records for chainID sorted by key.
func (s *Store) List(chainID uint64) ([]Record, error) {
	doc, err := s.load(chainID)
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(doc.Deployments))
	for _, r := range doc.Deployments {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *Store) load(chainID uint64) (*document, error) {
	doc := &document{ChainID: chainID, Deployments: make(map[string]Record)}
	raw, err := os.ReadFile(s.Path(chainID))
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("record: %w", err)
	}
	if err := yaml.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("record: decode %s: %w", s.Path(chainID), err)
	}
	if doc.Deployments == nil {
		doc.Deployments = make(map[string]Record)
	}
	return doc, nil
}
