// Package contract reads collection metadata from the on-chain contract
// and gathers it into a dataset comparable with grouped subgraph
// collections.
package contract

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/agentstation/nftrecon/pkg/constants"
	"github.com/agentstation/nftrecon/pkg/errors"
)

// DefaultABI describes the view function returning a collection's
// metadata tuple.
const DefaultABI = `[{
	"type": "function",
	"name": "getCollection",
	"stateMutability": "view",
	"inputs": [{"name": "id", "type": "uint256", "internalType": "uint256"}],
	"outputs": [
		{"name": "name", "type": "string", "internalType": "string"},
		{"name": "artistName", "type": "string", "internalType": "string"},
		{"name": "editionCount", "type": "uint256", "internalType": "uint256"},
		{"name": "id", "type": "uint256", "internalType": "uint256"}
	]
}]`

// Metadata is the tuple the contract returns for one collection.
type Metadata struct {
	Name         string
	ArtistName   string
	EditionCount int
	ID           string
}

// Reader reads one collection's metadata.
type Reader interface {
	ReadCollection(ctx context.Context, id string) (Metadata, error)
}

// Config selects the contract and view function to call.
type Config struct {
	RPCURL  string
	Address string
	ABI     string
	Method  string
}

// EthReader calls a view function through go-ethereum's bound contract.
type EthReader struct {
	contract *bind.BoundContract
	method   string
	client   *ethclient.Client
}

// Dial connects to the RPC endpoint and binds the configured contract.
func Dial(ctx context.Context, config Config) (*EthReader, error) {
	var missing []string
	if config.RPCURL == "" {
		missing = append(missing, "rpc_url")
	}
	if config.Address == "" {
		missing = append(missing, "contract_address")
	}
	if len(missing) > 0 {
		return nil, errors.NewMissingConfigError("contract", missing...)
	}

	client, err := ethclient.DialContext(ctx, config.RPCURL)
	if err != nil {
		return nil, errors.NewConfigError("contract", "failed to dial RPC endpoint", err)
	}

	reader, err := NewReader(client, config.Address, config.ABI, config.Method)
	if err != nil {
		client.Close()
		return nil, err
	}
	reader.client = client
	return reader, nil
}

// NewReader binds a contract on an existing caller. Empty abiJSON and
// method fall back to DefaultABI and DefaultContractMethod.
func NewReader(caller bind.ContractCaller, address, abiJSON, method string) (*EthReader, error) {
	if !common.IsHexAddress(address) {
		return nil, errors.NewValidationError("contract_address", address, "not a hex address")
	}
	if abiJSON == "" {
		abiJSON = DefaultABI
	}
	if method == "" {
		method = constants.DefaultContractMethod
	}

	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, errors.WrapParse("abi", "contract abi", err)
	}
	m, ok := parsed.Methods[method]
	if !ok {
		return nil, errors.NewValidationError("contract_method", method, "method not found in ABI")
	}
	if len(m.Inputs) != 1 || len(m.Outputs) < 3 {
		return nil, errors.NewValidationError("contract_method", method,
			"expected one id input and (name, artistName, editionCount[, id]) outputs")
	}

	contract := bind.NewBoundContract(common.HexToAddress(address), parsed, caller, nil, nil)
	return &EthReader{contract: contract, method: method}, nil
}

// Close releases the RPC connection opened by Dial.
func (r *EthReader) Close() {
	if r.client != nil {
		r.client.Close()
	}
}

// ReadCollection calls the view function for id.
func (r *EthReader) ReadCollection(ctx context.Context, id string) (Metadata, error) {
	n, ok := new(big.Int).SetString(id, 10)
	if !ok {
		return Metadata{}, fmt.Errorf("collection id %q is not a decimal integer", id)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.ContractCallTimeout)
	defer cancel()

	var out []any
	if err := r.contract.Call(&bind.CallOpts{Context: ctx}, &out, r.method, n); err != nil {
		return Metadata{}, err
	}
	return decodeMetadata(id, out)
}

// decodeMetadata converts the unpacked outputs into Metadata.
func decodeMetadata(id string, out []any) (Metadata, error) {
	if len(out) < 3 {
		return Metadata{}, fmt.Errorf("expected at least 3 outputs, got %d", len(out))
	}
	name, ok := out[0].(string)
	if !ok {
		return Metadata{}, fmt.Errorf("name output is %T, want string", out[0])
	}
	artist, ok := out[1].(string)
	if !ok {
		return Metadata{}, fmt.Errorf("artistName output is %T, want string", out[1])
	}
	editions, err := toInt(out[2])
	if err != nil {
		return Metadata{}, fmt.Errorf("editionCount output: %w", err)
	}

	meta := Metadata{Name: name, ArtistName: artist, EditionCount: editions, ID: id}
	if len(out) > 3 {
		if n, ok := out[3].(*big.Int); ok {
			meta.ID = n.String()
		}
	}
	return meta, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case *big.Int:
		if !n.IsInt64() {
			return 0, fmt.Errorf("value %s overflows int64", n)
		}
		return int(n.Int64()), nil
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return int(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", n)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
