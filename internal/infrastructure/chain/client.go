package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/ProofINer/proofin-backend/internal/reliability/retry"
)

// Client is the shared JSON-RPC connection to the chain, plus the backend
// signing key used for registry submissions.
type Client struct {
	eth     *ethclient.Client
	chainID *big.Int
	key     *ecdsa.PrivateKey
	logger  *slog.Logger
}

// NewClient dials the RPC endpoint (retried; node may come up after us) and
// loads the backend signing key. An empty key is allowed: reads work,
// submissions fail with a clear error.
func NewClient(ctx context.Context, rpcURL string, chainID int64, privateKeyHex string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	eth, err := retry.Do(ctx, retry.DialConfig(), logger, "chain dial",
		func(ctx context.Context) (*ethclient.Client, error) {
			return ethclient.DialContext(ctx, rpcURL)
		})
	if err != nil {
		return nil, fmt.Errorf("failed to dial chain rpc: %w", err)
	}

	c := &Client{
		eth:     eth,
		chainID: big.NewInt(chainID),
		logger:  logger,
	}

	if privateKeyHex != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid backend private key: %w", err)
		}
		c.key = key
	} else {
		logger.Warn("BACKEND_PRIVATE_KEY not set, registry submissions disabled")
	}

	return c, nil
}

// Eth exposes the underlying client for contract binding.
func (c *Client) Eth() *ethclient.Client { return c.eth }

// Transactor returns fresh signing options for one submission.
func (c *Client) Transactor(ctx context.Context) (*bind.TransactOpts, error) {
	if c.key == nil {
		return nil, errors.New("no signing key configured")
	}
	opts, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to build transactor: %w", err)
	}
	opts.Context = ctx
	return opts, nil
}

// WaitMined blocks until the transaction is confirmed and checks for
// revert. The caller's ctx bounds the wait.
func (c *Client) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, c.eth, tx)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for confirmation: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("transaction %s reverted", tx.Hash().Hex())
	}
	return receipt, nil
}

// Ping checks connectivity by asking for the current block number.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.eth.BlockNumber(ctx)
	return err
}

// Close closes the RPC connection.
func (c *Client) Close() {
	c.eth.Close()
}
