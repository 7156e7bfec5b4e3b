package registry

import (
	"context"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"

	"github.com/ProofINer/proofin-backend/internal/domain"
	"github.com/ProofINer/proofin-backend/internal/infrastructure/chain"
	"github.com/ProofINer/proofin-backend/internal/observability/metrics"
	"github.com/ProofINer/proofin-backend/internal/reliability/circuitbreaker"
)

// gateway is the shared submit/read plumbing under the four registries.
// Submissions wait for confirmation; reads are plain calls. A per-gateway
// circuit breaker fails fast while the RPC endpoint is down; nothing here
// ever retries a failed call.
type gateway struct {
	name     string
	contract *bind.BoundContract
	client   *chain.Client
	breaker  *circuitbreaker.CircuitBreaker
	logger   *slog.Logger
}

func newGateway(name, address, abiJSON string, client *chain.Client, logger *slog.Logger) (*gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !common.IsHexAddress(address) {
		return nil, domain.NewValidationError("%s registry address %q is not a valid contract address", name, address)
	}

	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return nil, err
	}

	eth := client.Eth()
	bound := bind.NewBoundContract(common.HexToAddress(address), parsed, eth, eth, eth)

	return &gateway{
		name:     name,
		contract: bound,
		client:   client,
		breaker:  circuitbreaker.New(5, 2, 30*time.Second),
		logger:   logger.With(slog.String("registry", name)),
	}, nil
}

// submit performs a state-changing call and waits for it to be mined.
// value attaches native funds to the transaction (vault deposits).
func (g *gateway) submit(ctx context.Context, method string, value *big.Int, args ...interface{}) (*domain.Receipt, error) {
	start := time.Now()
	var receipt *domain.Receipt

	err := g.breaker.Execute(func() error {
		opts, err := g.client.Transactor(ctx)
		if err != nil {
			return err
		}
		if value != nil {
			opts.Value = value
		}

		tx, err := g.contract.Transact(opts, method, args...)
		if err != nil {
			return err
		}

		mined, err := g.client.WaitMined(ctx, tx)
		if err != nil {
			return err
		}

		receipt = &domain.Receipt{
			TxHash:      mined.TxHash.Hex(),
			BlockNumber: mined.BlockNumber.Uint64(),
		}
		return nil
	})
	if err != nil {
		metrics.ObserveRegistryCall(g.name, method, "error", time.Since(start))
		return nil, domain.NewRegistryError(g.name, method, err)
	}

	metrics.ObserveRegistryCall(g.name, method, "success", time.Since(start))
	g.logger.Info("registry submission confirmed",
		slog.String("method", method),
		slog.String("tx_hash", receipt.TxHash),
		slog.Uint64("block", receipt.BlockNumber),
	)
	return receipt, nil
}

// read performs a view call into out.
func (g *gateway) read(ctx context.Context, method string, out *[]interface{}, args ...interface{}) error {
	start := time.Now()

	err := g.breaker.Execute(func() error {
		return g.contract.Call(&bind.CallOpts{Context: ctx}, out, method, args...)
	})
	if err != nil {
		metrics.ObserveRegistryCall(g.name, method, "error", time.Since(start))
		return domain.NewRegistryError(g.name, method, err)
	}

	metrics.ObserveRegistryCall(g.name, method, "success", time.Since(start))
	return nil
}

func toUint64s(ids []*big.Int) []uint64 {
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Uint64())
	}
	return out
}

func unixOrZero(ts *big.Int) time.Time {
	if ts == nil || ts.Sign() == 0 {
		return time.Time{}
	}
	return time.Unix(ts.Int64(), 0).UTC()
}
