package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ProofINer/proofin-backend/internal/domain"
	"github.com/ProofINer/proofin-backend/internal/service"
	"github.com/ProofINer/proofin-backend/pkg/cache"
)

// DepositWatcher polls the vault registry for escrow state changes and
// turns transitions into notifications: PENDING to DEPOSITED tells the
// landlord the deposit arrived, any move to RELEASED or REFUNDED tells
// both parties the contract completed.
type DepositWatcher struct {
	contracts domain.ContractRegistry
	vault     domain.VaultRegistry
	notify    *service.NotificationService
	state     *cache.Cache
	logger    *slog.Logger
	interval  time.Duration
}

// NewDepositWatcher creates the watcher. state survives across polls so
// each transition fires exactly once per process lifetime.
func NewDepositWatcher(
	contracts domain.ContractRegistry,
	vault domain.VaultRegistry,
	notify *service.NotificationService,
	state *cache.Cache,
	logger *slog.Logger,
	interval time.Duration,
) *DepositWatcher {
	return &DepositWatcher{
		contracts: contracts,
		vault:     vault,
		notify:    notify,
		state:     state,
		logger:    logger,
		interval:  interval,
	}
}

// Start runs the polling loop until the context ends.
func (w *DepositWatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("deposit watcher started", slog.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("deposit watcher stopped")
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

func (w *DepositWatcher) poll(ctx context.Context) {
	ids, err := w.contracts.GetAllContractIDs(ctx)
	if err != nil {
		w.logger.Error("deposit watcher failed to list contracts",
			slog.String("error", err.Error()),
		)
		return
	}

	for _, id := range ids {
		w.checkContract(ctx, id)
	}
}

func (w *DepositWatcher) checkContract(ctx context.Context, contractID uint64) {
	status, err := w.vault.GetDepositStatus(ctx, contractID)
	if err != nil {
		w.logger.Debug("deposit status read failed",
			slog.Uint64("contract_id", contractID),
			slog.String("error", err.Error()),
		)
		return
	}

	key := fmt.Sprintf("deposit:%d", contractID)
	previous := domain.DepositPending
	seen := false
	if cached, ok := w.state.Get(key); ok {
		previous, _ = cached.(domain.DepositStatus)
		seen = true
	}
	w.state.Set(key, status, 0)

	if seen && status == previous {
		return
	}
	if !seen && status == domain.DepositPending {
		return
	}

	record, err := w.contracts.GetContractDetails(ctx, contractID)
	if err != nil {
		w.logger.Error("deposit watcher failed to read contract",
			slog.Uint64("contract_id", contractID),
			slog.String("error", err.Error()),
		)
		// Forget the transition so the next poll retries the
		// notification.
		if seen {
			w.state.Set(key, previous, 0)
		} else {
			w.state.Delete(key)
		}
		return
	}

	w.logger.Info("deposit transition",
		slog.Uint64("contract_id", contractID),
		slog.String("from", previous.Text()),
		slog.String("to", status.Text()),
	)

	switch status {
	case domain.DepositDeposited:
		amount, err := w.vault.GetDepositAmount(ctx, contractID)
		amountWei := ""
		if err == nil {
			amountWei = amount.String()
		}
		w.notify.NotifyDepositReceived(record.Landlord, contractID, amountWei)
	case domain.DepositReleased:
		w.notify.NotifyContractCompleted([]string{record.Tenant, record.Landlord}, contractID, "released to landlord")
	case domain.DepositRefunded:
		w.notify.NotifyContractCompleted([]string{record.Tenant, record.Landlord}, contractID, "refunded to tenant")
	}
}
