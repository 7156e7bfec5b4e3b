package handler

import (
	"log/slog"
	"net/http"

	"github.com/ProofINer/proofin-backend/internal/service"
)

// DepositRequest carries an escrow deposit. Amount is a decimal wei
// string.
type DepositRequest struct {
	ContractID uint64 `json:"contractId"`
	Amount     string `json:"amount"`
}

// VaultHandler handles the deposit escrow endpoints.
type VaultHandler struct {
	vault  *service.VaultService
	logger *slog.Logger
}

// NewVaultHandler creates the vault handler.
func NewVaultHandler(vault *service.VaultService, logger *slog.Logger) *VaultHandler {
	return &VaultHandler{vault: vault, logger: logger}
}

// Deposit handles POST /api/vault/deposit.
func (h *VaultHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req DepositRequest
	if !decodeBody(w, r, &req) {
		return
	}

	amount, err := service.ParseWei(req.Amount)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	receipt, err := h.vault.Deposit(r.Context(), req.ContractID, amount)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, receipt)
}

// Release handles POST /api/vault/release/{id}.
func (h *VaultHandler) Release(w http.ResponseWriter, r *http.Request) {
	contractID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	receipt, err := h.vault.Release(r.Context(), contractID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, receipt)
}

// Refund handles POST /api/vault/refund/{id}.
func (h *VaultHandler) Refund(w http.ResponseWriter, r *http.Request) {
	contractID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	receipt, err := h.vault.Refund(r.Context(), contractID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, receipt)
}

// DepositInfo handles GET /api/vault/{id}.
func (h *VaultHandler) DepositInfo(w http.ResponseWriter, r *http.Request) {
	contractID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	info, err := h.vault.GetDepositInfo(r.Context(), contractID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, info)
}
