package handler

import (
	"log/slog"
	"net/http"

	"github.com/ProofINer/proofin-backend/internal/domain"
	"github.com/ProofINer/proofin-backend/internal/service"
)

// VerifyRequest carries a landlord verification submission. Tenant and
// contractId are optional; when both are present and autoMintNFT is not
// false they trigger the NFT mint.
type VerifyRequest struct {
	Landlord        string `json:"landlord"`
	PropertyAddress string `json:"propertyAddress"`
	DocumentHash    string `json:"documentHash"`
	Tenant          string `json:"tenant,omitempty"`
	ContractID      uint64 `json:"contractId,omitempty"`
	AutoMintNFT     *bool  `json:"autoMintNFT,omitempty"`
}

// VerifierHandler handles the landlord verification workflow endpoints.
type VerifierHandler struct {
	verifier *service.VerifierService
	logger   *slog.Logger
}

// NewVerifierHandler creates the verifier handler.
func NewVerifierHandler(verifier *service.VerifierService, logger *slog.Logger) *VerifierHandler {
	return &VerifierHandler{verifier: verifier, logger: logger}
}

// Verify handles POST /api/verifier/verify.
func (h *VerifierHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	autoMint := req.AutoMintNFT == nil || *req.AutoMintNFT

	result, err := h.verifier.VerifyLandlord(r.Context(), req.Landlord, req.PropertyAddress, req.DocumentHash, req.Tenant, req.ContractID, autoMint)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, result)
}

// Status handles GET /api/verifier/status/{address}.
func (h *VerifierHandler) Status(w http.ResponseWriter, r *http.Request) {
	landlord := domain.NormalizeAddress(r.PathValue("address"))
	verified, err := h.verifier.IsVerified(r.Context(), landlord)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"landlord":   landlord,
		"isVerified": verified,
	})
}

// Details handles GET /api/verifier/details/{address}.
func (h *VerifierHandler) Details(w http.ResponseWriter, r *http.Request) {
	details, err := h.verifier.GetVerificationDetails(r.Context(), r.PathValue("address"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, details)
}
