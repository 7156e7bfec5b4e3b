package handler

import (
	"log/slog"
	"net/http"

	"github.com/ProofINer/proofin-backend/internal/service"
)

// MintRequest carries a direct tenancy NFT mint.
type MintRequest struct {
	Tenant     string `json:"tenant"`
	ContractID uint64 `json:"contractId"`
	TokenURI   string `json:"tokenURI"`
}

// NFTHandler handles the tenancy NFT registry endpoints.
type NFTHandler struct {
	nft    *service.NFTService
	logger *slog.Logger
}

// NewNFTHandler creates the NFT handler.
func NewNFTHandler(nft *service.NFTService, logger *slog.Logger) *NFTHandler {
	return &NFTHandler{nft: nft, logger: logger}
}

// Mint handles POST /api/nft/mint.
func (h *NFTHandler) Mint(w http.ResponseWriter, r *http.Request) {
	var req MintRequest
	if !decodeBody(w, r, &req) {
		return
	}

	receipt, err := h.nft.Mint(r.Context(), req.Tenant, req.ContractID, req.TokenURI)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusCreated, receipt)
}

// TokensByOwner handles GET /api/nft/owner/{address}.
func (h *NFTHandler) TokensByOwner(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.nft.TokensByOwner(r.Context(), r.PathValue("address"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeList(w, http.StatusOK, tokens, len(tokens))
}

// TokenDetails handles GET /api/nft/{id}.
func (h *NFTHandler) TokenDetails(w http.ResponseWriter, r *http.Request) {
	tokenID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	token, err := h.nft.TokenDetails(r.Context(), tokenID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, token)
}
