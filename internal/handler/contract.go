package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ProofINer/proofin-backend/internal/domain"
	"github.com/ProofINer/proofin-backend/internal/service"
)

// CreateContractRequest carries a new rental contract submission.
// Amounts are decimal wei strings; dates are unix seconds.
type CreateContractRequest struct {
	Tenant          string `json:"tenant"`
	Landlord        string `json:"landlord"`
	DepositAmount   string `json:"depositAmount"`
	PropertyAddress string `json:"propertyAddress"`
	StartDate       int64  `json:"startDate"`
	EndDate         int64  `json:"endDate"`
}

// ContractHandler handles the rental contract registry endpoints.
type ContractHandler struct {
	contracts *service.ContractService
	logger    *slog.Logger
}

// NewContractHandler creates the contract handler.
func NewContractHandler(contracts *service.ContractService, logger *slog.Logger) *ContractHandler {
	return &ContractHandler{contracts: contracts, logger: logger}
}

// Create handles POST /api/contracts.
func (h *ContractHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateContractRequest
	if !decodeBody(w, r, &req) {
		return
	}

	deposit, err := service.ParseWei(req.DepositAmount)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	receipt, contractID, err := h.contracts.CreateContract(r.Context(), domain.ContractInput{
		Tenant:          req.Tenant,
		Landlord:        req.Landlord,
		DepositAmount:   deposit,
		PropertyAddress: req.PropertyAddress,
		StartDate:       service.ParseUnixDate(req.StartDate),
		EndDate:         service.ParseUnixDate(req.EndDate),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeData(w, http.StatusCreated, map[string]any{
		"contractId": contractID,
		"receipt":    receipt,
	})
}

// UpdateContractRequest carries a contract update. Only the tenant may
// update a contract.
type UpdateContractRequest struct {
	Role            string `json:"role"`
	PropertyAddress string `json:"propertyAddress"`
	StartDate       int64  `json:"startDate"`
	EndDate         int64  `json:"endDate"`
}

// Update handles PUT /api/contracts/{id}. The registry exposes no
// update method, so this returns the current record unchanged.
func (h *ContractHandler) Update(w http.ResponseWriter, r *http.Request) {
	contractID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateContractRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Role != "" && req.Role != string(domain.RoleTenant) {
		writeErrorMessage(w, http.StatusForbidden, "only tenants can update contracts")
		return
	}

	record, err := h.contracts.GetContract(r.Context(), contractID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeEnvelope(w, http.StatusOK, envelope{
		Success: true,
		Data:    record,
		Message: "contract updates require registry support",
	})
}

// Get handles GET /api/contracts/{id}.
func (h *ContractHandler) Get(w http.ResponseWriter, r *http.Request) {
	contractID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	record, err := h.contracts.GetContract(r.Context(), contractID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, record)
}

// ListAll handles GET /api/contracts.
func (h *ContractHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	records, err := h.contracts.ListAll(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeList(w, http.StatusOK, records, len(records))
}

// ListByTenant handles GET /api/contracts/tenant/{address}.
func (h *ContractHandler) ListByTenant(w http.ResponseWriter, r *http.Request) {
	records, err := h.contracts.ListByTenant(r.Context(), r.PathValue("address"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeList(w, http.StatusOK, records, len(records))
}

// ListByLandlord handles GET /api/contracts/landlord/{address}.
func (h *ContractHandler) ListByLandlord(w http.ResponseWriter, r *http.Request) {
	records, err := h.contracts.ListByLandlord(r.Context(), r.PathValue("address"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeList(w, http.StatusOK, records, len(records))
}

// pathID parses a numeric path segment, writing the 400 itself on
// failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uint64, bool) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
