package handler

import (
	"net/http"
	"strconv"

	"proptrust/internal/apierror"
	"proptrust/internal/dto"
	"proptrust/internal/middleware"
	"proptrust/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TrustHandler struct{ svc service.TrustService }

func NewTrustHandler(svc service.TrustService) *TrustHandler { return &TrustHandler{svc: svc} }

func actor(c *gin.Context) string {
	if claims := middleware.GetClaims(c); claims != nil {
		return claims.Username
	}
	return "system"
}

// Open godoc
// @Summary Open a trust account for a property sale
// @Description Called when the buyer's first sale payment lands. Posts the opening BUYER_PAYMENT credit.
// @Tags trust-accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.OpenTrustAccountRequest true "Opening data"
// @Success 201 {object} dto.TrustAccountResponse
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /v1/trust-accounts [post]
func (h *TrustHandler) Open(c *gin.Context) {
	var req dto.OpenTrustAccountRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.OpenAccount(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary List trust accounts
// @Tags trust-accounts
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status (OPEN | SETTLED | CLOSED)"
// @Param search query string false "Search buyer/seller/property names"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Success 200 {object} dto.TrustAccountListResponse
// @Router /v1/trust-accounts [get]
func (h *TrustHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	filter := dto.TrustAccountFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetByProperty godoc
// @Summary Get the trust account for a property
// @Tags trust-accounts
// @Produce json
// @Security BearerAuth
// @Param propertyId path string true "Property ID"
// @Success 200 {object} dto.TrustAccountResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/trust-accounts/property/{propertyId} [get]
func (h *TrustHandler) GetByProperty(c *gin.Context) {
	propertyID, err := uuid.Parse(c.Param("propertyId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid property id"))
		return
	}
	resp, err := h.svc.GetByProperty(c.Request.Context(), propertyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// FullByProperty godoc
// @Summary Full account snapshot for a report page
// @Description Account + ledger + tax summary + audit trail + latest settlement in one consistent read.
// @Tags trust-accounts
// @Produce json
// @Security BearerAuth
// @Param propertyId path string true "Property ID"
// @Success 200 {object} dto.TrustAccountFullResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/trust-accounts/property/{propertyId}/full [get]
func (h *TrustHandler) FullByProperty(c *gin.Context) {
	propertyID, err := uuid.Parse(c.Param("propertyId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid property id"))
		return
	}
	resp, err := h.svc.FullByProperty(c.Request.Context(), propertyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Ledger godoc
// @Summary Paginated ledger for a trust account, newest first
// @Tags trust-accounts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Trust account ID"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Success 200 {object} dto.LedgerPageResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/trust-accounts/{id}/ledger [get]
func (h *TrustHandler) Ledger(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	resp, err := h.svc.Ledger(c.Request.Context(), id, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CalculateSettlement godoc
// @Summary Calculate (and persist a new version of) the settlement
// @Description Pure arithmetic over the request and configured rates; does not touch the ledger. The first calculation moves the account OPEN → SETTLED.
// @Tags trust-accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Trust account ID"
// @Param body body dto.CalculateSettlementRequest true "Sale figures and overrides"
// @Success 200 {object} dto.SettlementResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/trust-accounts/{id}/calculate-settlement [post]
func (h *TrustHandler) CalculateSettlement(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.CalculateSettlementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CalculateSettlement(c.Request.Context(), actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ApplyTaxDeductions godoc
// @Summary Post the latest settlement's tax deductions to the ledger
// @Description Idempotent per settlement version. Without a payment reference the remittances stay pending and the background cron submits them to ZIMRA.
// @Tags trust-accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Trust account ID"
// @Param body body dto.ApplyTaxDeductionsRequest true "Optional ZIMRA payment reference"
// @Success 200 {object} dto.TaxSummaryResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/trust-accounts/{id}/apply-tax-deductions [post]
func (h *TrustHandler) ApplyTaxDeductions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.ApplyTaxDeductionsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ApplyTaxDeductions(c.Request.Context(), actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Deposit godoc
// @Summary Post a buyer payment credit
// @Tags trust-accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Trust account ID"
// @Param body body dto.DepositRequest true "Amount and reference"
// @Success 201 {object} dto.LedgerEntryResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/trust-accounts/{id}/deposit [post]
func (h *TrustHandler) Deposit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.DepositRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Deposit(c.Request.Context(), actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// TransferToSeller godoc
// @Summary Post a seller payout debit
// @Tags trust-accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Trust account ID"
// @Param body body dto.TransferToSellerRequest true "Amount and reference"
// @Success 201 {object} dto.LedgerEntryResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/trust-accounts/{id}/transfer-to-seller [post]
func (h *TrustHandler) TransferToSeller(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.TransferToSellerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.TransferToSeller(c.Request.Context(), actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Adjust godoc
// @Summary Post a manual adjustment entry
// @Description Corrections are new entries; existing entries are never edited. Exactly one of debit/credit must be positive.
// @Tags trust-accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Trust account ID"
// @Param body body dto.AdjustmentRequest true "Debit or credit amount"
// @Success 201 {object} dto.LedgerEntryResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.APIError
// @Router /v1/trust-accounts/{id}/adjustment [post]
func (h *TrustHandler) Adjust(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.AdjustmentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Adjust(c.Request.Context(), actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Close godoc
// @Summary Close and lock a settled trust account
// @Tags trust-accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Trust account ID"
// @Param body body dto.CloseTrustAccountRequest true "Optional lock reason"
// @Success 200 {object} dto.TrustAccountResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/trust-accounts/{id}/close [post]
func (h *TrustHandler) Close(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.CloseTrustAccountRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Close(c.Request.Context(), actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Transition godoc
// @Summary Explicit workflow transition
// @Tags trust-accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Trust account ID"
// @Param body body dto.WorkflowTransitionRequest true "Target state"
// @Success 200 {object} dto.TrustAccountResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/trust-accounts/{id}/workflow-transition [post]
func (h *TrustHandler) Transition(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	var req dto.WorkflowTransitionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Transition(c.Request.Context(), actor(c), id, req.ToState)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
