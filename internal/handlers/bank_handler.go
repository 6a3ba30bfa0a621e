package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/models"
	"pitaka/internal/services"
)

// BankHandler serves the bank directory.
type BankHandler struct {
	bankService services.BankServicer
}

// NewBankHandler creates a new BankHandler.
func NewBankHandler(bankService services.BankServicer) *BankHandler {
	return &BankHandler{bankService: bankService}
}

// ListBanks handles listing the bank directory.
// @Summary     List banks
// @Description Banks, digital banks and e-wallets that can hold savings accounts
// @Tags        banks
// @Produce     json
// @Security    BearerAuth
// @Param       type query string false "Filter by type (bank, digital_bank, e_wallet)"
// @Success     200 {array}  models.Bank "Banks"
// @Failure     400 {object} ErrorResponse "Invalid bank type"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /banks [get]
func (h *BankHandler) ListBanks(c *gin.Context) {
	var bankType *models.BankType
	if v := c.Query("type"); v != "" {
		t := models.BankType(v)
		switch t {
		case models.BankTypeBank, models.BankTypeDigitalBank, models.BankTypeEWallet:
			bankType = &t
		default:
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid bank type"))
			return
		}
	}

	banks, err := h.bankService.ListBanks(bankType)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"banks": banks})
}

// GetBank handles retrieving one bank.
// @Summary     Get bank by ID
// @Tags        banks
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Bank ID"
// @Success     200 {object} models.Bank "Bank"
// @Failure     400 {object} ErrorResponse "Invalid bank ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Bank not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /banks/{id} [get]
func (h *BankHandler) GetBank(c *gin.Context) {
	bankID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	bank, err := h.bankService.GetBankByID(bankID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bank": bank})
}
