package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "pitaka/internal/errors"
	"pitaka/internal/models"
)

func setupBankRouter(handler *BankHandler) *gin.Engine {
	r := gin.New()
	r.GET("/banks", handler.ListBanks)
	r.GET("/banks/:id", handler.GetBank)
	return r
}

func TestBankHandler_ListBanks(t *testing.T) {
	t.Run("passes type filter", func(t *testing.T) {
		var gotType *models.BankType
		svc := &mockBankService{
			listBanksFn: func(bankType *models.BankType) ([]models.Bank, error) {
				gotType = bankType
				return []models.Bank{{Name: "GCash", Type: models.BankTypeEWallet}}, nil
			},
		}
		r := setupBankRouter(NewBankHandler(svc))

		rec := doRequest(r, "GET", "/banks?type=e_wallet", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotType == nil || *gotType != models.BankTypeEWallet {
			t.Errorf("expected e_wallet filter, got %v", gotType)
		}
		banks := parseJSON(t, rec)["banks"].([]interface{})
		if len(banks) != 1 || banks[0].(map[string]interface{})["name"] != "GCash" {
			t.Errorf("unexpected banks %v", banks)
		}
	})

	t.Run("lists all without filter", func(t *testing.T) {
		called := false
		svc := &mockBankService{
			listBanksFn: func(bankType *models.BankType) ([]models.Bank, error) {
				called = true
				if bankType != nil {
					t.Errorf("expected no filter, got %v", *bankType)
				}
				return nil, nil
			},
		}
		r := setupBankRouter(NewBankHandler(svc))

		rec := doRequest(r, "GET", "/banks", "")

		if rec.Code != http.StatusOK || !called {
			t.Fatalf("expected 200 with service call, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on unknown type", func(t *testing.T) {
		r := setupBankRouter(NewBankHandler(&mockBankService{}))

		rec := doRequest(r, "GET", "/banks?type=crypto", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestBankHandler_GetBank(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		svc := &mockBankService{
			getBankByIDFn: func(id string) (*models.Bank, error) {
				return &models.Bank{Base: models.Base{ID: id}, Name: "BPI"}, nil
			},
		}
		r := setupBankRouter(NewBankHandler(svc))

		rec := doRequest(r, "GET", "/banks/"+testBankID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		bank := parseJSON(t, rec)["bank"].(map[string]interface{})
		if bank["id"] != testBankID {
			t.Errorf("expected id %s, got %v", testBankID, bank["id"])
		}
	})

	t.Run("returns 404 when not found", func(t *testing.T) {
		svc := &mockBankService{
			getBankByIDFn: func(_ string) (*models.Bank, error) { return nil, apperrors.ErrBankNotFound },
		}
		r := setupBankRouter(NewBankHandler(svc))

		rec := doRequest(r, "GET", "/banks/"+testBankID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BANK_NOT_FOUND")
	})
}
