package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"papertrading/src/models"
	"papertrading/src/schemas"
	"papertrading/src/utils"
)

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := userID(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	account, err := h.PaperTradingController.GetAccount(ctx, user)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, account, http.StatusOK)
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := userID(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	account, err := h.PaperTradingController.CreateAccount(ctx, user)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, account, http.StatusCreated)
}

func (h *Handler) GetHoldings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := userID(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	var kind models.AssetKind
	if raw := r.URL.Query().Get("assetType"); raw != "" {
		if kind, err = models.ParseAssetKind(raw); err != nil {
			h.HandleErrors(w, utils.BadRequest(err.Error()))
			return
		}
	}
	holdings, err := h.PaperTradingController.GetHoldings(ctx, user, kind)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, holdings, http.StatusOK)
}

type tradeBody interface {
	ToTradeRequest() schemas.TradeRequest
}

func decodeTrade[T tradeBody](r *http.Request) (schemas.TradeRequest, error) {
	var body T
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return schemas.TradeRequest{}, utils.BadRequest("invalid request body")
	}
	req := body.ToTradeRequest()
	if req.Asset.ID == "" {
		return schemas.TradeRequest{}, utils.BadRequest("missing asset identifier")
	}
	return req, nil
}

// trade decodes a body of type T and runs the buy or sell it describes.
func trade[T tradeBody](h *Handler, buy bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
		defer cancel()

		user, err := userID(r)
		if err != nil {
			h.HandleErrors(w, err)
			return
		}
		req, err := decodeTrade[T](r)
		if err != nil {
			h.HandleErrors(w, err)
			return
		}

		var res *schemas.TradeResponse
		if buy {
			res, err = h.PaperTradingController.Buy(ctx, user, req)
		} else {
			res, err = h.PaperTradingController.Sell(ctx, user, req)
		}
		if err != nil {
			h.HandleErrors(w, err)
			return
		}
		h.respond(w, r, res, http.StatusOK)
	}
}

func (h *Handler) BuyStock() http.HandlerFunc   { return trade[schemas.StockTradeRequest](h, true) }
func (h *Handler) SellStock() http.HandlerFunc  { return trade[schemas.StockTradeRequest](h, false) }
func (h *Handler) BuyCrypto() http.HandlerFunc  { return trade[schemas.CryptoTradeRequest](h, true) }
func (h *Handler) SellCrypto() http.HandlerFunc { return trade[schemas.CryptoTradeRequest](h, false) }

func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := userID(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	filter, err := transactionFilter(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	transactions, err := h.PaperTradingController.GetTransactions(ctx, user, filter)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, transactions, http.StatusOK)
}

func transactionFilter(r *http.Request) (models.TransactionFilter, error) {
	var filter models.TransactionFilter
	query := r.URL.Query()
	var err error
	if raw := query.Get("type"); raw != "" {
		if filter.Type, err = models.ParseTransactionType(raw); err != nil {
			return filter, utils.BadRequest(err.Error())
		}
	}
	if raw := query.Get("assetType"); raw != "" {
		if filter.AssetKind, err = models.ParseAssetKind(raw); err != nil {
			return filter, utils.BadRequest(err.Error())
		}
	}
	if raw := query.Get("limit"); raw != "" {
		if filter.Limit, err = strconv.Atoi(raw); err != nil || filter.Limit < 0 {
			return filter, utils.BadRequest("limit must be a non-negative integer")
		}
	}
	return filter, nil
}

func (h *Handler) ExportTransactions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	user, err := userID(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "xlsx":
		xlsxFile, err := h.PaperTradingController.ExportTransactions(ctx, user)
		if err != nil {
			h.HandleErrors(w, err)
			return
		}
		defer xlsxFile.Close()

		w.Header().Set("Content-Type", utils.ContentTypeXLSX)
		w.Header().Set("Content-Disposition", "attachment; filename=paper-trading-transactions.xlsx")
		if err := xlsxFile.Write(w); err != nil {
			utils.LoggerFromContext(ctx).WithError(err).Error("failed to write transactions export")
		}
	case "csv":
		buf, err := h.PaperTradingController.ExportTransactionsCSV(ctx, user)
		if err != nil {
			h.HandleErrors(w, err)
			return
		}
		h.sendFile(ctx, w, buf, utils.ContentTypeCSV, "paper-trading-transactions.csv")
	default:
		h.HandleErrors(w, utils.BadRequest("unsupported export format "+format))
	}
}

func (h *Handler) GetStatement(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	user, err := userID(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	buf, err := h.PaperTradingController.GetStatementPDF(ctx, user)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.sendFile(ctx, w, buf, utils.ContentTypePDF, "paper-trading-statement.pdf")
}

func (h *Handler) GetAllocationChart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	user, err := userID(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	buf, err := h.PaperTradingController.GetAllocationChart(ctx, user)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.sendFile(ctx, w, buf, utils.ContentTypeHTML, "")
}

func (h *Handler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := userID(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	performance, err := h.PaperTradingController.GetPerformance(ctx, user)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, performance, http.StatusOK)
}

func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	user, err := userID(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	valuation, err := h.PaperTradingController.GetPortfolio(ctx, user)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, valuation, http.StatusOK)
}

func (h *Handler) RefreshPortfolio(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	user, err := userID(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	valuation, err := h.PaperTradingController.RefreshPortfolio(ctx, user)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, valuation, http.StatusOK)
}
