package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/splitweek/internal/middleware"
	"github.com/mmynk/splitweek/internal/models"
)

// itemPayload is one line item in a receipt request.
type itemPayload struct {
	ItemName   string   `json:"itemName"`
	Amount     int64    `json:"amount"`
	SplitAmong []string `json:"splitAmong"`
}

// receiptRequest is the submit/update body. The submitter is taken from the
// bearer token, never from the body.
type receiptRequest struct {
	PaidBy        string        `json:"paidBy"`
	PaidByName    string        `json:"paidByName"`
	BelongsToDate string        `json:"belongsToDate"`
	Memo          string        `json:"memo"`
	ImageRef      string        `json:"imageRef"`
	Items         []itemPayload `json:"items"`
}

func (req *receiptRequest) draft(submittedBy, submittedByName string) models.ReceiptDraft {
	items := make([]models.ItemDraft, len(req.Items))
	for i, it := range req.Items {
		items[i] = models.ItemDraft{ItemName: it.ItemName, Amount: it.Amount, SplitAmong: it.SplitAmong}
	}
	return models.ReceiptDraft{
		SubmittedBy:     submittedBy,
		SubmittedByName: submittedByName,
		PaidBy:          req.PaidBy,
		PaidByName:      req.PaidByName,
		BelongsToDate:   req.BelongsToDate,
		Memo:            req.Memo,
		ImageRef:        req.ImageRef,
		Items:           items,
	}
}

type flagRequest struct {
	Value bool `json:"value"`
}

func (s *Server) handleCurrentPeriod(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.CurrentPeriod(r.Context(), chi.URLParam(r, "spaceID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleGetPeriod(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Period(r.Context(), chi.URLParam(r, "spaceID"), chi.URLParam(r, "periodID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := s.svc.Receipts(r.Context(), chi.URLParam(r, "spaceID"), chi.URLParam(r, "periodID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"receipts": receipts})
}

func (s *Server) handleSubmitReceipt(w http.ResponseWriter, r *http.Request) {
	var req receiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	ctx := r.Context()
	draft := req.draft(middleware.GetUserID(ctx), middleware.GetDisplayName(ctx))

	receipt, p, err := s.svc.Submit(ctx, chi.URLParam(r, "spaceID"), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"receipt": receipt, "period": p})
}

func (s *Server) handleUpdateReceipt(w http.ResponseWriter, r *http.Request) {
	var req receiptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	ctx := r.Context()
	draft := req.draft(middleware.GetUserID(ctx), middleware.GetDisplayName(ctx))

	receipt, err := s.svc.Update(ctx,
		chi.URLParam(r, "spaceID"), chi.URLParam(r, "periodID"), chi.URLParam(r, "receiptID"), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"receipt": receipt})
}

func (s *Server) handleDeleteReceipt(w http.ResponseWriter, r *http.Request) {
	err := s.svc.Delete(r.Context(),
		chi.URLParam(r, "spaceID"), chi.URLParam(r, "periodID"), chi.URLParam(r, "receiptID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Finalize(r.Context(), chi.URLParam(r, "spaceID"), chi.URLParam(r, "periodID"))
	if err != nil {
		writeError(w, err)
		return
	}

	body := map[string]any{
		"period":         res.Period,
		"alreadySettled": res.AlreadySettled,
	}
	if res.NotifyErr != nil {
		body["notifyError"] = res.NotifyErr.Error()
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handlePaymentConfirmed(w http.ResponseWriter, r *http.Request) {
	s.handleConfirmation(w, r, s.svc.SetPaymentConfirmed)
}

func (s *Server) handleTransferCompleted(w http.ResponseWriter, r *http.Request) {
	s.handleConfirmation(w, r, s.svc.SetTransferCompleted)
}

func (s *Server) handleConfirmation(w http.ResponseWriter, r *http.Request, set func(ctx context.Context, spaceID, periodID, userID string, value bool) error) {
	var req flagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	err := set(r.Context(),
		chi.URLParam(r, "spaceID"), chi.URLParam(r, "periodID"), chi.URLParam(r, "userID"), req.Value)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"value": req.Value})
}

func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.svc.Schedule(r.Context(), chi.URLParam(r, "spaceID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handlePutSchedule(w http.ResponseWriter, r *http.Request) {
	var cfg models.ScheduleConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	if err := s.svc.SetSchedule(r.Context(), chi.URLParam(r, "spaceID"), &cfg); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &cfg)
}
