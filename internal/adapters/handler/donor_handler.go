package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/AchilleasB/sangria/donor-service/internal/adapters/export"
	"github.com/AchilleasB/sangria/donor-service/internal/adapters/middleware"
	"github.com/AchilleasB/sangria/donor-service/internal/core/domain"
	"github.com/AchilleasB/sangria/donor-service/internal/core/ports"
	"github.com/AchilleasB/sangria/donor-service/internal/core/services"
)

const msgNoData = "Nenhum dado enviado"

type DonorHandler struct {
	donorService ports.DonorService
	logger       *zap.Logger
	now          func() time.Time
}

func NewDonorHandler(donors ports.DonorService, logger *zap.Logger) *DonorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DonorHandler{donorService: donors, logger: logger, now: time.Now}
}

// DonorRequest is the donor form as posted by the browser client. Field types
// are lenient so a wrong-typed answer never rejects the request.
type DonorRequest struct {
	DonorName             domain.LooseString `json:"donorName"`
	BirthDate             domain.LooseString `json:"birthDate"`
	Weight                domain.LooseString `json:"weight"`
	BloodType             domain.LooseString `json:"bloodType"`
	LastDonationDate      domain.LooseString `json:"lastDonationDate"`
	ContactInfo           domain.LooseString `json:"contactInfo"`
	FeverFlu              domain.Answer      `json:"feverFlu"`
	TattooPiercing        domain.Answer      `json:"tattooPiercing"`
	Hepatitis             domain.Answer      `json:"hepatitis"`
	STDPositive           domain.Answer      `json:"stdPositive"`
	InjectedDrugs         domain.Answer      `json:"injectedDrugs"`
	PregnantBreastfeeding domain.Answer      `json:"pregnantBreastfeeding"`
}

func (r DonorRequest) intake() domain.Intake {
	return domain.Intake{
		BirthDate:             r.BirthDate.String(),
		Weight:                r.Weight.String(),
		LastDonationDate:      r.LastDonationDate.String(),
		FeverFlu:              bool(r.FeverFlu),
		TattooPiercing:        bool(r.TattooPiercing),
		Hepatitis:             bool(r.Hepatitis),
		STDPositive:           bool(r.STDPositive),
		InjectedDrugs:         bool(r.InjectedDrugs),
		PregnantBreastfeeding: bool(r.PregnantBreastfeeding),
	}
}

type DonorResponse struct {
	Message          string              `json:"message"`
	ID               string              `json:"id"`
	TriageStatus     domain.TriageStatus `json:"triage_status"`
	TriageMessage    string              `json:"triage_message"`
	DeferralDays     int                 `json:"deferral_days"`
	NextDonationDate *domain.Date        `json:"calculated_next_donation_date"`
}

// decodeDonor reads a JSON object body; anything else counts as no data.
func decodeDonor(r *http.Request) (DonorRequest, bool) {
	var body json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return DonorRequest{}, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || len(fields) == 0 {
		return DonorRequest{}, false
	}
	var req DonorRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return DonorRequest{}, false
	}
	return req, true
}

func (h *DonorHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeDonor(r)
	if !ok {
		writeError(w, h.logger, http.StatusBadRequest, msgNoData)
		return
	}

	donor, err := h.donorService.RegisterDonor(r.Context(), ports.DonorInput{
		Name:         req.DonorName.String(),
		BloodType:    req.BloodType.String(),
		ContactInfo:  req.ContactInfo.String(),
		RegisteredBy: middleware.UserID(r.Context()),
		Intake:       req.intake(),
	})
	var missing *services.MissingFieldError
	if errors.As(err, &missing) {
		writeError(w, h.logger, http.StatusBadRequest, "Campo obrigatório ausente: "+missing.Field)
		return
	}
	if err != nil {
		h.logger.Error("register donor failed", zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "Erro ao salvar doador no banco de dados")
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, DonorResponse{
		Message:          "Doador processado com sucesso!",
		ID:               donor.ID,
		TriageStatus:     donor.Triage.Status,
		TriageMessage:    donor.Triage.Message,
		DeferralDays:     donor.Triage.DeferralDays,
		NextDonationDate: donor.Triage.NextEligibleDate,
	})
}

func (h *DonorHandler) List(w http.ResponseWriter, r *http.Request) {
	donors, err := h.donorService.ListDonors(r.Context())
	if err != nil {
		h.logger.Error("list donors failed", zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, donors)
}

// Screen evaluates a donor form without storing it.
func (h *DonorHandler) Screen(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeDonor(r)
	if !ok {
		writeError(w, h.logger, http.StatusBadRequest, msgNoData)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, h.donorService.Screen(req.intake()))
}

// Spreadsheet streams the xlsx export. The workbook is buffered so a failed
// export still gets a JSON error instead of a truncated download.
func (h *DonorHandler) Spreadsheet(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.donorService.ExportSpreadsheet(r.Context(), &buf); err != nil {
		h.logger.Error("export failed", zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "internal error")
		return
	}

	filename := export.Filename(domain.DateOf(h.now()))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("failed to write export", zap.Error(err))
	}
}
