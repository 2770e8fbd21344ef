package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/okian/datastrike/pkg/logger"
)

// uploadField is the multipart field that carries the match file.
const uploadField = "file"

// multipartOverhead covers boundaries and part headers around the file.
const multipartOverhead = 64 << 10

// KPIHandler handles KPI upload requests.
type KPIHandler struct {
	deps           KPIDependencies
	maxUploadBytes int64
	logger         logger.Logger
}

// NewKPIHandler creates a new KPI handler.
func NewKPIHandler(deps KPIDependencies, maxUploadBytes int64, l logger.Logger) *KPIHandler {
	return &KPIHandler{deps: deps, maxUploadBytes: maxUploadBytes, logger: l}
}

// HandleTeamKPIs handles POST /api/kpis/by-equipo/{id} requests.
func (h *KPIHandler) HandleTeamKPIs(w http.ResponseWriter, r *http.Request) {
	const op = "api.team_kpis"
	teamID, err := pathID(r)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	part, err := h.upload(w, r)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	defer part.Close()

	rep, err := h.deps.TeamKPIs(r.Context(), teamID, part.FileName(), part)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// HandlePeriodKPIs handles POST /api/kpis/por-periodo requests.
func (h *KPIHandler) HandlePeriodKPIs(w http.ResponseWriter, r *http.Request) {
	const op = "api.period_kpis"
	part, err := h.upload(w, r)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	defer part.Close()

	out, err := h.deps.PeriodKPIs(r.Context(), part.FileName(), part)
	if err != nil {
		h.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// upload streams the request body up to the file part. The part is read
// directly from the body so the file is never buffered in memory.
func (h *KPIHandler) upload(w http.ResponseWriter, r *http.Request) (*multipart.Part, error) {
	if r.ContentLength > h.maxUploadBytes+multipartOverhead {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, h.maxUploadBytes)
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, WrapKind("multipart", ErrBadRequest, err)
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, WrapKind("multipart", ErrBadRequest, ErrNoFile)
		}
		if err != nil {
			var maxBytes *http.MaxBytesError
			if errors.As(err, &maxBytes) {
				return nil, WrapKind("multipart", ErrTooLarge, err)
			}
			return nil, WrapKind("multipart", ErrBadRequest, err)
		}
		if part.FormName() == uploadField && part.FileName() != "" {
			return part, nil
		}
		part.Close()
	}
}

func (h *KPIHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "kpi request failed", logger.Error(err))
	} else {
		h.logger.Debug(r.Context(), "kpi request rejected", logger.String("code", code), logger.Error(err))
	}
	writeError(w, status, code, err)
}
