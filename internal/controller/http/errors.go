package http

import (
	"errors"
	"net/http"

	"github.com/ugc-dashboard/reporting/internal/document"
	"github.com/ugc-dashboard/reporting/internal/domain/report/entity"
	"github.com/ugc-dashboard/reporting/internal/httpx/response"
	"github.com/ugc-dashboard/reporting/internal/validation"
)

// handleDomainError maps domain errors to HTTP responses
func handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, entity.ErrReportNotFound):
		response.NotFound(w, entity.ErrReportNotFound.Error())
	case errors.Is(err, entity.ErrInvalidReport):
		var verr *validation.Error
		var details []string
		if errors.As(err, &verr) {
			for _, f := range verr.Fields {
				details = append(details, f.Error())
			}
		}
		response.BadRequest(w, entity.ErrInvalidReport.Error(), details...)
	case errors.Is(err, entity.ErrInvalidFormat), errors.Is(err, entity.ErrInvalidPlatform),
		errors.Is(err, entity.ErrNoCollectTarget), errors.Is(err, entity.ErrInvalidPeriod):
		response.BadRequest(w, err.Error())
	case errors.Is(err, entity.ErrNoContent):
		response.Error(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, entity.ErrActorUnauthorized):
		response.BadGateway(w, err.Error())
	case errors.Is(err, entity.ErrActorRateLimited):
		response.TooManyRequests(w, err.Error())
	case errors.Is(err, entity.ErrActorFailure):
		response.BadGateway(w, err.Error())
	case errors.Is(err, document.ErrEmptyDocument):
		logger(r).Error().Err(err).Msg("document generation produced no output")
		response.InternalError(w, "document generation failed")
	default:
		logger(r).Error().Err(err).Msg("request failed")
		response.InternalError(w, "internal server error")
	}
}
