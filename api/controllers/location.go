package controllers

import (
	"net"
	"net/http"
	"strings"

	"github.com/wooftrace/wooftrace-backend/api/middleware"
	"github.com/wooftrace/wooftrace-backend/api/responses"
	"github.com/wooftrace/wooftrace-backend/api/validators"
	"github.com/wooftrace/wooftrace-backend/internal/scans"
	pkgerrors "github.com/wooftrace/wooftrace-backend/pkg/errors"
	"github.com/wooftrace/wooftrace-backend/pkg/logger"
)

// LocationScanRecord is the anonymous geolocation drop from the public page.
func LocationScanRecord(svc scans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "scan service unavailable"))
			return
		}

		petID, err := validators.ParseUUIDParam(r, "petId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload scans.RecordScanRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if payload.UserAgent == nil {
			if ua := r.UserAgent(); ua != "" {
				payload.UserAgent = &ua
			}
		}

		resp, err := svc.Record(ctx, petID, payload, clientIP(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, resp)
	}
}

// LocationScanList returns the owner's scan history for a pet.
func LocationScanList(svc scans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "scan service unavailable"))
			return
		}

		petID, err := validators.ParseUUIDParam(r, "petId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := svc.ListByPet(ctx, middleware.UserIDFromContext(ctx), petID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first := strings.TrimSpace(strings.Split(forwarded, ",")[0]); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
