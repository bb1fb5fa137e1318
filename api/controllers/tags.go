package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/wooftrace/wooftrace-backend/api/middleware"
	"github.com/wooftrace/wooftrace-backend/api/responses"
	"github.com/wooftrace/wooftrace-backend/api/validators"
	"github.com/wooftrace/wooftrace-backend/internal/publicprofile"
	"github.com/wooftrace/wooftrace-backend/internal/tags"
	pkgerrors "github.com/wooftrace/wooftrace-backend/pkg/errors"
	"github.com/wooftrace/wooftrace-backend/pkg/logger"
)

type activationCodePayload struct {
	ActivationCode string `json:"activationCode" validate:"required,min=4,max=32"`
}

type linkTagPayload struct {
	TagID uuid.UUID `json:"tagId" validate:"required"`
	PetID uuid.UUID `json:"petId" validate:"required"`
}

// TagValidateCode pre-checks an activation code without mutating anything.
func TagValidateCode(svc tags.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tag service unavailable"))
			return
		}

		var payload activationCodePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.ValidateCode(ctx, payload.ActivationCode)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// TagActivate claims a tag for the authenticated owner.
func TagActivate(svc tags.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tag service unavailable"))
			return
		}

		var payload activationCodePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		tag, err := svc.Activate(ctx, middleware.UserIDFromContext(ctx), payload.ActivationCode)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, tag)
	}
}

// TagList returns the authenticated owner's tags.
func TagList(svc tags.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tag service unavailable"))
			return
		}

		rows, err := svc.ListByOwner(ctx, middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// TagLink attaches an activated tag to one of the owner's pets.
func TagLink(svc tags.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tag service unavailable"))
			return
		}

		var payload linkTagPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		tag, err := svc.LinkToPet(ctx, middleware.UserIDFromContext(ctx), payload.TagID, payload.PetID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, tag)
	}
}

// TagUnlink detaches the tag from its pet; the tag stays activated.
func TagUnlink(svc tags.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tag service unavailable"))
			return
		}

		tagID, err := validators.ParseUUIDParam(r, "tagId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Unlink(ctx, middleware.UserIDFromContext(ctx), tagID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "tag unlinked"})
	}
}

// TagScan is the anonymous tag-code resolution endpoint.
func TagScan(svc publicprofile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "public profile service unavailable"))
			return
		}

		tagCode, err := validators.RequireParam(r, "tagCode")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		profile, err := svc.ResolveByTagCode(ctx, tagCode)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}
