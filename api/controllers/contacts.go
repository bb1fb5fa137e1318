package controllers

import (
	"net/http"

	"github.com/wooftrace/wooftrace-backend/api/middleware"
	"github.com/wooftrace/wooftrace-backend/api/responses"
	"github.com/wooftrace/wooftrace-backend/api/validators"
	"github.com/wooftrace/wooftrace-backend/internal/contacts"
	"github.com/wooftrace/wooftrace-backend/internal/publicprofile"
	pkgerrors "github.com/wooftrace/wooftrace-backend/pkg/errors"
	"github.com/wooftrace/wooftrace-backend/pkg/logger"
)

// ContactList returns the pet's emergency contacts for its owner.
func ContactList(svc contacts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contact service unavailable"))
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

// ContactCreate adds an emergency contact to one of the owner's pets.
func ContactCreate(svc contacts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contact service unavailable"))
			return
		}

		petID, err := validators.ParseUUIDParam(r, "petId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload contacts.CreateContactRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		contact, err := svc.Create(ctx, middleware.UserIDFromContext(ctx), petID, payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, contact)
	}
}

// ContactUpdate applies a partial contact update.
func ContactUpdate(svc contacts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contact service unavailable"))
			return
		}

		contactID, err := validators.ParseUUIDParam(r, "contactId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload contacts.UpdateContactRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		contact, err := svc.Update(ctx, middleware.UserIDFromContext(ctx), contactID, payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, contact)
	}
}

// ContactDelete removes the contact.
func ContactDelete(svc contacts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contact service unavailable"))
			return
		}

		contactID, err := validators.ParseUUIDParam(r, "contactId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, middleware.UserIDFromContext(ctx), contactID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "contact deleted"})
	}
}

// ContactPublicList serves the scan page's contact list anonymously.
func ContactPublicList(svc publicprofile.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "public profile service unavailable"))
			return
		}

		petID, err := validators.ParseUUIDParam(r, "petId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rows, err := svc.PublicContacts(ctx, petID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
