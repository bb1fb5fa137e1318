package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/wooftrace/wooftrace-backend/api/responses"
	"github.com/wooftrace/wooftrace-backend/api/validators"
	"github.com/wooftrace/wooftrace-backend/internal/factory"
	"github.com/wooftrace/wooftrace-backend/internal/pets"
	"github.com/wooftrace/wooftrace-backend/internal/tags"
	pkgerrors "github.com/wooftrace/wooftrace-backend/pkg/errors"
	"github.com/wooftrace/wooftrace-backend/pkg/logger"
)

const maxListLimit = 500

// FactoryGenerate mints a batch of unactivated tags for manufacturing.
func FactoryGenerate(svc factory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "factory service unavailable"))
			return
		}

		var payload factory.GenerateBatchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		resp, err := svc.GenerateBatch(ctx, payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, resp)
	}
}

// FactoryTags lists the tag inventory with typed filters and pagination.
func FactoryTags(svc factory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "factory service unavailable"))
			return
		}

		filter, err := parseTagListFilter(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		resp, err := svc.ListTags(ctx, filter)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// FactoryStats summarizes the tag inventory.
func FactoryStats(svc factory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "factory service unavailable"))
			return
		}

		stats, err := svc.Stats(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// FactoryProgram serves the data written onto a physical tag.
func FactoryProgram(svc factory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "factory service unavailable"))
			return
		}

		tagID, err := validators.ParseUUIDParam(r, "tagId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		data, err := svc.ProgrammingData(ctx, tagID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, data)
	}
}

// AdminTagUpdate edits tag metadata.
func AdminTagUpdate(svc factory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "factory service unavailable"))
			return
		}

		tagID, err := validators.ParseUUIDParam(r, "tagId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload factory.UpdateTagRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		tag, err := svc.UpdateTag(ctx, tagID, payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, tag)
	}
}

// AdminTagDelete removes never-activated inventory.
func AdminTagDelete(svc factory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "factory service unavailable"))
			return
		}

		tagID, err := validators.ParseUUIDParam(r, "tagId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.DeleteTag(ctx, tagID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "tag deleted"})
	}
}

// AdminTagUnlink force-detaches a tag from its pet.
func AdminTagUnlink(svc factory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "factory service unavailable"))
			return
		}

		tagID, err := validators.ParseUUIDParam(r, "tagId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.UnlinkTag(ctx, tagID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "tag unlinked"})
	}
}

// AdminUsersList returns every account with its asset counts.
func AdminUsersList(svc factory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "factory service unavailable"))
			return
		}

		rows, err := svc.ListUsers(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// AdminUserUpdate edits an account.
func AdminUserUpdate(svc factory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "factory service unavailable"))
			return
		}

		userID, err := validators.ParseUUIDParam(r, "userId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload factory.UpdateUserRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		user, err := svc.UpdateUser(ctx, userID, payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

// AdminUserDelete removes an account with no owned assets.
func AdminUserDelete(svc factory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "factory service unavailable"))
			return
		}

		userID, err := validators.ParseUUIDParam(r, "userId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.DeleteUser(ctx, userID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "user deleted"})
	}
}

// AdminPetsList returns every pet.
func AdminPetsList(svc factory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "factory service unavailable"))
			return
		}

		rows, err := svc.ListPets(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// AdminPetUpdate edits any pet's profile.
func AdminPetUpdate(svc factory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "factory service unavailable"))
			return
		}

		petID, err := validators.ParseUUIDParam(r, "petId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload pets.UpdatePetRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		pet, err := svc.UpdatePet(ctx, petID, payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, pet)
	}
}

// AdminPetTransfer moves a pet and its tag to another account.
func AdminPetTransfer(svc factory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "factory service unavailable"))
			return
		}

		petID, err := validators.ParseUUIDParam(r, "petId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload factory.TransferPetRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		pet, err := svc.TransferPet(ctx, petID, payload.NewUserID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, pet)
	}
}

// AdminPetDelete removes any pet; the admin-side cascade matches the
// owner-side one.
func AdminPetDelete(svc factory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "factory service unavailable"))
			return
		}

		petID, err := validators.ParseUUIDParam(r, "petId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.DeletePet(ctx, petID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "pet deleted"})
	}
}

func parseTagListFilter(r *http.Request) (tags.ListFilter, error) {
	var filter tags.ListFilter

	if batch := strings.TrimSpace(r.URL.Query().Get("batchNumber")); batch != "" {
		filter.BatchNumber = &batch
	}

	parseBool := func(key string) (*bool, error) {
		raw := strings.TrimSpace(r.URL.Query().Get(key))
		if raw == "" {
			return nil, nil
		}
		switch strings.ToLower(raw) {
		case "true":
			v := true
			return &v, nil
		case "false":
			v := false
			return &v, nil
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be true or false").
			WithDetails(map[string]any{"field": key})
	}

	activated, err := parseBool("isActivated")
	if err != nil {
		return filter, err
	}
	filter.IsActivated = activated

	linked, err := parseBool("linked")
	if err != nil {
		return filter, err
	}
	filter.Linked = linked

	if raw := strings.TrimSpace(r.URL.Query().Get("userId")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a valid id").
				WithDetails(map[string]any{"field": "userId"})
		}
		filter.UserID = &id
	}

	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<30)
	if err != nil {
		return filter, err
	}
	filter.Page = page

	limit, err := validators.ParseQueryInt(r, "limit", 50, 1, maxListLimit)
	if err != nil {
		return filter, err
	}
	filter.Limit = limit

	return filter, nil
}
