package controllers

import (
	"net/http"
	"strings"

	"github.com/kidoralabs/kidora-backend/api/responses"
	"github.com/kidoralabs/kidora-backend/api/validators"
	"github.com/kidoralabs/kidora-backend/pkg/config"
	pkgerrors "github.com/kidoralabs/kidora-backend/pkg/errors"
	"github.com/kidoralabs/kidora-backend/pkg/logger"
	"github.com/kidoralabs/kidora-backend/pkg/storage"
	"github.com/kidoralabs/kidora-backend/pkg/types"
)

type importMediaRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// UploadMedia accepts a multipart file and stores it under the media root.
func UploadMedia(store storage.Store, cfg config.MediaConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		maxBytes := int64(cfg.MaxUploadMB) * 1024 * 1024
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart upload"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file field is required"))
			return
		}
		defer file.Close()

		url, err := store.Save(r.Context(), header.Filename, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to store upload"))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"url": url})
	}
}

// ImportMedia fetches a remote image and persists a local copy.
func ImportMedia(store storage.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload importMediaRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		url, err := store.SaveFromURL(r.Context(), strings.TrimSpace(payload.URL))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to fetch media"))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"url": url})
	}
}

// DeleteMedia removes a stored file by its public URL.
func DeleteMedia(store storage.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url := strings.TrimSpace(r.URL.Query().Get("url"))
		if url == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "url is required"))
			return
		}

		if err := store.Delete(r.Context(), url); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to delete media"))
			return
		}
		responses.WriteSuccess(w, types.Message{Message: "media deleted"})
	}
}
