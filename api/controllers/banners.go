package controllers

import (
	"net/http"

	"github.com/kidoralabs/kidora-backend/api/responses"
	"github.com/kidoralabs/kidora-backend/api/validators"
	bannersvc "github.com/kidoralabs/kidora-backend/internal/banners"
	"github.com/kidoralabs/kidora-backend/pkg/logger"
	"github.com/kidoralabs/kidora-backend/pkg/types"
)

type createBannerRequest struct {
	Title     string  `json:"title" validate:"required"`
	Subtitle  *string `json:"subtitle,omitempty"`
	ImageURL  string  `json:"imageUrl" validate:"required"`
	LinkURL   *string `json:"linkUrl,omitempty"`
	SortOrder int     `json:"sortOrder"`
	IsActive  *bool   `json:"isActive,omitempty"`
}

type updateBannerRequest struct {
	Title     *string `json:"title,omitempty"`
	Subtitle  *string `json:"subtitle,omitempty"`
	ImageURL  *string `json:"imageUrl,omitempty"`
	LinkURL   *string `json:"linkUrl,omitempty"`
	SortOrder *int    `json:"sortOrder,omitempty"`
	IsActive  *bool   `json:"isActive,omitempty"`
}

// ListHeroBanners returns the active banners in display order.
func ListHeroBanners(svc bannersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		banners, err := svc.ListActive(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": banners})
	}
}

func AdminListHeroBanners(svc bannersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		banners, err := svc.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": banners})
	}
}

func CreateHeroBanner(svc bannersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createBannerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		banner, err := svc.Create(r.Context(), bannersvc.CreateInput{
			Title:     payload.Title,
			Subtitle:  payload.Subtitle,
			ImageURL:  payload.ImageURL,
			LinkURL:   payload.LinkURL,
			SortOrder: payload.SortOrder,
			IsActive:  payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, banner)
	}
}

func UpdateHeroBanner(svc bannersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateBannerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		banner, err := svc.Update(r.Context(), id, bannersvc.UpdateInput{
			Title:     payload.Title,
			Subtitle:  payload.Subtitle,
			ImageURL:  payload.ImageURL,
			LinkURL:   payload.LinkURL,
			SortOrder: payload.SortOrder,
			IsActive:  payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, banner)
	}
}

func DeleteHeroBanner(svc bannersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, types.Message{Message: "banner deleted"})
	}
}
