package handler

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"biteclub/internal/httputil"
	"biteclub/internal/model"
	"biteclub/internal/service"
	"biteclub/internal/transport/http/middleware"
)

type ReviewHandler struct {
	reviewService *service.ReviewService
}

func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

// Create handles POST /reviews (multipart: business_id, business_title,
// content, optional image field "image").
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	maxFormSize := int64(model.MaxImageSizeBytes) + 1024*1024 // allow form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return
		}
		httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Image exceeds 5MB limit")
		return
	}

	req := model.CreateReviewRequest{
		BusinessID:    r.FormValue("business_id"),
		BusinessTitle: r.FormValue("business_title"),
		Content:       r.FormValue("content"),
	}

	var file multipart.File
	var header *multipart.FileHeader
	f, fh, err := r.FormFile("image")
	if err == nil {
		defer f.Close()
		file = f
		header = fh
	} else if err != http.ErrMissingFile {
		httputil.WriteBadRequest(w, "Invalid image upload")
		return
	}

	review, err := h.reviewService.Create(r.Context(), actorID, &req, file, header)
	if err != nil {
		var verr *model.ValidationError
		switch {
		case errors.As(err, &verr):
			httputil.WriteBadRequest(w, verr.Message)
		case errors.Is(err, model.ErrReviewContentLength):
			httputil.WriteBadRequest(w, err.Error())
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Image exceeds 5MB limit")
		case errors.Is(err, model.ErrInvalidImageType):
			httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type. Allowed: jpeg, png, gif, webp")
		default:
			slog.Error("review create failed", "error", err)
			httputil.WriteInternalError(w, "Failed to post review")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, review)
}

// GetUserReviews handles GET /users/{username}/reviews
func (h *ReviewHandler) GetUserReviews(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	cursor, limit, err := parseListParams(r)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.reviewService.ListByUser(r.Context(), username, cursor, limit)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		slog.Error("list user reviews failed", "username", username, "error", err)
		httputil.WriteInternalError(w, "Failed to fetch reviews")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// GetBusinessReviews handles GET /restaurants/{id}/reviews
func (h *ReviewHandler) GetBusinessReviews(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "id")

	cursor, limit, err := parseListParams(r)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.reviewService.ListByBusiness(r.Context(), businessID, cursor, limit)
	if err != nil {
		slog.Error("list business reviews failed", "business_id", businessID, "error", err)
		httputil.WriteInternalError(w, "Failed to fetch reviews")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
