package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"workgallery/internal/delivery/http/dto"
	"workgallery/internal/delivery/http/middleware"
	"workgallery/internal/usecase"
)

type RecommendHandler struct {
	uc usecase.RecommendationUsecase
}

func NewRecommendHandler(uc usecase.RecommendationUsecase) *RecommendHandler {
	return &RecommendHandler{uc: uc}
}

func (h *RecommendHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/recommend", h.Recommend)
}

func (h *RecommendHandler) Recommend(c fiber.Ctx) error {
	rawID := c.Query("candidate_id")
	if rawID == "" {
		return middleware.NewAppError(fiber.StatusBadRequest, "candidate_id is required", nil)
	}
	candidateID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "candidate_id must be an integer", err)
	}

	topK := parseQueryInt(c, "top_k", usecase.DefaultTopK)

	res, err := h.uc.Recommend(c.Context(), candidateID, topK)
	if err != nil {
		return mapRecommendError(err)
	}

	return c.Status(fiber.StatusOK).JSON(dto.FromRecommendationResult(res))
}

func mapRecommendError(err error) error {
	var notFound *usecase.CandidateNotFoundError
	if errors.As(err, &notFound) {
		return middleware.NewAppError(fiber.StatusNotFound, notFound.Error(), err)
	}
	if errors.Is(err, usecase.ErrInvalidInput) {
		return middleware.NewAppError(fiber.StatusBadRequest, err.Error(), err)
	}
	return err
}

func parseQueryInt(c fiber.Ctx, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
