package device

import (
	"encoding/base64"
	"net/http"

	"marketflow/internal/attendance"
	"marketflow/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type PositionReport struct {
	Latitude  float64 `json:"latitude" binding:"required"`
	Longitude float64 `json:"longitude" binding:"required"`
}

type FrameReport struct {
	Width  int    `json:"width" binding:"required,min=1"`
	Height int    `json:"height" binding:"required,min=1"`
	Pixels string `json:"pixels" binding:"required"`
}

type Handler struct {
	feed *Feed
}

func NewHandler(feed *Feed) *Handler {
	return &Handler{feed: feed}
}

func (h *Handler) ReportPosition(c *gin.Context) {
	var req PositionReport
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Input tidak valid", err.Error())
		return
	}

	h.feed.OfferPosition(c.GetString("employee_id"), attendance.Position{Latitude: req.Latitude, Longitude: req.Longitude})
	response.Success(c, http.StatusAccepted, gin.H{"received": true}, nil)
}

func (h *Handler) ReportFrame(c *gin.Context) {
	var req FrameReport
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Input tidak valid", err.Error())
		return
	}

	pixels, err := base64.StdEncoding.DecodeString(req.Pixels)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Input tidak valid", "pixels must be base64")
		return
	}
	if len(pixels) != req.Width*req.Height {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Input tidak valid", "pixel buffer does not match dimensions")
		return
	}

	h.feed.OfferFrame(c.GetString("employee_id"), attendance.Frame{Width: req.Width, Height: req.Height, Pixels: pixels})
	response.Success(c, http.StatusAccepted, gin.H{"received": true}, nil)
}
