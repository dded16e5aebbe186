package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"magnet-bot/internal/domain"
	"magnet-bot/internal/downloader"
	"magnet-bot/internal/units"
)

// Handler exposes a read-only view of the download client for local monitoring.
type Handler struct {
	torrents downloader.Client
	timeout  time.Duration
}

func NewHandler(torrents downloader.Client) *Handler {
	return &Handler{
		torrents: torrents,
		timeout:  15 * time.Second,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/torrents", h.listTorrents)
		api.GET("/torrents/:id", h.getTorrent)
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (h *Handler) listTorrents(c *gin.Context) {
	filter, err := domain.ParseStatusFilter(c.DefaultQuery("filter", string(domain.FilterResumed)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	torrents, err := h.torrents.List(ctx, filter)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	resp := make([]TorrentResponse, len(torrents))
	for i := range torrents {
		resp[i] = torrentToResponse(torrents[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getTorrent(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	t, err := h.torrents.Get(ctx, c.Param("id"))
	if errors.Is(err, downloader.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, torrentToResponse(t))
}

type TorrentResponse struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Status     domain.TorrentStatus `json:"status"`
	Progress   float64              `json:"progress"`
	Downloaded int64                `json:"downloaded_bytes"`
	AmountLeft int64                `json:"amount_left_bytes"`
	TotalSize  int64                `json:"total_size"`
	ETA        int64                `json:"eta_seconds"`
	Display    TorrentDisplay       `json:"display"`
}

// TorrentDisplay carries the same strings the chat reports show.
type TorrentDisplay struct {
	Progress   string `json:"progress"`
	Downloaded string `json:"downloaded"`
	Remaining  string `json:"remaining"`
	Size       string `json:"size"`
	ETA        string `json:"eta"`
}

func torrentToResponse(t domain.Torrent) TorrentResponse {
	return TorrentResponse{
		ID:         t.ID,
		Name:       t.Name,
		Status:     t.Status,
		Progress:   t.Progress,
		Downloaded: t.Downloaded,
		AmountLeft: t.AmountLeft,
		TotalSize:  t.TotalSize,
		ETA:        t.ETA,
		Display: TorrentDisplay{
			Progress:   units.FormatProgress(t.Progress),
			Downloaded: units.FormatSize(max(t.Downloaded, 0)),
			Remaining:  units.FormatSize(max(t.AmountLeft, 0)),
			Size:       units.FormatSize(max(t.TotalSize, 0)),
			ETA:        units.FormatETA(t.ETA),
		},
	}
}
