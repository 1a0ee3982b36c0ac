package handler

import (
	"net/http"

	"github.com/hitoshi/authapp/internal/middleware"
)

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Health は稼働確認用のハンドラー。
// GET /api/health
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Message: "Server is running",
	})
}
