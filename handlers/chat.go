package handlers

import (
	"net/http"

	"portfolio-server/types"

	"go.uber.org/zap"
)

func ChatHandler(w http.ResponseWriter, r *http.Request) {
	zap.L().Debug("Received request for ChatHandler")

	var req types.ChatRequest
	if !readJson(w, r, &req) {
		return
	}

	res, apiErr := deps.Chatbot.Reply(r.Context(), req)
	if apiErr != nil {
		writeApiError(w, *apiErr)
		return
	}

	writeJson(w, http.StatusOK, res)
}
