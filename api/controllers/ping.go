package controllers

import (
	"net/http"
	"strconv"

	"github.com/stockroomhq/stockroom-backend/api/middleware"
	"github.com/stockroomhq/stockroom-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "private", "status": "ok"}
		if accountID := middleware.AccountIDFromContext(r.Context()); accountID > 0 {
			payload["account_id"] = strconv.FormatInt(accountID, 10)
		}
		responses.WriteSuccess(w, payload)
	}
}
