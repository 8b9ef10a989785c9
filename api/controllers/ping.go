package controllers

import (
	"net/http"

	"github.com/omerfdemir/teklifix-backend/api/middleware"
	"github.com/omerfdemir/teklifix-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func CustomerPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "customer", "status": "ok"}
		if actor := middleware.ActorIDFromContext(r.Context()); actor != "" {
			payload["actor_id"] = actor
		}
		responses.WriteSuccess(w, payload)
	}
}

func AdminPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "admin", "status": "ok"}
		if actor := middleware.ActorIDFromContext(r.Context()); actor != "" {
			payload["actor_id"] = actor
		}
		responses.WriteSuccess(w, payload)
	}
}
