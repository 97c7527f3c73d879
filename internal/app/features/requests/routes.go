// internal/app/features/requests/routes.go
package requests

import (
	"github.com/dalemusser/sessionhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// Everything under /api/requests requires an established identity.
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)

		// VIEWS
		pr.Get("/{id}", h.HandleView)
		pr.Get("/{id}/live", h.HandleLive)
		pr.Get("/group/{gid}", h.HandleListByGroup)

		// VOTING (pending phase)
		pr.Post("/{id}/vote", h.HandleVote)
		pr.Post("/{id}/unvote", h.HandleUnvote)

		// ENROLLMENT
		pr.Post("/{id}/join", h.HandleJoin)
		pr.Post("/{id}/leave", h.HandleLeave)

		// TEACHING
		pr.Post("/{id}/teach", h.HandleTeachApply)
		pr.Post("/{id}/withdraw", h.HandleTeachWithdraw)
		pr.Post("/{id}/select-teacher", h.HandleSelectTeacher)

		// FUNDING
		pr.Post("/{id}/pay", h.HandlePay)

		// CLOSE-OUT
		pr.Post("/{id}/complete", h.HandleComplete)
		pr.Post("/{id}/cancel", h.HandleCancel)
	})

	return r
}
