// internal/app/features/requests/handler.go
package requests

import (
	"net/http"

	"github.com/dalemusser/sessionhub/internal/app/lifecycle"
	"github.com/dalemusser/sessionhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the requests feature.
// Every mutation funnels through the lifecycle runner; the handlers only
// translate HTTP to events and the error taxonomy back to status codes.
type Handler struct {
	Runner *lifecycle.Runner
	Reader RequestReader
	Log    *zap.Logger
}

// NewHandler constructs a requests Handler. It is called from the
// bootstrap BuildHandler function once the runner and store exist.
func NewHandler(runner *lifecycle.Runner, reader RequestReader, logger *zap.Logger) *Handler {
	return &Handler{
		Runner: runner,
		Reader: reader,
		Log:    logger,
	}
}

// actor resolves the signed-in user's ObjectID. A false return means the
// response has already been written.
func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Please sign in to continue.")
		return primitive.NilObjectID, false
	}
	oid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid user session.")
		return primitive.NilObjectID, false
	}
	return oid, true
}

// requestID parses the {id} route parameter. A false return means the
// response has already been written.
func requestID(w http.ResponseWriter, raw string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request ID.")
		return primitive.NilObjectID, false
	}
	return oid, true
}
