package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/nevroth/nevroth/internal/auth"
	"github.com/nevroth/nevroth/internal/common"
	"github.com/nevroth/nevroth/internal/models"
	"github.com/nevroth/nevroth/internal/store"
)

// Close codes sent when a connection is refused after the upgrade.
const (
	CloseUnauthorized   = 4000
	CloseNotParticipant = 4001
)

// AdmissionError is a refused connection and the close code to send.
type AdmissionError struct {
	Code   int
	Reason string
}

func (e *AdmissionError) Error() string {
	return fmt.Sprintf("admission refused (%d): %s", e.Code, e.Reason)
}

// Admission decides whether a websocket request may join its group.
// Membership is checked once here and not re-checked for the life of the
// connection.
type Admission struct {
	store     store.Store
	secretKey []byte
}

func NewAdmission(st store.Store, secretKey []byte) *Admission {
	return &Admission{store: st, secretKey: secretKey}
}

// AdmitRoom authenticates the request and requires chat membership.
func (a *Admission) AdmitRoom(ctx context.Context, r *http.Request, chatID int64) (*models.User, error) {
	user, err := a.authenticate(ctx, r)
	if err != nil {
		return nil, err
	}

	ok, err := a.store.IsParticipant(ctx, chatID, user.ID)
	if err != nil {
		return nil, &AdmissionError{Code: websocket.CloseInternalServerErr, Reason: "internal error"}
	}
	if !ok {
		return nil, &AdmissionError{Code: CloseNotParticipant, Reason: "not a participant"}
	}
	return user, nil
}

// AdmitInbox authenticates the request. A user's own chat list needs no
// further authorization.
func (a *Admission) AdmitInbox(ctx context.Context, r *http.Request) (*models.User, error) {
	return a.authenticate(ctx, r)
}

func (a *Admission) authenticate(ctx context.Context, r *http.Request) (*models.User, error) {
	token := auth.TokenFromRequest(r)
	if token == "" {
		return nil, &AdmissionError{Code: CloseUnauthorized, Reason: "missing token"}
	}

	userID, err := auth.ParseToken(token, a.secretKey)
	if err != nil {
		return nil, &AdmissionError{Code: CloseUnauthorized, Reason: "invalid token"}
	}

	user, err := a.store.GetUserByID(ctx, userID)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, &AdmissionError{Code: CloseUnauthorized, Reason: "unknown user"}
	}
	if err != nil {
		return nil, &AdmissionError{Code: websocket.CloseInternalServerErr, Reason: "internal error"}
	}
	return user, nil
}
