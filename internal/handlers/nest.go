package handlers

import (
	"context"
	"fmt"

	"github.com/hearthhub/configflow/internal/engine"
	"github.com/hearthhub/configflow/pkg/api"
)

// NestHandler is an OAuth-style flow: the first step redirects the user to
// an external authorization page and the flow suspends until the callback
// posts the resulting code. The engine holds no resources across that gap;
// the persisted flow is all the state there is
type NestHandler struct {
	authBaseURL string
}

const (
	nestStepUser api.StepID = "user"
	nestTitle               = "Nest"
)

var _ engine.Handler = (*NestHandler)(nil)

// NewNestFactory builds the nest handler factory. authBaseURL is the
// authorization endpoint users are redirected to
func NewNestFactory(authBaseURL string) engine.Factory {
	return func() engine.Handler {
		return &NestHandler{authBaseURL: authBaseURL}
	}
}

func (h *NestHandler) Kind() api.HandlerKind {
	return api.HandlerKindOAuth
}

func (h *NestHandler) InitialStep() api.StepID {
	return nestStepUser
}

func (h *NestHandler) Step(
	_ context.Context, sc *engine.StepContext, input api.Data,
) (*api.StepResult, error) {
	if input == nil {
		url := fmt.Sprintf("%s/authorize?flow_id=%s",
			h.authBaseURL, sc.Flow.ID)
		return sc.ExternalStep(url), nil
	}

	code := sc.Flow.Data.GetString("code", "")
	if code == "" {
		return sc.Abort("authorization callback carried no code"), nil
	}
	return sc.CreateEntry(nestTitle, api.Data{"code": code}), nil
}
