package httpcontext

import (
	"context"

	"github.com/valyala/fasthttp"
)

const (
	userValueActor = "httpcontext.actor"

	KeyActorID Key = "actor_id"
)

// Actor identifies the authenticated caller of a request.
type Actor struct {
	UserID    string
	SessionID string
}

// SetActor stores the authenticated caller on the fasthttp request.
func SetActor(ctx *fasthttp.RequestCtx, actor Actor) {
	ctx.SetUserValue(userValueActor, actor)
}

// ActorFrom returns the caller stored by SetActor.
func ActorFrom(ctx *fasthttp.RequestCtx) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.UserValue(userValueActor).(Actor)
	return actor, ok && actor.UserID != ""
}

// ActorID returns the caller id carried by a context built with Attach.
func ActorID(ctx context.Context) string {
	id, _ := ctx.Value(KeyActorID).(string)
	return id
}
