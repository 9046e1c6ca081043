package server

import (
	"context"

	"gitforum/internal/fanout"
	"gitforum/internal/featureflags"
	"gitforum/internal/models"
)

// flaggedPublisher gates realtime notification pushes behind the live_push
// flag, evaluated per recipient so the flag can run a staged rollout.
// Notifications always land in the recipient's feed either way; an off flag
// only skips the websocket push.
type flaggedPublisher struct {
	next  fanout.Publisher
	flags *featureflags.Manager
}

func (p *flaggedPublisher) PublishNotification(ctx context.Context, n *models.Notification) {
	if !p.flags.EnabledOrDefault("live_push", n.RecipientID, true) {
		return
	}
	p.next.PublishNotification(ctx, n)
}
