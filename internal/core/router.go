package core

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/vovakirdan/netchat-server/internal/proto"
)

// Router turns classified messages into deliveries through the
// registry. It holds no state of its own beyond its collaborators and a
// clock, so every method is safe for concurrent use by all sessions.
type Router struct {
	reg *Registry
	log *zerolog.Logger
	now func() time.Time
}

// NewRouter builds a router over the given registry.
func NewRouter(reg *Registry, logger *zerolog.Logger) *Router {
	return &Router{
		reg: reg,
		log: logger,
		now: time.Now,
	}
}

// Route classifies one inbound line from an active session and
// dispatches it. Public chat is stamped "<user> (HH:mm): <body>".
func (r *Router) Route(sender *Session, line string) {
	msg := Classify(line)
	switch msg.Kind {
	case KindPrivate:
		r.routePrivate(sender, msg)
	default:
		r.broadcastFrom(sender, proto.FormatChat(sender.Username(), r.now(), msg.Body))
	}
}

// routePrivate processes targets independently, in order. An unknown
// target yields a notice to the sender only and never blocks delivery
// to the remaining targets.
func (r *Router) routePrivate(sender *Session, msg Message) {
	stamped := proto.FormatChat(sender.Username(), r.now(), msg.Body)
	for _, target := range msg.Targets {
		peer, ok := r.reg.LookupByUsername(target)
		if !ok {
			if err := sender.Send(proto.FormatUserNotFound(target)); err != nil {
				r.log.Warn().Err(err).Str("session_id", sender.ID()).Msg("not-found notice dropped")
			}
			continue
		}
		if err := peer.Send(stamped); err != nil {
			r.log.Warn().Err(err).Str("target", target).Msg("private delivery failed")
		}
	}
}

// AnnounceJoin broadcasts the unstamped join announcement to everyone
// but the newcomer.
func (r *Router) AnnounceJoin(s *Session) {
	r.log.Info().Str("user", s.Username()).Msg("user joined")
	r.broadcastFrom(s, proto.FormatJoined(s.Username()))
}

// AnnounceLeave broadcasts the departure announcement. Best effort: the
// departing session is already unregistered when this runs.
func (r *Router) AnnounceLeave(s *Session) {
	r.log.Info().Str("user", s.Username()).Msg("user left")
	r.broadcastFrom(s, proto.FormatLeft(s.Username()))
}

// SendUserList sends the requester its one-time active users snapshot.
func (r *Router) SendUserList(s *Session) {
	if err := s.Send(proto.FormatUserList(r.reg.SnapshotUsernames())); err != nil {
		r.log.Warn().Err(err).Str("session_id", s.ID()).Msg("user list dropped")
	}
}

// broadcastFrom fans one already-formatted line out to every active
// session except the sender. A failed recipient is skipped, never
// aborting delivery to the rest.
func (r *Router) broadcastFrom(sender *Session, line string) {
	r.reg.ForEachExcept(sender.ID(), func(peer *Session) {
		if err := peer.Send(line); err != nil {
			r.log.Warn().Err(err).Str("peer_id", peer.ID()).Msg("broadcast delivery failed")
		}
	})
}
