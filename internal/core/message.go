package core

import (
	"strings"

	"github.com/vovakirdan/netchat-server/internal/proto"
)

// MessageKind describes how an inbound line should be dispatched.
type MessageKind int

const (
	// KindBroadcast delivers to every active session except the sender.
	KindBroadcast MessageKind = iota
	// KindPrivate delivers to the named targets only.
	KindPrivate
)

// Message is the transient classification of one inbound line. Nothing
// is persisted after delivery.
type Message struct {
	Kind    MessageKind
	Targets []string
	Body    string
}

// Classify interprets one inbound line. Two private forms are accepted:
// the wire form "private|user|body" (single target, body verbatim) and
// the convenience form "->name1,name2:body" (targets trimmed, body
// trimmed). Anything else, including malformed private lines, is a
// broadcast carrying the line verbatim. Broadcast bodies are
// deliberately not trimmed while "->" bodies are; the asymmetry is part
// of the observed protocol.
func Classify(line string) Message {
	if rest, ok := strings.CutPrefix(line, proto.PrivatePrefix); ok {
		if target, body, found := strings.Cut(rest, proto.PrivateSeparator); found {
			return Message{Kind: KindPrivate, Targets: []string{target}, Body: body}
		}
	}

	if rest, ok := strings.CutPrefix(line, proto.DirectedMarker); ok {
		if rawTargets, body, found := strings.Cut(rest, ":"); found {
			targets := splitTargets(rawTargets)
			if len(targets) > 0 {
				return Message{Kind: KindPrivate, Targets: targets, Body: strings.TrimSpace(body)}
			}
		}
	}

	return Message{Kind: KindBroadcast, Body: line}
}

func splitTargets(raw string) []string {
	parts := strings.Split(raw, ",")
	targets := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			targets = append(targets, t)
		}
	}
	return targets
}
