// Package proto defines the line-oriented wire vocabulary of the chat
// protocol: the fixed server phrases and the formatting of relayed
// messages. The protocol speaks Russian on the wire; the constants here
// are the protocol, not UI strings, and must not be localized.
package proto

import (
	"fmt"
	"strings"
	"time"
)

const (
	// MsgNameTaken rejects a username during the handshake.
	MsgNameTaken = "Имя занято"
	// MsgNameAccepted confirms a username during the handshake.
	MsgNameAccepted = "Имя принято"

	// ActiveUsersPrefix starts the user list line sent once after acceptance.
	ActiveUsersPrefix = "Активные пользователи: "

	// PrivatePrefix marks the wire form of a private message:
	// "private|<username>|<body>".
	PrivatePrefix = "private|"
	// PrivateSeparator splits the private wire form into its segments.
	PrivateSeparator = "|"

	// DirectedMarker starts the convenience form "->name1,name2:body".
	DirectedMarker = "->"

	// TimeLayout is the timestamp stamped onto relayed chat lines.
	TimeLayout = "15:04"
)

// FormatChat renders a relayed chat line: "<user> (HH:mm): <body>".
// Both the public broadcast path and private delivery use this shape.
func FormatChat(user string, at time.Time, body string) string {
	return fmt.Sprintf("%s (%s): %s", user, at.Format(TimeLayout), body)
}

// FormatJoined renders the join announcement. Announcements carry no
// timestamp.
func FormatJoined(user string) string {
	return user + " вошел в чат"
}

// FormatLeft renders the departure announcement.
func FormatLeft(user string) string {
	return user + " покинул чат"
}

// FormatUserList renders the active users line from a username snapshot.
func FormatUserList(users []string) string {
	return ActiveUsersPrefix + strings.Join(users, ", ")
}

// FormatUserNotFound renders the sender-only notice for an unknown
// private-message target.
func FormatUserNotFound(target string) string {
	return fmt.Sprintf("Пользователь %s не найден.", target)
}

// FormatPrivate renders the wire form of a private message to a single
// target. The client uses it when expanding the "->" convenience form.
func FormatPrivate(target, body string) string {
	return PrivatePrefix + target + PrivateSeparator + body
}
