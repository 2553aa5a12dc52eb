// Package session collects multi-message conversations before they are
// analyzed.
//
// A session is keyed by chat scope, chat and owner. It moves from Idle to
// Collecting on an explicit start, accepts further messages while
// Collecting and ends with either a cancel or a complete action, after
// which it is Idle again. In group chats only the owner may extend a
// session. All state is held in memory and lost on restart.
package session
