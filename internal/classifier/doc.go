// Package classifier talks to a chat-completions service that scores
// conversation transcripts for scam signals, and to the balance endpoint
// that gates paid requests.
package classifier
