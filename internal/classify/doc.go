// Package classify turns raw user input into typed values.
//
// Classify decides whether a value submitted for a leak check is an e-mail
// address, a phone number or a credential. NormalizeLink decides whether a
// chat message is a link that can be submitted to the scan engine.
package classify
