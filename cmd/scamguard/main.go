// Package main provides the entry point for the scamguard CLI.
//
// scamguard checks whether a piece of personal data has leaked, whether
// a link or file is malicious, and whether a conversation looks like a
// scam.
//
// Usage:
//
//	scamguard leaks <value>
//	scamguard scan link <url>
//	scamguard analyze chat.txt
//	scamguard serve
//
// See --help for all available options.
package main

func main() {
	Execute()
}
