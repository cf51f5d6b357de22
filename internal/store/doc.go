// Package store defines the local persistence contracts the sync engine
// depends on: a key-value settings store and a secure store for the OAuth
// refresh credential.
//
// The application embedding the engine normally provides its own
// implementations backed by its database. The file-backed implementations in
// this package exist so the CLI works standalone: settings live in a YAML
// file under the XDG config directory and the refresh credential in a
// 0600-permission file under the XDG data directory.
package store
