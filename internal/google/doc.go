// Package google owns the OAuth credential lifecycle for the remote calendar:
// interactive authorization through a loopback redirect, persistence and
// refresh of the long-lived credential, and revocation on disconnect. All
// other components obtain remote access exclusively through
// Manager.AuthorizedClient.
package google
