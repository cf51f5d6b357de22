// Package cmd implements the command-line interface for shiftcal.
//
// This package provides the following commands:
//   - connect: Run the interactive Google authorization flow
//   - disconnect: Revoke and remove the stored Google credential
//   - status: Show connection state, account and selected calendar
//   - calendars: List writable calendars and pick the sync target
//   - pull: Pull remote changes once or on a cron schedule
//   - holidays: List Korean public holidays for a year
//   - version: Display version information
//
// The status command is the default command when no subcommand is specified.
package cmd
