// Package tui holds the terminal presentation helpers of the CLI.
package tui
