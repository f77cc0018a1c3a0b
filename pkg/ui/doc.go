// Package ui renders the server-side CAD/MDT page shell with maragu.dev/gomponents:
// the sidebar built from the filtered navigation table, and the unauthorized panel the
// layout guard shows in place of a denied page.
package ui
