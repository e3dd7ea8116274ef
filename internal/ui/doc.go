// Package ui implements the interactive terminal client using bubbletea's Elm architecture.
//
// Every screen is a page resolved through the [routes.Router], so the same guards apply here as on the command line:
//   - login and register forms
//   - a home menu that only offers routes the current session may open
//   - accepted concert listing, concert details with ticket purchase and comments, and concert creation
//   - the profile with owned tickets and concerts
//   - administrator moderation of concerts and users
//
// The [Model] owns the current page and forwards messages to it.
// Request results are tagged with the id of the page that issued them; results for a page that is no longer shown are dropped.
// An unauthorized response from any request ends the session and returns to the login page.
package ui
