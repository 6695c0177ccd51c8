// Package navigation drives navigations end to end: match, run loaders and
// actions, resolve boundaries and commit the result.
//
// A Navigator belongs to one client (a browser tab, a websocket
// connection). It serializes that client's navigations: a newer navigation
// cancels the older one, and only the newest may commit.
package navigation
