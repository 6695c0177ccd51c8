// Package loader runs the loaders and actions of a matched route chain.
//
// A read navigation runs every matched loader. A submission runs the action
// of its target route first: the deepest match, or the parent of an index
// leaf unless the request carries "?index". If the action throws, only the
// loaders above the route that will render its error run; otherwise every
// loader re-runs.
//
// Handlers signal errors by returning them. Panics are recovered. Nothing a
// handler does is returned from Run as an error; outcomes are recorded per
// match in the Result and resolved later by package boundary.
//
// On client transitions a loader whose route, params, pathname base and
// search string are unchanged reuses the committed data in the previous
// Snapshot instead of running.
package loader
