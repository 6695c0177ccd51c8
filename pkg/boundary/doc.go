// Package boundary turns the outcomes of a navigation into a render Plan.
//
// Resolve walks the errors raised during a navigation and assigns each to
// the nearest error boundary at or above the route that raised it. The
// route tree's sentinel root catches everything else. The shallowest
// boundary holding an error renders; routes above it keep their loader data.
package boundary
