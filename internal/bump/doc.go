// Package bump defines semantic-version bump types and their severity ordering.
// Smaller severity means a more significant release; merging two bumps always
// keeps the more severe one.
package bump
