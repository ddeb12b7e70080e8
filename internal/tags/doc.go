// Package tags assigns commits to the tag that first contains them.
//
// [Resolve] walks the commit graph breadth-first from every tagged commit at
// once, following parent edges. Each commit reached is labelled with the tag
// that minimizes (ancestry distance, tag name): the closest tag wins, and
// equally distant tags are ordered lexically by name so the result never
// depends on enumeration order. Commits no tag reaches are unreleased.
//
// [Match] applies the user's tag glob and [Dir] maps a tag to its output
// directory, optionally nesting prerelease tags under their base version.
package tags
