// Package content holds the articles bundled into the binary at build time.
package content

import "embed"

// Posts contains posts/*.md.
//
//go:embed posts/*.md
var Posts embed.FS

// PostsDir is the directory of Posts holding the articles.
const PostsDir = "posts"
