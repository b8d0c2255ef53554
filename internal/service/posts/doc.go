// Package posts owns the derived fields of blog posts.
//
// Slugs come from the title unless one is given, and collide-free variants are
// allocated by appending -2, -3, ... Read time is recomputed from content on
// every write. PublishedAt is stamped the first time a post is published and is
// kept when the post is later unpublished.
//
// Every write runs in one transaction together with its audit event.
package posts
