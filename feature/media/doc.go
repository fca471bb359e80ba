// Package media proxies Syscara media files to the public web.
//
// The CMS stores URLs of the form <origin>/media?id=<id>, so this route must stay
// public and stable. Each request resolves the media id upstream and streams the
// file back with the upstream content type.
//
// When object storage is enabled, files are cached under "media/<id>" in the
// configured bucket. A cached object is served without touching Syscara; a miss is
// fetched, written to the bucket and served from memory. Storage failures degrade
// to plain proxying.
package media
