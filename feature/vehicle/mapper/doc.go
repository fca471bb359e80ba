// Package mapper turns a Syscara listing into the flat field record written to the
// Webflow vehicle collection.
//
// Map is pure: it performs no I/O and never fails. Every field value is a string or
// a string slice; missing source attributes degrade to "". Categorical values
// (features, bed types) are returned as slugs next to the record because resolving
// them to reference ids needs the target system. Media ids are bundled into the
// media-cache field, which callers expand into proxy URLs.
package mapper
