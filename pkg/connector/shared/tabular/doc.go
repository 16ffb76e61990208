// Package tabular holds the file-level codecs shared by the file and object
// storage connectors: CSV reading and writing, JSON via pkg/json, and
// compressed file handles via pkg/compression.
package tabular
