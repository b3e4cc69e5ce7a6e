// Package artifacts persists per-unit outputs under structured keys.
//
// An Artifact is a numeric table plus metadata carrying its
// domain.ArtifactKey. Storage paths are derived from the key, and the key is
// stored next to the data, so identity never depends on parsing a file name.
//
// Backends: FileStore writes CSV files with a JSON sidecar, S3Store writes
// the same pair of objects to an S3-compatible bucket, and RedisStore keeps
// both in a hash with a TTL. Cached combines a primary store with a cache.
package artifacts
