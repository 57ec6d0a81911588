// Package cache persists resolved versions between invocations so repeated
// runs in one build skip the describe query.
//
// Each repository gets one YAML entry under the cache directory, named after
// a hash of the repository's absolute path:
//
//	.gitver/3f5a9c0d2b7e4a11.yaml
//
// An entry is used only while HEAD's commit id and dirty flag, and the tag
// selection settings, match the ones it was written for, so moving HEAD
// invalidates it without any cleanup.
// Entries are written to a temporary file and renamed into place, which keeps
// concurrent writers from leaving a partial file behind; the last writer wins.
//
// Lookups never fail. A missing, unreadable, stale or inconsistent entry is a
// miss and is logged at debug level.
//
//	store := cache.New(".gitver")
//	if v, ok := store.TryLoad(repoPath, head); ok {
//	    fmt.Println(v)
//	}
package cache
