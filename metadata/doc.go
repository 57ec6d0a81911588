// Package metadata reads the raw facts a version is derived from: the nearest
// reachable tag, the first-parent distance to it, the abbreviated HEAD commit
// id and, optionally, whether the working tree is dirty.
//
// Two backends implement Source. GoGitSource reads the repository in process
// through the git package and also works on in-memory filesystems.
// CLISource shells out to the git binary through the exec package and follows
// `git describe --tags --long --first-parent` exactly.
//
//	src, err := metadata.New("/path/to/repo", metadata.Options{Backend: metadata.BackendGoGit})
//	if err != nil {
//	    return err
//	}
//	raw, err := src.Describe(ctx)
//
// Sources never modify the repository. Every failure to read it is reported
// as a REPOSITORY_ERROR.
package metadata
