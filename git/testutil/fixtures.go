package testutil

// Test user information used across all test helpers.
const (
	// TestAuthor is the default author name for test commits.
	TestAuthor = "Test User"

	// TestEmail is the default email for test commits.
	TestEmail = "test@example.com"
)

// Test commit messages.
const (
	// TestCommitMessage is a standard test commit message.
	TestCommitMessage = "Test commit"

	// TestInitialCommit is a message for initial commits.
	TestInitialCommit = "Initial commit"

	// TestMergeCommit is a message for merge commits.
	TestMergeCommit = "Merge branch 'feature'"
)

// Test tag names.
const (
	// TestTagName is a release tag without a prefix.
	TestTagName = "0.2.11"

	// TestTagNamePrefixed is a release tag with the conventional v prefix.
	TestTagNamePrefixed = "v1.0.0"

	// TestTagNameMalformed is a tag that is not a full semantic version.
	TestTagNameMalformed = "v1.2"

	// TestTagMessage is a standard tag message.
	TestTagMessage = "Release version 0.2.11"
)
