package git

import (
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createCommitInMemory writes a single-file commit with go-git's low-level
// API and points refs/heads/<branch> at it.
func createCommitInMemory(t *testing.T, store *memory.Storage, branch string) plumbing.Hash {
	t.Helper()

	blob := store.NewEncodedObject()
	blob.SetType(plumbing.BlobObject)
	w, err := blob.Writer()
	require.NoError(t, err)
	_, err = w.Write([]byte("test content"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	blobHash, err := store.SetEncodedObject(blob)
	require.NoError(t, err)

	tree := object.Tree{
		Entries: []object.TreeEntry{{Name: "README.md", Mode: 0100644, Hash: blobHash}},
	}
	treeObj := store.NewEncodedObject()
	require.NoError(t, tree.Encode(treeObj))
	treeHash, err := store.SetEncodedObject(treeObj)
	require.NoError(t, err)

	sig := object.Signature{Name: "Test Author", Email: "test@example.com", When: time.Now()}
	commit := &object.Commit{Author: sig, Committer: sig, Message: "Initial commit", TreeHash: treeHash}
	commitObj := store.NewEncodedObject()
	require.NoError(t, commit.Encode(commitObj))
	commitHash, err := store.SetEncodedObject(commitObj)
	require.NoError(t, err)

	require.NoError(t, store.SetReference(
		plumbing.NewHashReference(plumbing.NewBranchReferenceName(branch), commitHash)))
	require.NoError(t, store.SetReference(
		plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(branch))))
	return commitHash
}

func addOrigin(t *testing.T, repo *git.Repository, url string) {
	t.Helper()
	_, err := repo.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{url}})
	require.NoError(t, err)
}

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("branch, origin and short commit", func(t *testing.T) {
		t.Parallel()
		store := memory.NewStorage()
		repo, err := git.Init(store, nil)
		require.NoError(t, err)
		hash := createCommitInMemory(t, store, "main")
		addOrigin(t, repo, "git@github.com:acme/widgets.git")

		info := NewExtractor(NewInMemoryOpener(repo)).Extract("/ignored")
		require.NotNil(t, info)
		require.NotNil(t, info.Branch)
		require.NotNil(t, info.Repo)
		require.NotNil(t, info.Commit)
		assert.Equal(t, "main", *info.Branch)
		assert.Equal(t, "git@github.com:acme/widgets.git", *info.Repo)
		assert.Equal(t, hash.String()[:7], *info.Commit)
	})

	t.Run("no origin remote", func(t *testing.T) {
		t.Parallel()
		store := memory.NewStorage()
		repo, err := git.Init(store, nil)
		require.NoError(t, err)
		createCommitInMemory(t, store, "feature/x")

		info := NewExtractor(NewInMemoryOpener(repo)).Extract("/ignored")
		require.NotNil(t, info)
		assert.Equal(t, "feature/x", *info.Branch)
		assert.Nil(t, info.Repo)
		assert.NotNil(t, info.Commit)
	})

	t.Run("detached head has no branch", func(t *testing.T) {
		t.Parallel()
		store := memory.NewStorage()
		repo, err := git.Init(store, nil)
		require.NoError(t, err)
		hash := createCommitInMemory(t, store, "main")
		require.NoError(t, store.SetReference(plumbing.NewHashReference(plumbing.HEAD, hash)))

		info := NewExtractor(NewInMemoryOpener(repo)).Extract("/ignored")
		require.NotNil(t, info)
		assert.Nil(t, info.Branch)
		assert.Equal(t, hash.String()[:7], *info.Commit)
	})

	t.Run("unborn branch", func(t *testing.T) {
		t.Parallel()
		store := memory.NewStorage()
		repo, err := git.Init(store, nil)
		require.NoError(t, err)

		info := NewExtractor(NewInMemoryOpener(repo)).Extract("/ignored")
		require.NotNil(t, info)
		assert.Nil(t, info.Commit)
		require.NotNil(t, info.Branch)
		assert.Equal(t, "master", *info.Branch)
	})

	t.Run("not a repository", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, NewExtractor(NewInMemoryOpener(nil)).Extract("/ignored"))
		assert.Nil(t, NewExtractor(nil).Extract(t.TempDir()))
	})
}
