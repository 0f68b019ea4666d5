package gitsnip

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/gitsnip/gitsnip/store"
)

// Extract materializes one file as it exists at the selected point in a
// remote repository's history and caches it under a content-addressed name,
// returning the cached snippet's path.
//
// The sequence is: resolve the selector to a commit, derive the cache-key
// prefix, and check the store. A cached record produced from the same commit
// is returned as-is with no further network traffic. Otherwise the commit's
// tree is fetched shallowly into an ephemeral workspace, the file is read,
// any stale record is removed, and the new record is written.
//
// Every failure is terminal for the invocation; nothing is retried. A failed
// fetch leaves the previous record, if any, untouched.
//
// Example:
//
//	result, err := gitsnip.Extract(ctx, gitsnip.Request{
//	    RepoURL:  "https://github.com/org/repo.git",
//	    Selector: gitsnip.TagSelector("v1.2.0"),
//	    Path:     "src/lib.rs",
//	})
func Extract(ctx context.Context, req Request, opts ...Option) (*Result, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	if req.RepoURL == "" {
		return nil, validationError(fmt.Errorf("repository URL is required"))
	}
	if req.Path == "" {
		return nil, validationError(fmt.Errorf("file path is required"))
	}

	log := options.logger.WithFields(logrus.Fields{
		"repo": req.RepoURL,
		"path": req.Path,
	})

	log.WithField("selector", req.Selector.String()).Info("resolving selector")
	res, err := Resolve(ctx, options.remoteOps, req.RepoURL, req.Selector, options.auth)
	if err != nil {
		return nil, err
	}

	prefix := DeriveKey(req.RepoURL, res.Selector.Kind, res.Selector.Value, req.Path)
	log = log.WithFields(logrus.Fields{
		"selector": res.Selector.String(),
		"commit":   res.Commit,
		"prefix":   prefix,
	})

	storeOpts := []store.Option{}
	if options.storeFS != nil {
		storeOpts = append(storeOpts, store.WithFilesystem(options.storeFS))
	}
	st := store.New(options.storeDir, storeOpts...)

	// The lock spans the lookup and any replacement so a concurrent
	// invocation cannot observe the store without a record for this prefix.
	unlock, err := st.Lock()
	if err != nil {
		return nil, storageError(err, "failed to lock snippet store")
	}
	defer func() {
		_ = unlock()
	}()

	existing, err := st.FindByPrefix(prefix)
	if err != nil {
		return nil, storageError(err, "failed to scan snippet store")
	}

	if existing != nil && existing.Fresh(res.Commit) {
		log.WithField("cache_hit", true).Info("snippet is up to date")
		return &Result{
			SnippetPath: existing.Path,
			Commit:      res.Commit,
			Prefix:      prefix,
			Selector:    res.Selector,
			Refreshed:   false,
		}, nil
	}

	if existing != nil {
		log.WithField("stale_commit", existing.Commit).Info("cached snippet is stale")
	}

	log.Info("fetching commit")
	ws, err := options.remoteOps.FetchCommit(ctx, req.RepoURL, res.Commit, FetchOptions{
		Auth:         options.auth,
		WorkspaceDir: options.workspaceDir,
	})
	if err != nil {
		return nil, fetchError(err, res.Commit)
	}
	log = log.WithFields(logrus.Fields{
		"workspace":      ws.ID(),
		"workspace_path": ws.Path(),
	})

	content, err := ws.ReadFile(req.Path)
	if err != nil {
		_ = ws.Release()
		return nil, err
	}

	// The stale record survives until new content is in hand; removal and
	// replacement are adjacent steps under the store lock.
	if existing != nil {
		if err := st.Remove(existing); err != nil {
			_ = ws.Release()
			return nil, storageError(err, "failed to remove stale record")
		}
	}

	rec, err := st.Put(prefix, res.Commit, content)
	if err != nil {
		_ = ws.Release()
		return nil, storageError(err, "failed to write record")
	}

	if err := ws.Release(); err != nil {
		log.WithError(err).Warn("failed to release workspace")
	}

	log.WithField("snippet", rec.Path).Info("snippet saved")

	return &Result{
		SnippetPath: rec.Path,
		Commit:      res.Commit,
		Prefix:      prefix,
		Selector:    res.Selector,
		Refreshed:   true,
	}, nil
}
