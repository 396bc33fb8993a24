// Package spacesync applies partial changes to the serialized document of a
// Genie space with a read-modify-write cycle.
//
// The Genie API has no version token for serialized_space, so two writers
// racing on the same space can lose updates: the last PATCH wins and carries
// whatever the writer fetched. Sync only rewrites the section it mutates and
// keeps every other section as the bytes it fetched, which protects edits
// made before the fetch but not edits made between the fetch and the write.
// Options.VerifyBeforeWrite narrows that window by re-fetching just before
// the PATCH; it is not a compare-and-swap and a writer can still slip in
// between the second fetch and the write.
package spacesync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp-forge/geniectl/pkg/genie"
	"github.com/hashicorp-forge/geniectl/pkg/serialized"
)

// SpaceStore reads and writes spaces. *genie.Client implements it.
type SpaceStore interface {
	ExportSpace(ctx context.Context, spaceID string) (*genie.Space, error)
	UpdateSpace(ctx context.Context, spaceID string, req *genie.UpdateSpaceRequest) (*genie.Space, error)
}

// Options tune how a Synchronizer writes.
type Options struct {
	// VerifyBeforeWrite re-fetches the document before writing and fails
	// with genie.ErrConflict when it changed since the first fetch.
	VerifyBeforeWrite bool

	// ConflictRetries is how many times the whole read-modify-write is
	// repeated after a conflict. Only meaningful with VerifyBeforeWrite.
	ConflictRetries int

	// RetryDelay is the initial backoff between conflict retries.
	RetryDelay time.Duration
}

// Synchronizer applies mutations to space documents.
type Synchronizer struct {
	store  SpaceStore
	logger hclog.Logger
	opts   Options
}

// New returns a Synchronizer. A nil logger disables logging.
func New(store SpaceStore, logger hclog.Logger, opts Options) *Synchronizer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 500 * time.Millisecond
	}
	return &Synchronizer{
		store:  store,
		logger: logger.Named("spacesync"),
		opts:   opts,
	}
}

// Export fetches and parses the current document of a space.
func (s *Synchronizer) Export(ctx context.Context, spaceID string) (*serialized.Document, error) {
	doc, _, err := s.fetch(ctx, spaceID)
	return doc, err
}

func (s *Synchronizer) fetch(ctx context.Context, spaceID string) (*serialized.Document, string, error) {
	space, err := s.store.ExportSpace(ctx, spaceID)
	if err != nil {
		return nil, "", err
	}
	doc, err := serialized.Parse([]byte(space.SerializedSpace))
	if err != nil {
		return nil, "", fmt.Errorf("space %s: %w", spaceID, err)
	}
	return doc, space.SerializedSpace, nil
}

// Sync runs mutation against one section of the space's document and
// writes the result back. It returns the document that was written.
func (s *Synchronizer) Sync(ctx context.Context, spaceID string, section serialized.Section, mutation serialized.Mutation) (*serialized.Document, error) {
	var written *serialized.Document

	op := func() error {
		doc, fetched, err := s.fetch(ctx, spaceID)
		if err != nil {
			return backoff.Permanent(err)
		}

		next, err := doc.Apply(section, mutation)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("space %s: %w", spaceID, err))
		}

		if err := s.write(ctx, spaceID, fetched, next); err != nil {
			if errors.Is(err, genie.ErrConflict) {
				return err
			}
			return backoff.Permanent(err)
		}

		written = next
		return nil
	}

	if err := s.retry(ctx, op); err != nil {
		return nil, err
	}

	s.logger.Info("synced section",
		"space_id", spaceID,
		"section", section.String(),
		"mutation", mutation.Name,
	)
	return written, nil
}

// Replace writes a whole document. Unsorted sections are sorted first and
// the document must pass validation.
func (s *Synchronizer) Replace(ctx context.Context, spaceID string, doc *serialized.Document) (*serialized.Document, error) {
	next := doc.Clone()
	changed, err := next.Normalize()
	if err != nil {
		return nil, err
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	for _, section := range changed {
		s.logger.Debug("sorted section before write", "space_id", spaceID, "section", section.String())
	}

	req := &genie.UpdateSpaceRequest{SerializedSpace: next.String()}
	if _, err := s.store.UpdateSpace(ctx, spaceID, req); err != nil {
		return nil, err
	}

	s.logger.Info("replaced document", "space_id", spaceID)
	return next, nil
}

func (s *Synchronizer) write(ctx context.Context, spaceID, fetched string, next *serialized.Document) error {
	if s.opts.VerifyBeforeWrite {
		space, err := s.store.ExportSpace(ctx, spaceID)
		if err != nil {
			return err
		}
		if space.SerializedSpace != fetched {
			s.logger.Warn("document changed during update", "space_id", spaceID)
			return genie.NewError("sync", genie.ErrConflict,
				"space %s changed since it was read", spaceID)
		}
	}

	req := &genie.UpdateSpaceRequest{SerializedSpace: next.String()}
	if _, err := s.store.UpdateSpace(ctx, spaceID, req); err != nil {
		return err
	}
	return nil
}

func (s *Synchronizer) retry(ctx context.Context, op backoff.Operation) error {
	retries := s.opts.ConflictRetries
	if retries < 0 || !s.opts.VerifyBeforeWrite {
		retries = 0
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.opts.RetryDelay

	notify := func(err error, wait time.Duration) {
		s.logger.Info("retrying after conflict", "error", err, "wait", wait)
	}

	return backoff.RetryNotify(op,
		backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx),
		notify)
}
