package content

import (
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Models lists the tables owned by the content store, in creation order.
func Models() []any {
	return []any{
		(*Item)(nil),
		(*Permalink)(nil),
	}
}

// NewPermalinkRepository creates a repository for custom permalink overrides keyed by path.
func NewPermalinkRepository(db *bun.DB) repository.Repository[*Permalink] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Permalink]{
		NewRecord: func() *Permalink { return &Permalink{} },
		GetID: func(p *Permalink) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Permalink, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "path"
		},
		GetIdentifierValue: func(p *Permalink) string {
			return p.Path
		},
	})
}
