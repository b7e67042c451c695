package access

import (
	"context"
	"log/slog"
	"sort"

	"github.com/rizkypratama/crm-management/internal/actor"
)

// Directory is the slice of the actor directory the access core depends on.
// actor.Service satisfies it.
type Directory interface {
	GetByID(ctx context.Context, id int64) (*actor.Actor, error)
	ListAllIDs(ctx context.Context) ([]int64, error)
}

// Resolver computes, for an authenticated actor, the set of owner identifiers
// whose records that actor may see. Every data-listing operation intersects
// its query with this set.
type Resolver struct {
	repo      Repository
	directory Directory
	logger    *slog.Logger
}

func NewResolver(repo Repository, directory Directory, logger *slog.Logger) *Resolver {
	return &Resolver{
		repo:      repo,
		directory: directory,
		logger:    logger,
	}
}

// ResolveAccessibleOwners returns the sorted set of accessible owner ids for
// the given actor. All rules are additive; the result is a union, never a
// subtraction. An empty or self-only set is a valid result, not an error, and
// every dependency failure degrades to the self-only set: the resolver fails
// closed, never open.
func (r *Resolver) ResolveAccessibleOwners(ctx context.Context, a *actor.Actor) []int64 {
	if a == nil || a.ID == 0 {
		r.logger.Warn("resolve called without a resolved identity")
		return []int64{}
	}

	set := map[int64]struct{}{a.ID: {}}

	// Admins see everything; no further rules apply.
	if a.IsAdmin() {
		all, err := r.directory.ListAllIDs(ctx)
		if err != nil {
			r.logger.Warn("directory unavailable, falling back to self-only visibility",
				"error", err, "actor_id", a.ID)
			return sortedIDs(set)
		}
		for _, id := range all {
			set[id] = struct{}{}
		}
		return sortedIDs(set)
	}

	// Grants received by this actor. Only admin grantors propagate
	// visibility; a grant from another standard actor adds nothing.
	grantors, err := r.repo.ListGrantorRoles(ctx, a.ID)
	if err != nil {
		r.logger.Warn("grant store unavailable, skipping grant-derived visibility",
			"error", err, "actor_id", a.ID)
	} else {
		for _, g := range grantors {
			if g.Role == actor.RoleAdmin {
				set[g.GrantorID] = struct{}{}
			}
		}
	}

	// Blanket permission flag. Evaluated in addition to the rules above.
	flag, err := r.repo.GetPermissionFlag(ctx, a.ID)
	if err != nil {
		r.logger.Warn("permission flag store unavailable, skipping blanket visibility",
			"error", err, "actor_id", a.ID)
	} else if flag != nil && flag.CanViewAllData {
		all, err := r.directory.ListAllIDs(ctx)
		if err != nil {
			r.logger.Warn("directory unavailable, skipping blanket visibility",
				"error", err, "actor_id", a.ID)
		} else {
			for _, id := range all {
				set[id] = struct{}{}
			}
		}
	}

	return sortedIDs(set)
}

func sortedIDs(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
