package access_test

import (
	"context"
	"errors"
	"time"

	"github.com/rizkypratama/crm-management/internal/access"
	"github.com/rizkypratama/crm-management/internal/actor"
)

// Mock repository backing both the resolver and service specs.
type mockAccessRepository struct {
	requests map[int64]*access.AccessRequest
	grants   map[[2]int64]*access.Grant
	flags    map[int64]*access.PermissionFlag
	roles    map[int64]string
	nextID   int64

	grantorRolesErr error
	flagErr         error
	requestErr      error

	// simulates losing the insert race: the next CreateRequest stores a
	// competing pending row for the same pair and fails with a unique
	// violation, like the partial index on pending pairs would
	conflictOnCreate bool
}

func newMockAccessRepository() *mockAccessRepository {
	return &mockAccessRepository{
		requests: make(map[int64]*access.AccessRequest),
		grants:   make(map[[2]int64]*access.Grant),
		flags:    make(map[int64]*access.PermissionFlag),
		roles:    make(map[int64]string),
		nextID:   1,
	}
}

func (m *mockAccessRepository) addGrant(grantorID, granteeID int64, grantorRole string) {
	m.grants[[2]int64{grantorID, granteeID}] = &access.Grant{
		GrantorID: grantorID,
		GranteeID: granteeID,
		CreatedAt: time.Now(),
	}
	m.roles[grantorID] = grantorRole
}

func (m *mockAccessRepository) CreateRequest(_ context.Context, req *access.AccessRequest) error {
	if m.conflictOnCreate {
		m.conflictOnCreate = false
		winner := &access.AccessRequest{
			ID:          m.nextID,
			RequesterID: req.RequesterID,
			ReceiverID:  req.ReceiverID,
			Status:      access.StatusPending,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		m.nextID++
		m.requests[winner.ID] = winner
		return errors.New("duplicate key value violates unique constraint \"idx_access_requests_pending_pair\"")
	}
	if m.requestErr != nil {
		return m.requestErr
	}
	req.ID = m.nextID
	m.nextID++
	req.CreatedAt = time.Now()
	req.UpdatedAt = time.Now()
	m.requests[req.ID] = req
	return nil
}

func (m *mockAccessRepository) GetRequestByID(_ context.Context, id int64) (*access.AccessRequest, error) {
	req, ok := m.requests[id]
	if !ok {
		return nil, access.ErrRequestNotFound
	}
	copied := *req
	return &copied, nil
}

func (m *mockAccessRepository) GetPendingRequestByPair(_ context.Context, requesterID, receiverID int64) (*access.AccessRequest, error) {
	for _, req := range m.requests {
		if req.RequesterID == requesterID && req.ReceiverID == receiverID && req.Status == access.StatusPending {
			copied := *req
			return &copied, nil
		}
	}
	return nil, access.ErrRequestNotFound
}

func (m *mockAccessRepository) ListPendingForReceiver(_ context.Context, receiverID int64) ([]*access.AccessRequest, error) {
	out := make([]*access.AccessRequest, 0)
	for _, req := range m.requests {
		if req.ReceiverID == receiverID && req.Status == access.StatusPending {
			out = append(out, req)
		}
	}
	return out, nil
}

func (m *mockAccessRepository) ListHistoryForActor(_ context.Context, actorID int64) ([]*access.AccessRequest, error) {
	out := make([]*access.AccessRequest, 0)
	for _, req := range m.requests {
		if req.RequesterID == actorID || req.ReceiverID == actorID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (m *mockAccessRepository) AcceptRequest(_ context.Context, req *access.AccessRequest) error {
	stored, ok := m.requests[req.ID]
	if !ok {
		return access.ErrRequestNotFound
	}
	if stored.Status != access.StatusPending {
		return access.ErrInvalidStateTransition
	}
	stored.Status = access.StatusAccepted
	key := [2]int64{req.ReceiverID, req.RequesterID}
	if _, exists := m.grants[key]; !exists {
		m.grants[key] = &access.Grant{
			GrantorID: req.ReceiverID,
			GranteeID: req.RequesterID,
			CreatedAt: time.Now(),
		}
	}
	return nil
}

func (m *mockAccessRepository) RejectRequest(_ context.Context, req *access.AccessRequest) error {
	stored, ok := m.requests[req.ID]
	if !ok {
		return access.ErrRequestNotFound
	}
	if stored.Status != access.StatusPending {
		return access.ErrInvalidStateTransition
	}
	stored.Status = access.StatusRejected
	return nil
}

func (m *mockAccessRepository) RevokeRequest(_ context.Context, req *access.AccessRequest) error {
	stored, ok := m.requests[req.ID]
	if !ok {
		return access.ErrRequestNotFound
	}
	if stored.Status == access.StatusRevoked {
		return nil
	}
	if stored.Status != access.StatusAccepted {
		return access.ErrInvalidStateTransition
	}
	stored.Status = access.StatusRevoked
	delete(m.grants, [2]int64{req.ReceiverID, req.RequesterID})
	return nil
}

func (m *mockAccessRepository) ListGrantorRoles(_ context.Context, granteeID int64) ([]access.GrantorRole, error) {
	if m.grantorRolesErr != nil {
		return nil, m.grantorRolesErr
	}
	out := make([]access.GrantorRole, 0)
	for key, g := range m.grants {
		if g.GranteeID == granteeID {
			out = append(out, access.GrantorRole{GrantorID: key[0], Role: m.roles[key[0]]})
		}
	}
	return out, nil
}

func (m *mockAccessRepository) GrantorsForGrantee(_ context.Context, granteeID int64) ([]access.GrantorProjection, error) {
	out := make([]access.GrantorProjection, 0)
	for key, g := range m.grants {
		if g.GranteeID == granteeID {
			canViewAll := false
			if flag, ok := m.flags[key[0]]; ok {
				canViewAll = flag.CanViewAllData
			}
			out = append(out, access.GrantorProjection{
				ActorID:        key[0],
				Role:           m.roles[key[0]],
				CanViewAllData: canViewAll,
				GrantedAt:      g.CreatedAt,
			})
		}
	}
	return out, nil
}

func (m *mockAccessRepository) DeleteGrantByPair(_ context.Context, grantorID, granteeID int64) (bool, error) {
	key := [2]int64{grantorID, granteeID}
	if _, ok := m.grants[key]; !ok {
		return false, nil
	}
	delete(m.grants, key)
	return true, nil
}

func (m *mockAccessRepository) DeleteStalePendingRequests(_ context.Context, requesterID, receiverID int64) (int64, error) {
	var n int64
	for id, req := range m.requests {
		if req.RequesterID == requesterID && req.ReceiverID == receiverID && req.Status == access.StatusPending {
			delete(m.requests, id)
			n++
		}
	}
	return n, nil
}

func (m *mockAccessRepository) MarkAcceptedRequestsRevoked(_ context.Context, requesterID, receiverID int64) (int64, error) {
	var n int64
	for _, req := range m.requests {
		if req.RequesterID == requesterID && req.ReceiverID == receiverID && req.Status == access.StatusAccepted {
			req.Status = access.StatusRevoked
			n++
		}
	}
	return n, nil
}

func (m *mockAccessRepository) DeletePairPermissionFlags(_ context.Context, grantorID, granteeID int64) (int64, error) {
	flag, ok := m.flags[granteeID]
	if !ok || flag.GrantedBy != grantorID {
		return 0, nil
	}
	delete(m.flags, granteeID)
	return 1, nil
}

func (m *mockAccessRepository) GetPermissionFlag(_ context.Context, actorID int64) (*access.PermissionFlag, error) {
	if m.flagErr != nil {
		return nil, m.flagErr
	}
	flag, ok := m.flags[actorID]
	if !ok {
		return nil, nil
	}
	copied := *flag
	return &copied, nil
}

func (m *mockAccessRepository) UpsertPermissionFlag(_ context.Context, actorID int64, enabled bool, grantedBy int64) error {
	m.flags[actorID] = &access.PermissionFlag{
		ActorID:        actorID,
		CanViewAllData: enabled,
		GrantedBy:      grantedBy,
		UpdatedAt:      time.Now(),
	}
	return nil
}

// Mock directory.
type mockDirectory struct {
	actors     map[int64]*actor.Actor
	listErr    error
	lookupErr  error
	allActorID []int64
}

func newMockDirectory(actors ...*actor.Actor) *mockDirectory {
	d := &mockDirectory{actors: make(map[int64]*actor.Actor)}
	for _, a := range actors {
		d.actors[a.ID] = a
		d.allActorID = append(d.allActorID, a.ID)
	}
	return d
}

func (d *mockDirectory) GetByID(_ context.Context, id int64) (*actor.Actor, error) {
	if d.lookupErr != nil {
		return nil, d.lookupErr
	}
	a, ok := d.actors[id]
	if !ok {
		return nil, actor.ErrNotFound
	}
	return a, nil
}

func (d *mockDirectory) ListAllIDs(_ context.Context) ([]int64, error) {
	if d.listErr != nil {
		return nil, d.listErr
	}
	return d.allActorID, nil
}

var errStoreDown = errors.New("store unavailable")
