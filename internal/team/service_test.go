package team_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daap14/teamhub/internal/apperr"
	"github.com/daap14/teamhub/internal/profile"
	"github.com/daap14/teamhub/internal/team"
)

// --- In-memory fakes ---

type memStore struct {
	teams    map[uuid.UUID]*team.Team
	profiles map[uuid.UUID]*profile.Profile

	createErrs []error
	creates    int
}

func newMemStore() *memStore {
	return &memStore{
		teams:    map[uuid.UUID]*team.Team{},
		profiles: map[uuid.UUID]*profile.Profile{},
	}
}

func (m *memStore) addProfile(teamID *uuid.UUID) uuid.UUID {
	id := uuid.New()
	m.profiles[id] = &profile.Profile{ID: id, Name: "member", TeamID: teamID, ProfileCompleted: true}
	return id
}

func (m *memStore) addTeam(name, slug, code string) *team.Team {
	t := &team.Team{ID: uuid.New(), Name: name, Slug: slug, InviteCode: code, CreatedAt: time.Now()}
	m.teams[t.ID] = t
	return t
}

func (m *memStore) find(match func(*team.Team) bool) (*team.Team, error) {
	for _, t := range m.teams {
		if match(t) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, team.ErrTeamNotFound
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (*team.Team, error) {
	return m.find(func(t *team.Team) bool { return t.ID == id })
}

func (m *memStore) GetByName(_ context.Context, name string) (*team.Team, error) {
	return m.find(func(t *team.Team) bool { return t.Name == name })
}

func (m *memStore) GetBySlug(_ context.Context, slug string) (*team.Team, error) {
	return m.find(func(t *team.Team) bool { return t.Slug == slug })
}

func (m *memStore) GetByInviteCode(_ context.Context, code string) (*team.Team, error) {
	return m.find(func(t *team.Team) bool { return t.InviteCode == code })
}

func (m *memStore) CreateWithOwner(_ context.Context, t *team.Team, profileID uuid.UUID) error {
	m.creates++
	if len(m.createErrs) > 0 {
		err := m.createErrs[0]
		m.createErrs = m.createErrs[1:]
		if err != nil {
			return err
		}
	}
	p, ok := m.profiles[profileID]
	if !ok {
		return profile.ErrProfileNotFound
	}
	if p.TeamID != nil {
		return team.ErrAlreadyInTeam
	}
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	cp := *t
	m.teams[t.ID] = &cp
	p.TeamID = &t.ID
	return nil
}

func (m *memStore) AssignProfile(_ context.Context, profileID, teamID uuid.UUID) error {
	p, ok := m.profiles[profileID]
	if !ok {
		return profile.ErrProfileNotFound
	}
	if p.TeamID != nil {
		return team.ErrAlreadyInTeam
	}
	p.TeamID = &teamID
	return nil
}

type memProfiles struct{ m *memStore }

func (p memProfiles) GetByID(_ context.Context, id uuid.UUID) (*profile.Profile, error) {
	pr, ok := p.m.profiles[id]
	if !ok {
		return nil, profile.ErrProfileNotFound
	}
	cp := *pr
	return &cp, nil
}

func (p memProfiles) ListByTeam(_ context.Context, teamID uuid.UUID) ([]profile.Profile, error) {
	out := []profile.Profile{}
	for _, pr := range p.m.profiles {
		if pr.TeamID != nil && *pr.TeamID == teamID {
			out = append(out, *pr)
		}
	}
	return out, nil
}

func newService(m *memStore) *team.Service {
	return team.NewService(m, memProfiles{m}, nil)
}

// ===== Create =====

func TestCreate_AssignsCreator(t *testing.T) {
	m := newMemStore()
	caller := m.addProfile(nil)

	created, err := newService(m).Create(context.Background(), caller, "Acme", "")

	require.NoError(t, err)
	assert.Equal(t, "Acme", created.Name)
	assert.Equal(t, "acme", created.Slug)
	assert.Regexp(t, `^[0-9A-Z]{6}$`, created.InviteCode)
	require.NotNil(t, m.profiles[caller].TeamID)
	assert.Equal(t, created.ID, *m.profiles[caller].TeamID)
}

func TestCreate_FallbackSlug(t *testing.T) {
	m := newMemStore()
	caller := m.addProfile(nil)

	created, err := newService(m).Create(context.Background(), caller, "A!@#", "")

	require.NoError(t, err)
	assert.Regexp(t, `^team-[0-9a-z]{6}$`, created.Slug)
}

func TestCreate_BlankName(t *testing.T) {
	m := newMemStore()
	caller := m.addProfile(nil)

	_, err := newService(m).Create(context.Background(), caller, "   ", "")

	assert.ErrorIs(t, err, team.ErrNameRequired)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))
}

func TestCreate_DuplicateName(t *testing.T) {
	m := newMemStore()
	m.addTeam("Acme", "acme-original", "AAAAAA")
	caller := m.addProfile(nil)

	_, err := newService(m).Create(context.Background(), caller, "Acme", "other")

	assert.ErrorIs(t, err, team.ErrDuplicateTeamName)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
	assert.Len(t, m.teams, 1)
	assert.Nil(t, m.profiles[caller].TeamID)
	assert.Zero(t, m.creates)
}

func TestCreate_DuplicateSlug(t *testing.T) {
	m := newMemStore()
	m.addTeam("Acme Inc", "acme", "AAAAAA")
	caller := m.addProfile(nil)

	_, err := newService(m).Create(context.Background(), caller, "Acme", "")

	assert.ErrorIs(t, err, team.ErrDuplicateSlug)
	assert.Nil(t, m.profiles[caller].TeamID)
}

func TestCreate_AlreadyInTeam(t *testing.T) {
	m := newMemStore()
	existing := m.addTeam("Alpha", "alpha", "AAAAAA")
	caller := m.addProfile(&existing.ID)

	_, err := newService(m).Create(context.Background(), caller, "Beta", "")

	assert.ErrorIs(t, err, team.ErrAlreadyInTeam)
	assert.Equal(t, apperr.InvalidState, apperr.KindOf(err))
	assert.Equal(t, existing.ID, *m.profiles[caller].TeamID)
	assert.Len(t, m.teams, 1)
}

func TestCreate_RetriesInviteCodeCollision(t *testing.T) {
	m := newMemStore()
	m.createErrs = []error{team.ErrDuplicateInviteCode, team.ErrDuplicateInviteCode}
	caller := m.addProfile(nil)

	created, err := newService(m).Create(context.Background(), caller, "Acme", "")

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, 3, m.creates)
}

func TestCreate_GivesUpAfterRepeatedCollisions(t *testing.T) {
	m := newMemStore()
	for i := 0; i < 5; i++ {
		m.createErrs = append(m.createErrs, team.ErrDuplicateInviteCode)
	}
	caller := m.addProfile(nil)

	_, err := newService(m).Create(context.Background(), caller, "Acme", "")

	assert.Equal(t, apperr.Internal, apperr.KindOf(err))
	assert.Equal(t, 5, m.creates)
}

func TestCreate_RepositoryErrorPropagates(t *testing.T) {
	m := newMemStore()
	m.createErrs = []error{apperr.FromDatastore("inserting team", errors.New("boom"))}
	caller := m.addProfile(nil)

	_, err := newService(m).Create(context.Background(), caller, "Acme", "")

	assert.Equal(t, apperr.Internal, apperr.KindOf(err))
}

// ===== Join =====

func TestJoin_Success(t *testing.T) {
	m := newMemStore()
	target := m.addTeam("Alpha", "alpha", "XYZ123")
	caller := m.addProfile(nil)

	joined, err := newService(m).Join(context.Background(), caller, " XYZ123 ")

	require.NoError(t, err)
	assert.Equal(t, target.ID, joined.ID)
	assert.Equal(t, target.ID, *m.profiles[caller].TeamID)
}

func TestJoin_UnknownCode(t *testing.T) {
	m := newMemStore()
	m.addTeam("Alpha", "alpha", "XYZ123")
	caller := m.addProfile(nil)

	_, err := newService(m).Join(context.Background(), caller, "NOPE00")

	assert.ErrorIs(t, err, team.ErrInvalidInviteCode)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	assert.Nil(t, m.profiles[caller].TeamID)
}

func TestJoin_CodeIsCaseSensitive(t *testing.T) {
	m := newMemStore()
	m.addTeam("Alpha", "alpha", "XYZ123")
	caller := m.addProfile(nil)

	_, err := newService(m).Join(context.Background(), caller, "xyz123")

	assert.ErrorIs(t, err, team.ErrInvalidInviteCode)
}

func TestJoin_BlankCode(t *testing.T) {
	m := newMemStore()
	caller := m.addProfile(nil)

	_, err := newService(m).Join(context.Background(), caller, "")

	assert.ErrorIs(t, err, team.ErrInviteCodeRequired)
}

func TestJoin_AlreadyInTeam(t *testing.T) {
	m := newMemStore()
	current := m.addTeam("Alpha", "alpha", "AAAAAA")
	other := m.addTeam("Beta", "beta", "BBBBBB")
	caller := m.addProfile(&current.ID)

	_, err := newService(m).Join(context.Background(), caller, other.InviteCode)

	assert.ErrorIs(t, err, team.ErrAlreadyInTeam)
	assert.Equal(t, current.ID, *m.profiles[caller].TeamID)
}

func TestJoin_UnknownProfile(t *testing.T) {
	m := newMemStore()

	_, err := newService(m).Join(context.Background(), uuid.New(), "AAAAAA")

	assert.ErrorIs(t, err, profile.ErrProfileNotFound)
}

// ===== Get / Members =====

func TestGet(t *testing.T) {
	m := newMemStore()
	mine := m.addTeam("Alpha", "alpha", "AAAAAA")
	theirs := m.addTeam("Beta", "beta", "BBBBBB")
	caller := m.addProfile(&mine.ID)
	svc := newService(m)

	got, err := svc.Get(context.Background(), caller, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got.Name)

	_, err = svc.Get(context.Background(), caller, theirs.ID)
	assert.ErrorIs(t, err, team.ErrNotMember)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	_, err = svc.Get(context.Background(), caller, uuid.New())
	assert.ErrorIs(t, err, team.ErrNotMember)
}

func TestGet_DoesNotRevealWhetherTeamExists(t *testing.T) {
	m := newMemStore()
	theirs := m.addTeam("Beta", "beta", "BBBBBB")
	outsider := m.addProfile(nil)
	svc := newService(m)

	_, errExisting := svc.Get(context.Background(), outsider, theirs.ID)
	_, errMissing := svc.Get(context.Background(), outsider, uuid.New())

	assert.ErrorIs(t, errExisting, team.ErrNotMember)
	assert.ErrorIs(t, errMissing, team.ErrNotMember)
	assert.Equal(t, apperr.KindOf(errExisting), apperr.KindOf(errMissing))
}

func TestMembers(t *testing.T) {
	m := newMemStore()
	mine := m.addTeam("Alpha", "alpha", "AAAAAA")
	caller := m.addProfile(&mine.ID)
	m.addProfile(&mine.ID)
	m.addProfile(nil)
	svc := newService(m)

	members, err := svc.Members(context.Background(), caller)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	_, err = svc.Members(context.Background(), m.addProfile(nil))
	assert.ErrorIs(t, err, team.ErrNotMember)
}
