package referral_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/mauv0809/whack-a-blob/internal/attempts"
	"github.com/mauv0809/whack-a-blob/internal/config"
	"github.com/mauv0809/whack-a-blob/internal/database"
	"github.com/mauv0809/whack-a-blob/internal/identity"
	"github.com/mauv0809/whack-a-blob/internal/ledger"
	"github.com/mauv0809/whack-a-blob/internal/metrics"
	"github.com/mauv0809/whack-a-blob/internal/referral"
	"github.com/mauv0809/whack-a-blob/internal/scoring"
	"github.com/mauv0809/whack-a-blob/internal/season"
	"github.com/mauv0809/whack-a-blob/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	addrReferrer = "0xaaaa000000000000000000000000000000000001"
	addrReferral = "0xbbbb000000000000000000000000000000000002"
)

type testEnv struct {
	db       *sql.DB
	refs     *referral.Ledger
	scoring  *scoring.Service
	ledger   ledger.Ledger
	users    user.UserStore
	metrics  *metrics.Mock
	seasonID int64
	referrer *user.User
	referral *user.User
}

func setupTestDB(t *testing.T) (*testEnv, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	ctx := context.Background()

	seasons := season.New(db)
	s, err := seasons.CreateSeason(ctx, "S1")
	require.NoError(t, err)

	names := []string{"Alice", "Bob"}
	i := 0
	users := user.NewWithNameSource(db, func() string {
		n := names[i%len(names)]
		i++
		return n
	})
	l := ledger.New(db)
	m := metrics.NewMock()
	svc := scoring.NewService(l, attempts.NewTracker(l), nil, nil, m)
	refs := referral.NewLedger(users, referral.NewCreditStore(db), l, svc, seasons, m, config.ReferralConfig{
		SeasonID:     s.ID,
		SignupBonus:  500,
		BonusPercent: 10,
	})
	svc.SetNotifier(refs)

	referrer, _, err := users.GetOrCreate(ctx, addrReferrer)
	require.NoError(t, err)
	ref, _, err := users.GetOrCreate(ctx, addrReferral)
	require.NoError(t, err)

	return &testEnv{
		db:       db,
		refs:     refs,
		scoring:  svc,
		ledger:   l,
		users:    users,
		metrics:  m,
		seasonID: s.ID,
		referrer: referrer,
		referral: ref,
	}, teardown
}

func (e *testEnv) link(t *testing.T) {
	t.Helper()
	session := &identity.Session{UserID: e.referral.ID, Address: e.referral.Address, Role: identity.RolePlayer}
	require.NoError(t, e.refs.SaveReferral(context.Background(), session, addrReferral, e.referrer.ReferralUsername))
}

func TestSaveReferral_Ownership(t *testing.T) {
	env, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	stranger := &identity.Session{UserID: env.referrer.ID, Address: env.referrer.Address, Role: identity.RolePlayer}
	err := env.refs.SaveReferral(ctx, stranger, addrReferral, env.referrer.ReferralUsername)
	assert.ErrorIs(t, err, referral.ErrNotReferralOwner)

	admin := &identity.Session{UserID: 99, Address: "0xad00000000000000000000000000000000000001", Role: identity.RoleAdmin}
	require.NoError(t, env.refs.SaveReferral(ctx, admin, addrReferral, env.referrer.ReferralUsername))

	profile, err := env.refs.Profile(ctx, addrReferrer)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.ReferralCount)
}

func TestOnScoreAwarded_CreditsReferrerOnce(t *testing.T) {
	env, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	env.link(t)

	rec, err := env.scoring.AddPoints(ctx, env.referral.ID, env.seasonID, 100)
	require.NoError(t, err)

	profile, err := env.refs.Profile(ctx, addrReferrer)
	require.NoError(t, err)
	assert.Equal(t, int64(10), profile.ReferralPoints)
	assert.Equal(t, 1, env.metrics.ReferralCredits())

	// Redelivery of the same award.
	award := scoring.Award{UserID: env.referral.ID, SeasonID: env.seasonID, Delta: 100, RecordID: rec.ID, Source: ledger.SourcePoints}
	require.NoError(t, env.refs.OnScoreAwarded(ctx, award))

	profile, err = env.refs.Profile(ctx, addrReferrer)
	require.NoError(t, err)
	assert.Equal(t, int64(10), profile.ReferralPoints)
	assert.Equal(t, 1, env.metrics.ReferralCredits())
}

func TestOnScoreAwarded_RejectsAwardsThatDoNotMatchTheirRecord(t *testing.T) {
	env, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	env.link(t)

	points, err := env.ledger.AppendScore(ctx, env.referral.ID, env.seasonID, 100, ledger.SourcePoints)
	require.NoError(t, err)
	game, err := env.ledger.AppendScore(ctx, env.referral.ID, env.seasonID, 100, ledger.SourceGame)
	require.NoError(t, err)

	tests := []struct {
		name  string
		award scoring.Award
	}{
		{"unknown record", scoring.Award{UserID: env.referral.ID, SeasonID: env.seasonID, Delta: 100, RecordID: 987654, Source: ledger.SourcePoints}},
		{"record of another player", scoring.Award{UserID: env.referrer.ID, SeasonID: env.seasonID, Delta: 100, RecordID: points.ID, Source: ledger.SourcePoints}},
		{"wrong season", scoring.Award{UserID: env.referral.ID, SeasonID: 777, Delta: 100, RecordID: points.ID, Source: ledger.SourcePoints}},
		{"game record", scoring.Award{UserID: env.referral.ID, SeasonID: env.seasonID, Delta: 100, RecordID: game.ID, Source: ledger.SourcePoints}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.refs.OnScoreAwarded(ctx, tt.award)
			assert.ErrorIs(t, err, referral.ErrAwardMismatch)
		})
	}

	profile, err := env.refs.Profile(ctx, addrReferrer)
	require.NoError(t, err)
	assert.Equal(t, int64(0), profile.ReferralPoints)
	assert.Equal(t, 0, env.metrics.ReferralCredits())
}

func TestOnScoreAwarded_UsesRecordDelta(t *testing.T) {
	env, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	env.link(t)

	_, err := env.ledger.AppendScore(ctx, env.referral.ID, env.seasonID, 40, ledger.SourceGame)
	require.NoError(t, err)
	rec, err := env.ledger.AppendScore(ctx, env.referral.ID, env.seasonID, 200, ledger.SourcePoints)
	require.NoError(t, err)

	award := scoring.Award{UserID: env.referral.ID, SeasonID: env.seasonID, Delta: 1_000_000_000, RecordID: rec.ID, Source: ledger.SourcePoints}
	require.NoError(t, env.refs.OnScoreAwarded(ctx, award))

	profile, err := env.refs.Profile(ctx, addrReferrer)
	require.NoError(t, err)
	assert.Equal(t, int64(20), profile.ReferralPoints, "10% of the 200 the record added, not of the score or the claimed delta")
}

func TestOnScoreAwarded_Skips(t *testing.T) {
	env, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	t.Run("no referrer", func(t *testing.T) {
		_, err := env.scoring.AddPoints(ctx, env.referral.ID, env.seasonID, 100)
		require.NoError(t, err)
	})

	env.link(t)

	t.Run("referral bonus awards", func(t *testing.T) {
		rec, err := env.ledger.AppendScore(ctx, env.referral.ID, env.seasonID, 500, ledger.SourceReferral)
		require.NoError(t, err)
		require.NoError(t, env.refs.OnScoreAwarded(ctx, scoring.Award{
			UserID: env.referral.ID, SeasonID: env.seasonID, Delta: 500, RecordID: rec.ID, Source: ledger.SourceReferral,
		}))
		err = env.refs.OnScoreAwarded(ctx, scoring.Award{
			UserID: env.referral.ID, SeasonID: env.seasonID, Delta: 500, RecordID: rec.ID, Source: ledger.SourcePoints,
		})
		assert.ErrorIs(t, err, referral.ErrAwardMismatch)
	})

	t.Run("share rounds to zero", func(t *testing.T) {
		_, err := env.scoring.AddPoints(ctx, env.referral.ID, env.seasonID, 9)
		require.NoError(t, err)
	})

	profile, err := env.refs.Profile(ctx, addrReferrer)
	require.NoError(t, err)
	assert.Equal(t, int64(0), profile.ReferralPoints)
	assert.Equal(t, 0, env.metrics.ReferralCredits())
}

func TestStandardSubmissionDoesNotCredit(t *testing.T) {
	env, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	env.link(t)

	_, err := env.scoring.SubmitScore(ctx, env.referral.ID, env.seasonID, 100)
	require.NoError(t, err)

	profile, err := env.refs.Profile(ctx, addrReferrer)
	require.NoError(t, err)
	assert.Equal(t, int64(0), profile.ReferralPoints)
}

func TestCreditSignupBonus(t *testing.T) {
	env, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	env.link(t)

	referrer, err := env.users.GetByID(ctx, env.referrer.ID)
	require.NoError(t, err)

	points, err := env.refs.CreditSignupBonus(ctx, referrer)
	require.NoError(t, err)
	assert.Equal(t, int64(500), points)

	score, err := env.ledger.LatestScore(ctx, referrer.ID, env.seasonID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), score)

	points, err = env.refs.CreditSignupBonus(ctx, referrer)
	require.NoError(t, err)
	assert.Equal(t, int64(0), points, "the same referrals are paid once")

	// Referral bonuses never cascade into referral credits for the referrer's own referrer.
	assert.Equal(t, 0, env.metrics.ReferralCredits())
}

func TestCreditSignupBonus_MissingSeasonKeepsClaim(t *testing.T) {
	env, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	env.link(t)

	l := ledger.New(env.db)
	m := metrics.NewMock()
	svc := scoring.NewService(l, attempts.NewTracker(l), nil, nil, m)
	misconfigured := referral.NewLedger(env.users, referral.NewCreditStore(env.db), l, svc, season.New(env.db), m, config.ReferralConfig{
		SeasonID:     999,
		SignupBonus:  500,
		BonusPercent: 10,
	})

	referrer, err := env.users.GetByID(ctx, env.referrer.ID)
	require.NoError(t, err)
	_, err = misconfigured.CreditSignupBonus(ctx, referrer)
	assert.ErrorIs(t, err, season.ErrSeasonNotFound)

	points, err := env.refs.CreditSignupBonus(ctx, referrer)
	require.NoError(t, err)
	assert.Equal(t, int64(500), points, "a failed payout leaves the referrals unclaimed")
}

func TestProfile_NotFound(t *testing.T) {
	env, teardown := setupTestDB(t)
	defer teardown()

	_, err := env.refs.Profile(context.Background(), "0xcccc000000000000000000000000000000000003")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}
