package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/whack-a-blob/internal/attempts"
	"github.com/mauv0809/whack-a-blob/internal/config"
	"github.com/mauv0809/whack-a-blob/internal/database"
	"github.com/mauv0809/whack-a-blob/internal/identity"
	"github.com/mauv0809/whack-a-blob/internal/leaderboard"
	"github.com/mauv0809/whack-a-blob/internal/ledger"
	"github.com/mauv0809/whack-a-blob/internal/metrics"
	"github.com/mauv0809/whack-a-blob/internal/notifier"
	"github.com/mauv0809/whack-a-blob/internal/pubsub"
	"github.com/mauv0809/whack-a-blob/internal/referral"
	"github.com/mauv0809/whack-a-blob/internal/scoring"
	"github.com/mauv0809/whack-a-blob/internal/season"
	"github.com/mauv0809/whack-a-blob/internal/user"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	testSlackSigningSecret = "test-signing-secret"
	testPushToken          = "test-push-token"

	addrAlice = "0xaaaa000000000000000000000000000000000001"
	addrBob   = "0xbbbb000000000000000000000000000000000002"
	addrAdmin = "0xadad000000000000000000000000000000000003"
)

type testEnv struct {
	server   *Server
	identity *identity.Mock
	notifier *notifier.Mock
	users    user.UserStore
	ledger   ledger.Ledger
	scorer   *scoring.Service
	seasonID int64
}

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			LoginRateLimit: 100,
			LoginRateBurst: 100,
		},
		Slack:          config.SlackConfig{SigningSecret: testSlackSigningSecret},
		RequestTimeout: 5 * time.Second,
		PushToken:      testPushToken,
	}
}

// setupTestServer wires the server over an in-memory database with mock identity and notifier.
func setupTestServer(t *testing.T, cfg config.Config) (*testEnv, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	ctx := context.Background()

	seasons := season.New(db)
	s1, err := seasons.CreateSeason(ctx, "S1")
	require.NoError(t, err)

	users := user.New(db)
	l := ledger.New(db)
	m := metrics.NewMock()
	boards := leaderboard.NewBuilder(l, seasons, nil, m)
	svc := scoring.NewService(l, attempts.NewTracker(l), nil, boards, m)
	refs := referral.NewLedger(users, referral.NewCreditStore(db), l, svc, seasons, m, config.ReferralConfig{
		SeasonID:     s1.ID,
		SignupBonus:  500,
		BonusPercent: 10,
	})
	svc.SetNotifier(refs)

	reg := prometheus.NewRegistry()
	metrics.NewService(reg)

	gateway := identity.NewMock()
	n := notifier.NewMock()
	server := NewServer(cfg, Deps{
		Users:          users,
		Seasons:        seasons,
		Scorer:         svc,
		Leaderboards:   boards,
		Referrals:      refs,
		Identity:       gateway,
		Notifier:       n,
		Metrics:        m,
		MetricsHandler: metrics.NewMetricsHandler(reg),
		PushDecoder:    pubsub.NewMock(),
		Awards:         refs,
	})

	return &testEnv{
		server:   server,
		identity: gateway,
		notifier: n,
		users:    users,
		ledger:   l,
		scorer:   svc,
		seasonID: s1.ID,
	}, teardown
}

// login creates the user at address and returns an access token for it.
func (e *testEnv) login(t *testing.T, address string, role identity.Role) (*user.User, string) {
	t.Helper()
	u, _, err := e.users.GetOrCreate(context.Background(), address)
	require.NoError(t, err)
	token := e.identity.AddSession(identity.Session{UserID: u.ID, Address: u.Address, Role: role})
	return u, token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.server.ServeHTTP(rr, req)
	return rr
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Error
}

// createSlackCommandRequest builds a slash command request signed with signingSecret.
func createSlackCommandRequest(t *testing.T, targetURL string, form url.Values, signingSecret string) *http.Request {
	t.Helper()

	body := form.Encode()
	req := httptest.NewRequest(http.MethodPost, targetURL, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	timestamp := time.Now().Unix()
	req.Header.Set("X-Slack-Request-Timestamp", strconv.FormatInt(timestamp, 10))

	h := hmac.New(sha256.New, []byte(signingSecret))
	h.Write([]byte(fmt.Sprintf("v0:%d:%s", timestamp, body)))
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(h.Sum(nil)))
	return req
}

func TestHealthCheckHandler(t *testing.T) {
	env, teardown := setupTestServer(t, testConfig())
	defer teardown()

	rr := env.do(t, http.MethodGet, "/healthcheck", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	env, teardown := setupTestServer(t, testConfig())
	defer teardown()

	rr := env.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "blob_")
}

func TestLoginHandler(t *testing.T) {
	env, teardown := setupTestServer(t, testConfig())
	defer teardown()

	t.Run("creates user and issues tokens", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/users/login", "", map[string]string{
			"address": addrAlice, "signature": "0xsig", "message": "hello",
		})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var tokens identity.Tokens
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tokens))
		assert.NotEmpty(t, tokens.AccessToken)
		assert.NotEmpty(t, tokens.RefreshToken)

		u, err := env.users.GetByAddress(context.Background(), addrAlice)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(u.ReferralUsername, "redfox-"))

		refresh := env.do(t, http.MethodPost, "/users/login/refresh", "", map[string]string{"refresh_token": tokens.RefreshToken})
		assert.Equal(t, http.StatusOK, refresh.Code)
	})

	t.Run("rejects invalid signature", func(t *testing.T) {
		env.identity.VerifySignatureFunc = func(address, message, signature string) error {
			return identity.ErrInvalidSignature
		}
		defer func() { env.identity.VerifySignatureFunc = nil }()

		rr := env.do(t, http.MethodPost, "/users/login", "", map[string]string{
			"address": addrBob, "signature": "0xsig", "message": "hello",
		})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Invalid signature", errorMessage(t, rr))

		_, err := env.users.GetByAddress(context.Background(), addrBob)
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/users/login", "", map[string]string{"address": addrBob})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("pays pending referral bonus on login", func(t *testing.T) {
		alice, err := env.users.GetByAddress(context.Background(), addrAlice)
		require.NoError(t, err)
		_, _, err = env.users.GetOrCreate(context.Background(), addrBob)
		require.NoError(t, err)
		require.NoError(t, env.users.LinkReferral(context.Background(), addrBob, alice.ReferralUsername))

		rr := env.do(t, http.MethodPost, "/users/login", "", map[string]string{
			"address": addrAlice, "signature": "0xsig", "message": "hello",
		})
		require.Equal(t, http.StatusOK, rr.Code)

		lives, err := env.scorer.Lives(context.Background(), alice.ID, env.seasonID)
		require.NoError(t, err)
		assert.Equal(t, 1, lives.CurrentAttempts, "the bonus record counts as one attempt")
	})
}

func TestLoginRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.LoginRateLimit = 0.001
	cfg.Auth.LoginRateBurst = 1
	env, teardown := setupTestServer(t, cfg)
	defer teardown()

	body := map[string]string{"address": addrAlice, "signature": "0xsig", "message": "hello"}
	first := env.do(t, http.MethodPost, "/users/login", "", body)
	assert.Equal(t, http.StatusOK, first.Code)

	second := env.do(t, http.MethodPost, "/users/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, tooManyRequestsMessage, errorMessage(t, second))
}

func TestAuthRequired(t *testing.T) {
	env, teardown := setupTestServer(t, testConfig())
	defer teardown()

	paths := []string{
		"/users/save-referral",
		"/users/view-profile",
		"/users/add-task",
		"/whack-a-blob/create-season",
		"/whack-a-blob/add-score",
		"/whack-a-blob/scoreboard",
		"/whack-a-blob/player-scoreboard",
		"/whack-a-blob/player-lives",
		"/whack-a-blob/add-points-alone",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, path, "", map[string]any{})
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Equal(t, "Authentication credentials were not provided", errorMessage(t, rr))

			rr = env.do(t, http.MethodPost, path, "bogus", map[string]any{})
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestAddScore_DailyLives(t *testing.T) {
	env, teardown := setupTestServer(t, testConfig())
	defer teardown()
	_, token := env.login(t, addrAlice, identity.RolePlayer)

	for i, delta := range []int{10, 5, 7} {
		rr := env.do(t, http.MethodPost, "/whack-a-blob/add-score", token, map[string]any{"season": env.seasonID, "score": delta})
		require.Equal(t, http.StatusOK, rr.Code, "submission %d: %s", i+1, rr.Body.String())
	}

	var last ledger.ScoreRecord
	rr := env.do(t, http.MethodPost, "/whack-a-blob/player-lives", token, map[string]any{"season": env.seasonID})
	require.Equal(t, http.StatusOK, rr.Code)
	var lives attempts.Lives
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &lives))
	assert.Equal(t, attempts.Lives{CurrentAttempts: 3, LivesLeft: 0}, lives)

	rr = env.do(t, http.MethodPost, "/whack-a-blob/add-score", token, map[string]any{"season": env.seasonID, "score": 1})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "You don't have any lives left", errorMessage(t, rr))

	rr = env.do(t, http.MethodPost, "/whack-a-blob/add-points-alone", token, map[string]any{"season": env.seasonID, "score": "3"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &last))
	assert.Equal(t, int64(25), last.Score)
	assert.Equal(t, ledger.SourcePoints, last.Source)
}

func TestAddScore_Validation(t *testing.T) {
	env, teardown := setupTestServer(t, testConfig())
	defer teardown()
	_, token := env.login(t, addrAlice, identity.RolePlayer)

	tests := []struct {
		name    string
		body    map[string]any
		status  int
		message string
	}{
		{"negative score", map[string]any{"season": env.seasonID, "score": -5}, http.StatusBadRequest, "Invalid value provided for score"},
		{"fractional score", map[string]any{"season": env.seasonID, "score": 1.5}, http.StatusBadRequest, "Invalid value provided for score"},
		{"missing score", map[string]any{"season": env.seasonID}, http.StatusBadRequest, "Invalid value provided for score"},
		{"missing season", map[string]any{"score": 5}, http.StatusBadRequest, "Invalid value provided for season"},
		{"unknown season", map[string]any{"season": 999, "score": 5}, http.StatusNotFound, "Season not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/whack-a-blob/add-score", token, tt.body)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.message, errorMessage(t, rr))
		})
	}

	rr := env.do(t, http.MethodPost, "/whack-a-blob/player-lives", token, map[string]any{"season": env.seasonID})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"current_attempts":0,"lives_left":3}`, rr.Body.String(), "rejected submissions consume no life")
}

func TestScoreboard(t *testing.T) {
	env, teardown := setupTestServer(t, testConfig())
	defer teardown()
	ctx := context.Background()

	alice, aliceToken := env.login(t, addrAlice, identity.RolePlayer)
	bob, _ := env.login(t, addrBob, identity.RolePlayer)

	_, err := env.scorer.SubmitScore(ctx, alice.ID, env.seasonID, 10)
	require.NoError(t, err)
	_, err = env.scorer.SubmitScore(ctx, bob.ID, env.seasonID, 20)
	require.NoError(t, err)
	_, err = env.scorer.SubmitScore(ctx, alice.ID, env.seasonID, 15)
	require.NoError(t, err)

	rr := env.do(t, http.MethodPost, "/whack-a-blob/scoreboard", aliceToken, map[string]any{"season": env.seasonID})
	require.Equal(t, http.StatusOK, rr.Code)
	var entries []leaderboard.Entry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	assert.Equal(t, []leaderboard.Entry{
		{Player: addrAlice, Score: 25, Season: "S1", Position: 1},
		{Player: addrBob, Score: 20, Season: "S1", Position: 2},
	}, entries)

	rr = env.do(t, http.MethodPost, "/whack-a-blob/player-scoreboard", aliceToken, map[string]any{"season": env.seasonID})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"player":"`+addrAlice+`","score":25,"season":"S1","position":1}`, rr.Body.String())

	t.Run("player without records", func(t *testing.T) {
		_, token := env.login(t, addrAdmin, identity.RolePlayer)
		rr := env.do(t, http.MethodPost, "/whack-a-blob/player-scoreboard", token, map[string]any{"season": env.seasonID})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("empty season", func(t *testing.T) {
		s2, err := env.server.Seasons.CreateSeason(ctx, "S2")
		require.NoError(t, err)
		rr := env.do(t, http.MethodPost, "/whack-a-blob/scoreboard", aliceToken, map[string]any{"season": s2.ID})
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})
}

func TestCreateSeason(t *testing.T) {
	env, teardown := setupTestServer(t, testConfig())
	defer teardown()
	_, playerToken := env.login(t, addrAlice, identity.RolePlayer)
	_, adminToken := env.login(t, addrAdmin, identity.RoleAdmin)

	rr := env.do(t, http.MethodPost, "/whack-a-blob/create-season", playerToken, map[string]string{"season": "S2"})
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "Admin role required", errorMessage(t, rr))

	rr = env.do(t, http.MethodPost, "/whack-a-blob/create-season?dry_run=true", adminToken, map[string]string{"season": "S2"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var created season.Season
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "S2", created.Name)
	assert.NotEqual(t, env.seasonID, created.ID)
	require.Len(t, env.notifier.SendSeasonCreatedCalls, 1)
	assert.Equal(t, "S2", env.notifier.SendSeasonCreatedCalls[0].Name)

	rr = env.do(t, http.MethodPost, "/whack-a-blob/create-season", adminToken, map[string]string{"season": ""})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAnnounceScoreboard(t *testing.T) {
	env, teardown := setupTestServer(t, testConfig())
	defer teardown()
	alice, _ := env.login(t, addrAlice, identity.RolePlayer)
	_, adminToken := env.login(t, addrAdmin, identity.RoleAdmin)
	_, err := env.scorer.SubmitScore(context.Background(), alice.ID, env.seasonID, 10)
	require.NoError(t, err)

	rr := env.do(t, http.MethodPost, "/whack-a-blob/announce-scoreboard", adminToken, map[string]any{"season": env.seasonID})
	require.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, env.notifier.SendLeaderboardCalls, 1)
	assert.Equal(t, "S1", env.notifier.SendLeaderboardCalls[0].SeasonName)
	assert.Len(t, env.notifier.SendLeaderboardCalls[0].Entries, 1)
}

func TestReferralEndpoints(t *testing.T) {
	env, teardown := setupTestServer(t, testConfig())
	defer teardown()
	alice, _ := env.login(t, addrAlice, identity.RolePlayer)
	bob, bobToken := env.login(t, addrBob, identity.RolePlayer)

	rr := env.do(t, http.MethodPost, "/users/save-referral", bobToken, map[string]string{
		"referral_address": addrAlice, "referrer_username": bob.ReferralUsername,
	})
	assert.Equal(t, http.StatusForbidden, rr.Code, "a player cannot link someone else")

	rr = env.do(t, http.MethodPost, "/users/save-referral", bobToken, map[string]string{
		"referral_address": addrBob, "referrer_username": "redfox-nobody",
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, http.MethodPost, "/users/save-referral", bobToken, map[string]string{
		"referral_address": addrBob, "referrer_username": alice.ReferralUsername,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = env.do(t, http.MethodPost, "/whack-a-blob/add-points-alone", bobToken, map[string]any{"season": env.seasonID, "score": 1000})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodPost, "/users/view-profile", bobToken, map[string]string{"address": addrAlice})
	require.Equal(t, http.StatusOK, rr.Code)
	var profile referral.Profile
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &profile))
	assert.Equal(t, referral.Profile{
		Address:          addrAlice,
		ReferralUsername: alice.ReferralUsername,
		ReferralCount:    1,
		ReferralPoints:   100,
	}, profile)

	rr = env.do(t, http.MethodPost, "/users/view-profile", bobToken, map[string]string{"address": "0xcccc000000000000000000000000000000000009"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAddTaskHandler(t *testing.T) {
	env, teardown := setupTestServer(t, testConfig())
	defer teardown()
	alice, token := env.login(t, addrAlice, identity.RolePlayer)

	rr := env.do(t, http.MethodPost, "/users/add-task", token, map[string]int{"twitter_task": 1, "telegram_task": 0, "whitelist_task": 1})
	require.Equal(t, http.StatusOK, rr.Code)

	u, err := env.users.GetByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Tasks{Twitter: 1, Whitelist: 1}, u.Tasks)

	rr = env.do(t, http.MethodPost, "/users/add-task", token, map[string]int{"twitter_task": 3})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func pushBody(t *testing.T, award scoring.Award) map[string]any {
	t.Helper()
	payload, err := msgpack.Marshal(award)
	require.NoError(t, err)
	return map[string]any{
		"subscription": "projects/test/subscriptions/score-awarded",
		"message":      map[string]string{"messageId": "1", "data": base64.StdEncoding.EncodeToString(payload)},
	}
}

func TestScoreAwardedPush(t *testing.T) {
	env, teardown := setupTestServer(t, testConfig())
	defer teardown()
	ctx := context.Background()
	alice, _ := env.login(t, addrAlice, identity.RolePlayer)
	bob, _ := env.login(t, addrBob, identity.RolePlayer)
	require.NoError(t, env.users.LinkReferral(ctx, addrBob, alice.ReferralUsername))

	// Stored without going through the scoring service, so only the push books the credit.
	rec, err := env.ledger.AppendScore(ctx, bob.ID, env.seasonID, 400, ledger.SourcePoints)
	require.NoError(t, err)
	pushPath := "/pubsub/score-awarded?token=" + testPushToken
	push := pushBody(t, scoring.Award{
		UserID:   bob.ID,
		SeasonID: env.seasonID,
		Delta:    400,
		RecordID: rec.ID,
		Source:   ledger.SourcePoints,
	})

	// Redelivery of the same message books the credit once.
	for i := 0; i < 2; i++ {
		rr := env.do(t, http.MethodPost, pushPath, "", push)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "OK", rr.Body.String())
	}

	profile, err := env.server.Referrals.Profile(ctx, addrAlice)
	require.NoError(t, err)
	assert.Equal(t, int64(40), profile.ReferralPoints)

	t.Run("missing token", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/pubsub/score-awarded", "", push)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("wrong token", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, "/pubsub/score-awarded?token=guess", "", push)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("award without a matching record", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, pushPath, "", pushBody(t, scoring.Award{
			UserID:   bob.ID,
			SeasonID: 777,
			Delta:    1_000_000_000,
			RecordID: 987654,
			Source:   ledger.SourcePoints,
		}))
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		rr = env.do(t, http.MethodPost, pushPath, "", pushBody(t, scoring.Award{
			UserID:   alice.ID,
			SeasonID: env.seasonID,
			Delta:    400,
			RecordID: rec.ID,
			Source:   ledger.SourcePoints,
		}))
		assert.Equal(t, http.StatusBadRequest, rr.Code, "the record belongs to bob")

		profile, err := env.server.Referrals.Profile(ctx, addrAlice)
		require.NoError(t, err)
		assert.Equal(t, int64(40), profile.ReferralPoints)
	})

	t.Run("invalid base64", func(t *testing.T) {
		rr := env.do(t, http.MethodPost, pushPath, "", map[string]any{
			"message": map[string]string{"data": "!!!"},
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestScoreAwardedPush_DisabledWithoutToken(t *testing.T) {
	cfg := testConfig()
	cfg.PushToken = ""
	env, teardown := setupTestServer(t, cfg)
	defer teardown()

	rr := env.do(t, http.MethodPost, "/pubsub/score-awarded", "", map[string]any{"message": map[string]string{"data": ""}})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestParamsMiddleware_VerboseIsPerRequest(t *testing.T) {
	original := log.GetLevel()
	defer log.SetLevel(original)
	log.SetLevel(log.InfoLevel)

	var requestLevel, globalLevel log.Level
	h := paramsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestLevel = log.FromContext(r.Context()).GetLevel()
		globalLevel = log.GetLevel()
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthcheck?verbose=true", nil))
	assert.Equal(t, log.DebugLevel, requestLevel)
	assert.Equal(t, log.InfoLevel, globalLevel, "the process-wide level is untouched")

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	assert.Equal(t, log.InfoLevel, requestLevel)
	assert.Equal(t, log.InfoLevel, log.GetLevel())
}

func TestScoreboardCommandHandler(t *testing.T) {
	env, teardown := setupTestServer(t, testConfig())
	defer teardown()

	t.Run("valid season", func(t *testing.T) {
		form := url.Values{}
		form.Set("text", strconv.FormatInt(env.seasonID, 10))
		req := createSlackCommandRequest(t, "/slack/command/scoreboard", form, testSlackSigningSecret)

		rr := httptest.NewRecorder()
		env.server.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "formatted_leaderboard")
	})

	t.Run("unknown season", func(t *testing.T) {
		env.notifier.Reset()
		form := url.Values{}
		form.Set("text", "999")
		req := createSlackCommandRequest(t, "/slack/command/scoreboard", form, testSlackSigningSecret)

		rr := httptest.NewRecorder()
		env.server.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		require.Len(t, env.notifier.FormatUsageResponseCalls, 1)
		assert.Contains(t, env.notifier.FormatUsageResponseCalls[0], "Season 999 does not exist")
	})

	t.Run("missing season", func(t *testing.T) {
		env.notifier.Reset()
		req := createSlackCommandRequest(t, "/slack/command/scoreboard", url.Values{}, testSlackSigningSecret)

		rr := httptest.NewRecorder()
		env.server.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, []string{"Usage: /scoreboard <season id>"}, env.notifier.FormatUsageResponseCalls)
	})

	t.Run("bad signature", func(t *testing.T) {
		form := url.Values{}
		form.Set("text", "1")
		req := createSlackCommandRequest(t, "/slack/command/scoreboard", form, "wrong-secret")

		rr := httptest.NewRecorder()
		env.server.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestIPRateLimiter_PrunesIdleEntries(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1)
	now := time.Now()
	limiter.now = func() time.Time { return now }
	for i := 0; i <= cleanupThreshold; i++ {
		limiter.GetLimiter(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}
	require.Equal(t, cleanupThreshold+1, limiter.size())

	now = now.Add(maxIdleAge + time.Minute)
	limiter.GetLimiter("192.168.0.1")
	assert.Equal(t, 1, limiter.size())
}
