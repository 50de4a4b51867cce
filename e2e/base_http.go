package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"intent-chat/ai"
	"intent-chat/api"
	"intent-chat/moderation"
	"intent-chat/observability"
	"intent-chat/repositories"
	"intent-chat/services"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/suite"
)

// trainingCorpus is the small fixture the in-process stack trains on. It has
// to be separable enough that a few hundred epochs pin the obvious intents.
var trainingCorpus = []ai.TrainingExample{
	{Pattern: "hello", Intent: "greeting"},
	{Pattern: "hi there", Intent: "greeting"},
	{Pattern: "hey how are you", Intent: "greeting"},
	{Pattern: "good morning", Intent: "greeting"},
	{Pattern: "bye", Intent: "farewell"},
	{Pattern: "goodbye see you", Intent: "farewell"},
	{Pattern: "see you later", Intent: "farewell"},
	{Pattern: "thanks a lot", Intent: "thanks"},
	{Pattern: "thank you so much", Intent: "thanks"},
	{Pattern: "i need help", Intent: "help"},
	{Pattern: "can you help me please", Intent: "help"},
}

// BaseHTTPSuite boots the full stack (badger, bluge, trained classifier,
// router) behind an httptest server, unless E2E_BASE_URL targets a running
// instance.
type BaseHTTPSuite struct {
	suite.Suite

	Config  Config
	baseURL string

	server *httptest.Server
	db     *badger.DB
	search *repositories.SearchRepository
}

func (s *BaseHTTPSuite) SetupSuite() {
	cfg, err := LoadConfig()
	s.Require().NoError(err)
	s.Config = cfg

	if cfg.BaseURL != "" {
		s.baseURL = cfg.BaseURL
		return
	}

	log := slog.Default()

	db, err := badger.Open(badger.DefaultOptions(s.T().TempDir()).WithLoggingLevel(badger.ERROR))
	s.Require().NoError(err)
	s.db = db

	search, err := repositories.NewSearchRepository(s.T().TempDir(), log)
	s.Require().NoError(err)
	s.search = search

	classifier, err := ai.TrainClassifier(trainingCorpus, ai.TrainingConfig{
		HiddenSize:   8,
		Epochs:       300,
		LearningRate: 0.1,
		Seed:         42,
	}, log)
	s.Require().NoError(err)

	moderator, err := moderation.NewModerator([]string{"stupid"}, '*')
	s.Require().NoError(err)

	users := repositories.NewUserRepository(db)
	ledger := repositories.NewLedgerRepository(db, log)
	chats := repositories.NewChatRepository(db, log, nil)
	monitoring := observability.NewMonitoringManager(log)

	authService := services.NewAuthService(users, 4000, 24*time.Hour)
	chatService := services.NewChatService(
		classifier, ai.NewTemplateResponder(), moderator,
		ledger, chats, search, log, 100, 2000,
	)

	handler := api.NewHandler(authService, chatService, users, ledger, monitoring, log)
	s.server = httptest.NewServer(api.NewRouter(handler))
	s.baseURL = s.server.URL
}

func (s *BaseHTTPSuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
	if s.search != nil {
		_ = s.search.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}

// PostJSON sends a JSON body and decodes the JSON response into out (when out
// is non-nil). The caller asserts on the returned status code.
func (s *BaseHTTPSuite) PostJSON(path, token string, body any, out any) int {
	payload, err := json.Marshal(body)
	s.Require().NoError(err)

	req, err := http.NewRequest(http.MethodPost, s.baseURL+path, bytes.NewReader(payload))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.do(req, out)
}

func (s *BaseHTTPSuite) GetJSON(path, token string, out any) int {
	req, err := http.NewRequest(http.MethodGet, s.baseURL+path, nil)
	s.Require().NoError(err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.do(req, out)
}

func (s *BaseHTTPSuite) do(req *http.Request, out any) int {
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	if s.Config.DebugJSON {
		s.T().Logf("%s %s -> %d\n%s", req.Method, req.URL.Path, resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		s.Require().NoError(json.Unmarshal(raw, out),
			fmt.Sprintf("undecodable response body: %s", raw))
	}
	return resp.StatusCode
}
