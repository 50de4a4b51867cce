package e2e

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type testChatScenarioSuite struct {
	BaseHTTPSuite
}

func TestChatScenarioSuite(t *testing.T) {
	suite.Run(t, &testChatScenarioSuite{})
}

func (s *testChatScenarioSuite) TestFullChatFlow() {
	// Usernames must be unique when the suite runs against a shared instance.
	username := "user" + uuid.New().String()[:8]
	password := "ComplexPass123!"
	var token string

	s.Run("Step 1: Register a new account", func() {
		var resp struct {
			Token   string `json:"token"`
			Message string `json:"message"`
		}
		status := s.PostJSON("/api/register", "", map[string]string{
			"username": username,
			"password": password,
		}, &resp)

		s.Require().Equal(http.StatusCreated, status)
		s.Require().NotEmpty(resp.Token)
		s.Require().Equal("User registered successfully", resp.Message)
	})

	s.Run("Step 2: Login and keep the session token", func() {
		var resp struct {
			Token string `json:"token"`
		}
		status := s.PostJSON("/api/login", "", map[string]string{
			"username": username,
			"password": password,
		}, &resp)

		s.Require().Equal(http.StatusOK, status)
		s.Require().NotEmpty(resp.Token)
		token = resp.Token
	})

	s.Run("Step 3: Check the initial token grant", func() {
		var resp struct {
			Username string `json:"username"`
			Tokens   int64  `json:"tokens"`
		}
		status := s.GetJSON("/api/user/details", token, &resp)

		s.Require().Equal(http.StatusOK, status)
		s.Require().Equal(username, resp.Username)
		s.Require().EqualValues(4000, resp.Tokens)
	})

	s.Run("Step 4: Send a message and get a prediction", func() {
		var resp struct {
			Message         string `json:"message"`
			Response        string `json:"response"`
			PredictedIntent string `json:"predicted_intent"`
			RemainingTokens int64  `json:"remaining_tokens"`
		}
		status := s.PostJSON("/api/chat/send_message", token, map[string]string{
			"message": "hello there",
		}, &resp)

		s.Require().Equal(http.StatusOK, status)
		s.Require().Equal("greeting", resp.PredictedIntent)
		s.Require().Equal("Predicted intent: greeting", resp.Response)
		s.Require().EqualValues(3900, resp.RemainingTokens)
	})

	s.Run("Step 5: Balance reflects the debit", func() {
		var resp struct {
			Tokens int64 `json:"tokens"`
		}
		status := s.GetJSON("/api/user/balance", token, &resp)

		s.Require().Equal(http.StatusOK, status)
		s.Require().EqualValues(3900, resp.Tokens)
	})

	s.Run("Step 6: History contains the exchange", func() {
		var resp struct {
			Records []struct {
				Message  string `json:"message"`
				Response string `json:"response"`
				Intent   string `json:"intent"`
			} `json:"records"`
		}
		status := s.GetJSON("/api/chat/history", token, &resp)

		s.Require().Equal(http.StatusOK, status)
		s.Require().Len(resp.Records, 1)
		s.Require().Equal("hello there", resp.Records[0].Message)
		s.Require().Equal("greeting", resp.Records[0].Intent)
	})

	s.Run("Step 7: Search finds the exchange", func() {
		var resp struct {
			Hits []struct {
				Content string `json:"content"`
				Intent  string `json:"intent"`
			} `json:"hits"`
		}
		status := s.GetJSON("/api/chat/search?q=hello", token, &resp)

		s.Require().Equal(http.StatusOK, status)
		s.Require().NotEmpty(resp.Hits)
		s.Require().Contains(resp.Hits[0].Content, "hello there")
	})

	s.Run("Step 8: Blank messages are rejected without a debit", func() {
		status := s.PostJSON("/api/chat/send_message", token, map[string]string{
			"message": "   ",
		}, nil)
		s.Require().Equal(http.StatusBadRequest, status)

		var resp struct {
			Tokens int64 `json:"tokens"`
		}
		s.GetJSON("/api/user/balance", token, &resp)
		s.Require().EqualValues(3900, resp.Tokens)
	})

	s.Run("Step 9: Requests without a token are rejected", func() {
		status := s.GetJSON("/api/user/balance", "", nil)
		s.Require().Equal(http.StatusUnauthorized, status)
	})
}

func (s *testChatScenarioSuite) TestCreditExhaustion() {
	username := "user" + uuid.New().String()[:8]
	password := "ComplexPass123!"

	var registered struct {
		Token string `json:"token"`
	}
	status := s.PostJSON("/api/register", "", map[string]string{
		"username": username,
		"password": password,
	}, &registered)
	s.Require().Equal(http.StatusCreated, status)
	token := registered.Token

	// 4000 tokens fund exactly 40 messages at 100 apiece.
	for i := range 40 {
		var resp struct {
			RemainingTokens int64 `json:"remaining_tokens"`
		}
		status := s.PostJSON("/api/chat/send_message", token, map[string]string{
			"message": fmt.Sprintf("hello number %d", i),
		}, &resp)

		s.Require().Equal(http.StatusOK, status)
		s.Require().EqualValues(4000-int64(i+1)*100, resp.RemainingTokens)
	}

	s.Run("message 41 is refused for insufficient credit", func() {
		status := s.PostJSON("/api/chat/send_message", token, map[string]string{
			"message": "one more please",
		}, nil)
		s.Require().Equal(http.StatusBadRequest, status)
	})

	s.Run("balance stays at zero", func() {
		var resp struct {
			Tokens int64 `json:"tokens"`
		}
		s.GetJSON("/api/user/balance", token, &resp)
		s.Require().EqualValues(0, resp.Tokens)
	})
}
