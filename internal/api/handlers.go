package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/derivaventura/server/internal/auth"
	"github.com/derivaventura/server/internal/domain/question"
	"github.com/derivaventura/server/internal/infra/storage"
)

const rankingCacheKey = "top10"

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) registerHandler(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username, email and password are required"})
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if len(req.Username) < 3 || len(req.Password) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username must be at least 3 characters and password at least 6"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process password"})
		return
	}

	id, err := s.players.Create(c.Request.Context(), req.Username, req.Email, string(hash))
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "username or email already taken"})
			return
		}
		s.log.Error("Failed to create player %q: %v", req.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
		return
	}

	s.log.Info("Registered player %q (id=%d)", req.Username, id)
	c.JSON(http.StatusCreated, gin.H{"id": id, "username": req.Username})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) loginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	player, err := s.players.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		s.log.Error("Login lookup failed for %q: %v", req.Username, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(player.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token := s.tokens.Issue(auth.Identity{PlayerID: player.ID, Username: player.Username})
	c.JSON(http.StatusOK, gin.H{
		"token":       token,
		"username":    player.Username,
		"bonus_lives": player.BonusLives,
	})
}

func (s *Server) rankingHandler(c *gin.Context) {
	if entries, ok := s.ranking.Get(rankingCacheKey); ok {
		c.JSON(http.StatusOK, gin.H{"ranking": entries})
		return
	}

	entries, err := s.matches.TopScores(c.Request.Context(), 10)
	if err != nil {
		s.log.Error("Failed to load ranking: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load ranking"})
		return
	}
	s.ranking.Set(rankingCacheKey, entries)
	c.JSON(http.StatusOK, gin.H{"ranking": entries})
}

func today() string {
	return time.Now().Format("2006-01-02")
}

func (s *Server) dailyQuestionHandler(c *gin.Context) {
	dq, err := s.daily.ForDate(c.Request.Context(), today())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no daily question scheduled"})
			return
		}
		s.log.Error("Failed to load daily question: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load daily question"})
		return
	}

	s.rngMu.Lock()
	shuffled := question.Shuffle(s.rng, question.Question{
		ID:            dq.ID,
		Statement:     dq.Statement,
		CorrectAnswer: dq.CorrectAnswer,
		DistractorB:   dq.DistractorB,
		DistractorC:   dq.DistractorC,
		DistractorD:   dq.DistractorD,
	})
	s.rngMu.Unlock()
	c.JSON(http.StatusOK, gin.H{
		"id":        dq.ID,
		"statement": dq.Statement,
		"options":   shuffled.Options,
	})
}

type dailyAnswerRequest struct {
	QuestionID int64  `json:"question_id" binding:"required"`
	Answer     string `json:"answer" binding:"required"`
}

func (s *Server) dailyAnswerHandler(c *gin.Context) {
	var req dailyAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question_id and answer are required"})
		return
	}
	identity := identityFrom(c)

	dq, err := s.daily.Get(c.Request.Context(), req.QuestionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown daily question"})
		return
	}
	if dq.Date != today() {
		c.JSON(http.StatusGone, gin.H{"error": "that daily question has expired"})
		return
	}
	if !s.markAttempt(identity.PlayerID) {
		c.JSON(http.StatusConflict, gin.H{"error": "daily question already attempted today"})
		return
	}

	correct := req.Answer == dq.CorrectAnswer
	if correct {
		if err := s.players.AddBonusLife(c.Request.Context(), identity.PlayerID); err != nil {
			s.log.Error("Failed to award bonus life to player %d: %v", identity.PlayerID, err)
		} else {
			s.log.Event("DAILY_BONUS_LIFE", identity.Username, "Answered the daily question correctly")
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"correct":        correct,
		"correct_answer": dq.CorrectAnswer,
	})
}
