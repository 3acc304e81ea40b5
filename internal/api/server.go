// Package api exposes the account, ranking, and daily-question REST
// surface. Gameplay itself travels over the WebSocket connection.
package api

import (
	"math/rand"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/derivaventura/server/internal/auth"
	"github.com/derivaventura/server/internal/infra/cache"
	"github.com/derivaventura/server/internal/infra/storage"
	"github.com/derivaventura/server/internal/platform/config"
	"github.com/derivaventura/server/internal/platform/logger"
)

// Server wires repositories, auth, and the ranking cache into gin
// handlers.
type Server struct {
	cfg     *config.Config
	log     *logger.Logger
	players *storage.PlayerRepository
	matches *storage.MatchRepository
	daily   *storage.DailyQuestionRepository
	tokens  *auth.Store
	ranking cache.Cache[[]storage.RankingEntry]

	// rng shuffles daily-question options; guarded because gin runs
	// handlers concurrently and rand.Rand is not goroutine-safe.
	rngMu sync.Mutex
	rng   *rand.Rand

	limiterMu sync.RWMutex
	limiters  map[string]*RateLimiterWithTime

	// One daily-question attempt per player per day. Kept in memory;
	// a restart grants a retry, which is acceptable for a bonus life.
	attemptMu sync.Mutex
	attempts  map[int64]string
}

// markAttempt records today's attempt and reports whether it was the
// first one.
func (s *Server) markAttempt(playerID int64) bool {
	date := today()
	s.attemptMu.Lock()
	defer s.attemptMu.Unlock()
	if s.attempts[playerID] == date {
		return false
	}
	s.attempts[playerID] = date
	return true
}

func NewServer(cfg *config.Config, log *logger.Logger, players *storage.PlayerRepository,
	matches *storage.MatchRepository, daily *storage.DailyQuestionRepository,
	tokens *auth.Store, ranking cache.Cache[[]storage.RankingEntry], rng *rand.Rand) *Server {
	return &Server{
		cfg:      cfg,
		log:      log,
		players:  players,
		matches:  matches,
		daily:    daily,
		tokens:   tokens,
		ranking:  ranking,
		rng:      rng,
		limiters: make(map[string]*RateLimiterWithTime),
		attempts: make(map[int64]string),
	}
}

// Mount registers the REST routes on the router group.
func (s *Server) Mount(r gin.IRouter) {
	r.POST("/api/players/register", s.rateLimitMiddleware(), s.registerHandler)
	r.POST("/api/players/login", s.rateLimitMiddleware(), s.loginHandler)
	r.GET("/api/ranking", s.rankingHandler)
	r.GET("/api/daily-question", s.authMiddleware(), s.dailyQuestionHandler)
	r.POST("/api/daily-question/answer", s.authMiddleware(), s.dailyAnswerHandler)
}
