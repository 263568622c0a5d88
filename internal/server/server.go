package server

import (
	"errors"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/nubank/butu-chat/internal"
	"github.com/nubank/butu-chat/internal/config"
	"github.com/nubank/butu-chat/internal/provider"
)

// Server is the stateless relay between the widget and the chat provider.
type Server struct {
	chat         provider.ChatProvider
	maxBodyBytes int64
}

// NewRouter builds the gin engine: POST /chat, GET /health, and static assets
// from cfg.StaticDir for every other GET.
func NewRouter(cfg *config.Config, chat provider.ChatProvider) *gin.Engine {
	s := &Server{chat: chat, maxBodyBytes: cfg.MaxBodyBytes}

	r := gin.New()
	r.Use(requestID(), accessLog(), gin.CustomRecovery(recoverJSON), cors(cfg.AllowedOrigin))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "model": chat.Model(), "time": time.Now().Format(time.RFC3339)})
	})
	r.POST("/chat", s.handleChat)

	if st, err := os.Stat(cfg.StaticDir); err != nil || !st.IsDir() {
		log.Warn().Str("dir", cfg.StaticDir).Msg("static directory not found, widget assets will 404")
	}
	files := http.FileServer(http.Dir(cfg.StaticDir))
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	})

	return r
}

func (s *Server) handleChat(c *gin.Context) {
	logger := requestLogger(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxBodyBytes)

	var req internal.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn().Int64("limit", tooLarge.Limit).Msg("chat request body too large")
			c.JSON(http.StatusRequestEntityTooLarge, internal.ChatReply{Reply: internal.ReplyTooLarge})
			return
		}
		logger.Warn().Err(err).Msg("invalid chat request")
		c.JSON(http.StatusBadRequest, internal.ChatReply{Reply: internal.ReplyInvalidRequest})
		return
	}

	content := provider.BuildUserContent(req.Message, req.ImageBase64)
	logger.Debug().
		Int("message_len", len(req.Message)).
		Bool("image", content.ImageURL != "").
		Msg("relaying chat message")

	reply, err := s.chat.Reply(c.Request.Context(), content)
	if err != nil {
		var upstream *provider.UpstreamError
		if errors.As(err, &upstream) {
			logger.Error().
				Int("upstream_status", upstream.StatusCode).
				Str("upstream_body", upstream.Body).
				Msg("chat provider returned an error")
			c.JSON(http.StatusInternalServerError, internal.ChatReply{Reply: internal.ReplyUpstreamError})
			return
		}
		logger.Error().Err(err).Msg("chat relay failed")
		c.JSON(http.StatusInternalServerError, internal.ChatReply{Reply: internal.ReplyServerError})
		return
	}

	if reply == "" {
		reply = internal.ReplyCouldNotAnswer
	}
	c.JSON(http.StatusOK, internal.ChatReply{Reply: reply})
}
