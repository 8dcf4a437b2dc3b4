package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"horse.fit/topicsearch/internal/auth"
	"horse.fit/topicsearch/internal/globaltime"
	"horse.fit/topicsearch/internal/payloadschema"
	"horse.fit/topicsearch/internal/pipeline"
)

func (s *Server) requireAdminToken() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if s.opts.AdminTokenHash == "" {
				return next(c)
			}
			token, ok := auth.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok || !auth.VerifyToken(token, s.opts.AdminTokenHash) {
				return failUnauthorized(c)
			}
			return next(c)
		}
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	payload := map[string]any{
		"service": "topicsearch",
		"time":    globaltime.UTC(),
	}
	if s.stats != nil {
		stats, err := s.stats.Stats(c.Request().Context())
		if err != nil {
			s.logger.Warn().Err(err).Msg("vector index stats unavailable")
			payload["index"] = map[string]any{"status": "unavailable"}
		} else {
			payload["index"] = stats
		}
	}
	return success(c, payload)
}

func (s *Server) handleTopics(c echo.Context) error {
	items, err := s.service.FetchTopics(c.Request().Context())
	if err != nil {
		return s.serviceError(c, "list topics", err)
	}
	return success(c, map[string]any{
		"items": items,
		"count": len(items),
	})
}

func (s *Server) handleIndex(c echo.Context) error {
	result, err := s.service.Ingest(c.Request().Context())
	if err != nil {
		return s.serviceError(c, "index topics", err)
	}
	return success(c, result)
}

func (s *Server) handleSearch(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	proposal, err := payloadschema.DecodeProposal(body)
	if err != nil {
		return s.serviceError(c, "decode proposal", err)
	}

	verdict, err := s.service.CheckDuplicate(c.Request().Context(), proposal)
	if err != nil {
		return s.serviceError(c, "check duplicate", err)
	}
	return success(c, verdict)
}

func (s *Server) handleAsk(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	question, err := payloadschema.DecodeQuestion(body)
	if err != nil {
		return s.serviceError(c, "decode question", err)
	}

	answer, err := s.service.Answer(c.Request().Context(), question)
	if err != nil {
		return s.serviceError(c, "answer question", err)
	}
	return success(c, answer)
}

// readBody returns echo errors such as 413 from the body limit unchanged so
// the error handler renders them.
func readBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return nil, he
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Failed to read request body")
	}
	return body, nil
}

// serviceError maps caller mistakes to 400, collaborator failures to 502
// and everything else to 500.
func (s *Server) serviceError(c echo.Context, op string, err error) error {
	if validationErr, ok := pipeline.IsValidation(err); ok {
		return failValidation(c, validationErr.Fields)
	}
	if pipeline.IsCollaboratorFailure(err) {
		s.logger.Error().Err(err).Str("op", op).Msg("collaborator failure")
		return badGateway(c, "Upstream service failed")
	}
	s.logger.Error().Err(err).Str("op", op).Msg("request failed")
	return internalError(c, "Internal server error")
}
