package cli

import (
	"context"
	stderrors "errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/toyz/buildergen/internal/errors"
	"github.com/toyz/buildergen/internal/generator"
	"github.com/toyz/buildergen/internal/parser"
	"github.com/toyz/buildergen/internal/utils"
)

const shutdownTimeout = 5 * time.Second

// GenerateRequest is the body of POST /v1/generate
type GenerateRequest struct {
	Filename string `json:"filename" validate:"required,endswith=.go"`
	Source   string `json:"source" validate:"required"`
}

// GenerateResponse carries the generated file for one source file
type GenerateResponse struct {
	RequestID string   `json:"request_id"`
	Filename  string   `json:"filename,omitempty"`
	Package   string   `json:"package"`
	Records   []string `json:"records"`
	Content   string   `json:"content"`
}

// ErrorResponse is returned for rejected requests and for sources with diagnostics
type ErrorResponse struct {
	RequestID   string           `json:"request_id"`
	Error       string           `json:"error"`
	Diagnostics []JSONDiagnostic `json:"diagnostics,omitempty"`
}

// Server exposes builder generation over HTTP
type Server struct {
	echo          *echo.Echo
	codeGenerator generator.CodeGenerator
	validate      *validator.Validate
	diagnostics   *utils.DiagnosticSystem
}

// NewServer creates the HTTP server and registers its routes
func NewServer(codeGenerator generator.CodeGenerator, diagnostics *utils.DiagnosticSystem) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:          e,
		codeGenerator: codeGenerator,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		diagnostics:   diagnostics,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(s.logRequest)

	e.GET("/healthz", s.handleHealth)
	e.POST("/v1/generate", s.handleGenerate)
	return s
}

// Handler returns the HTTP handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.echo.Start(addr); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	s.diagnostics.Info("Listening on %s", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}

func (s *Server) logRequest(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		s.diagnostics.Verbose("%s %s %d %s [%s]", c.Request().Method, c.Request().URL.Path,
			c.Response().Status, time.Since(start).Round(time.Microsecond), requestID(c))
		return err
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGenerate(c echo.Context) error {
	id := requestID(c)

	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{RequestID: id, Error: "invalid request body"})
	}
	if err := s.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{RequestID: id, Error: err.Error()})
	}

	reader := parser.NewSourceReader()
	pkg, err := reader.ParseSource(req.Filename, req.Source)
	if err != nil {
		var diag *errors.Diagnostic
		if stderrors.As(err, &diag) {
			return s.unprocessable(c, id, err)
		}
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			RequestID:   id,
			Error:       "source could not be parsed",
			Diagnostics: ToJSONDiagnostics(errors.Diagnostics(err), ""),
		})
	}

	records, err := parser.ParseRecords(pkg.Declarations)
	if err != nil {
		return s.unprocessable(c, id, err)
	}

	resp := GenerateResponse{
		RequestID: id,
		Package:   pkg.Name,
		Records:   []string{},
	}
	if len(records) == 0 {
		return c.JSON(http.StatusOK, resp)
	}

	file, err := s.codeGenerator.GenerateFile(pkg.Name, filepath.Dir(req.Filename), records)
	if err != nil {
		var multi *errors.MultipleErrors
		if stderrors.As(err, &multi) {
			return s.unprocessable(c, id, err)
		}
		return c.JSON(http.StatusInternalServerError, ErrorResponse{RequestID: id, Error: err.Error()})
	}

	resp.Filename = file.FilePath
	resp.Records = file.Records
	resp.Content = string(file.Content)
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) unprocessable(c echo.Context, id string, err error) error {
	diags := errors.Diagnostics(err)
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		RequestID:   id,
		Error:       "source has builder errors",
		Diagnostics: ToJSONDiagnostics(diags, ""),
	})
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
