package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"notesync/cmd/internal/contract"
	"notesync/cmd/internal/service"
	"notesync/cmd/internal/utils/apierror"
	"strings"

	"github.com/labstack/echo/v4"
)

var errTrailingData = errors.New("unexpected data after JSON body")

type SyncService interface {
	CreateNote(ctx context.Context, req *contract.CreateNoteRequest) (*contract.CreateNoteResponse, apierror.ErrorResponse)
	GetNote(ctx context.Context, id string) (*contract.NoteResponse, apierror.ErrorResponse)
	PullSince(ctx context.Context, since int64) (*contract.PullResponse, apierror.ErrorResponse)
	PushBatch(ctx context.Context, req *contract.PushRequest) (*contract.PushResponse, apierror.ErrorResponse)
}

type DefaultSyncRoute struct {
	SyncService SyncService
}

func NewSyncDefault(syncService SyncService) *DefaultSyncRoute {
	return &DefaultSyncRoute{SyncService: syncService}
}

func (s *DefaultSyncRoute) AddNote(c echo.Context) error {
	var req contract.CreateNoteRequest
	if err := decodeJSON(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedJSONError)
	}

	resp, apierr := s.SyncService.CreateNote(c.Request().Context(), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (s *DefaultSyncRoute) GetNote(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, apierror.NewInvalidParamTypeError("id", "string"))
	}

	note, apierr := s.SyncService.GetNote(c.Request().Context(), id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, note)
}

func (s *DefaultSyncRoute) Pull(c echo.Context) error {
	since := service.ParseSince(c.QueryParam("since"))

	resp, apierr := s.SyncService.PullSince(c.Request().Context(), since)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *DefaultSyncRoute) Push(c echo.Context) error {
	var req contract.PushRequest
	if err := decodeJSON(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedJSONError)
	}

	resp, apierr := s.SyncService.PushBatch(c.Request().Context(), &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, resp)
}

// decodeJSON reads the body as a single JSON value whatever the Content-Type
// says. An empty body decodes to the zero value, anything after the value
// other than whitespace is rejected.
func decodeJSON(c echo.Context, dst any) error {
	body := c.Request().Body
	if body == nil {
		return nil
	}

	dec := json.NewDecoder(body)
	err := dec.Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return err
	}

	if _, err = dec.Token(); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}
