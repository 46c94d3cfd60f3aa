package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"makerspace/internal/authz"
	"makerspace/internal/cardreader"
	"makerspace/internal/services"
	apperrors "makerspace/pkg/errors"
	"makerspace/pkg/utils"
	appwebsocket "makerspace/pkg/websocket"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ReaderController streams keystrokes from a kiosk's USB card reader and
// answers each completed swipe with an access decision.
type ReaderController struct {
	hub              *appwebsocket.Hub
	readerService    services.ReaderServiceInterface
	equipmentService services.EquipmentServiceInterface
	privileges       services.AuthPrivilegeServiceInterface
	logger           *zap.Logger
}

func NewReaderController(
	hub *appwebsocket.Hub,
	readerService services.ReaderServiceInterface,
	equipmentService services.EquipmentServiceInterface,
	privileges services.AuthPrivilegeServiceInterface,
	logger *zap.Logger,
) *ReaderController {
	return &ReaderController{
		hub:              hub,
		readerService:    readerService,
		equipmentService: equipmentService,
		privileges:       privileges,
		logger:           logger,
	}
}

func (c *ReaderController) ServeWs(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	equipmentID, err := utils.ParseIDParam(ctx, "equipmentID")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := authz.Require(reqCtx, authz.ReadersOperate); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if _, err := c.equipmentService.Get(reqCtx, equipmentID); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	conn, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		c.logger.Error("reader websocket upgrade failed", zap.Error(err))
		return err
	}

	client := appwebsocket.NewClient(c.hub, conn, equipmentID, c.logger)
	c.hub.Register(client)
	go client.WritePump()

	session := &readerSession{
		controller: c,
		client:     client,
		reader:     cardreader.New(),
	}
	session.sendState()

	// The request context carries the operator's identity, so the read loop
	// runs on the handler goroutine until the kiosk disconnects. The privilege
	// in it is only the one seen at connect time; see operator.
	client.ReadPump(func(message []byte) { session.handle(reqCtx, message) })
	return nil
}

type readerSession struct {
	controller *ReaderController
	client     *appwebsocket.Client
	reader     *cardreader.Reader
	revoked    bool
}

func (s *readerSession) sendState() {
	_ = s.controller.hub.SendToClient(s.client, appwebsocket.TypeReaderState, appwebsocket.ReaderStatePayload{
		SessionID: s.client.ID,
		State:     s.reader.State().String(),
	})
}

func (s *readerSession) sendError(message string) {
	_ = s.controller.hub.SendToClient(s.client, appwebsocket.TypeError, appwebsocket.ErrorPayload{Message: message})
}

// operator re-resolves the operator's current privilege, so a demoted or
// archived account stops operating readers on its next swipe.
func (s *readerSession) operator(ctx context.Context) (context.Context, error) {
	userID, err := authz.UserIDFromContext(ctx)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	privilege, err := s.controller.privileges.GetPrivilege(ctx, userID)
	if err != nil || !privilege.Valid() {
		return nil, apperrors.ErrUnauthorized
	}
	ctx = authz.WithActor(ctx, userID, privilege)
	if err := authz.Require(ctx, authz.ReadersOperate); err != nil {
		return nil, err
	}
	return ctx, nil
}

func (s *readerSession) handle(ctx context.Context, message []byte) {
	if s.revoked {
		return
	}
	var msg appwebsocket.KeyMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		s.sendError("malformed key message")
		return
	}

	before := s.reader.State()
	uid, done := s.reader.Feed(msg.Key)
	if !done {
		if s.reader.State() != before {
			s.sendState()
		}
		return
	}
	s.sendState()

	ctx, err := s.operator(ctx)
	if err != nil {
		_, text := utils.StatusFor(err)
		s.controller.logger.Warn("reader operator lost access", zap.String("sessionID", s.client.ID), zap.Error(err))
		s.sendError(text)
		s.revoked = true
		// Closing the send channel makes the write pump flush and close the connection.
		s.controller.hub.Unregister(s.client)
		return
	}

	result, err := s.controller.readerService.Swipe(ctx, s.client.EquipmentID, uid)
	if err != nil {
		_, text := utils.StatusFor(err)
		s.controller.logger.Warn("card swipe failed", zap.Uint64("equipmentID", s.client.EquipmentID), zap.Error(err))
		s.sendError(text)
	} else if err := s.controller.hub.SendToEquipment(s.client.EquipmentID, appwebsocket.TypeSwipeResult, result); err != nil {
		s.controller.logger.Error("broadcast swipe result", zap.Error(err))
	}

	s.reader.Reset()
	s.sendState()
}
