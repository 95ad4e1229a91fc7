package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"pulsechat/internal/domain/entity"
	"pulsechat/internal/usecase"
	"pulsechat/pkg/response"
	"pulsechat/pkg/utils"
)

type ChatHandler struct {
	chatUseCase    *usecase.ChatUseCase
	messageUseCase *usecase.MessageUseCase
	identity       *usecase.IdentityUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase, messageUseCase *usecase.MessageUseCase, identity *usecase.IdentityUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase:    chatUseCase,
		messageUseCase: messageUseCase,
		identity:       identity,
	}
}

type createChatRequest struct {
	ParticipantIDs []string `json:"participant_ids" validate:"required,min=1"`
	Name           string   `json:"name"`
	IsGroup        bool     `json:"is_group"`
	ImageRef       string   `json:"image_ref"`
}

type sendMessageRequest struct {
	Text  string                   `json:"text"`
	Media []entity.MediaAttachment `json:"media"`
}

type markReadRequest struct {
	MessageIDs []string `json:"message_ids" validate:"required,min=1"`
}

func (h *ChatHandler) CreateChat(c echo.Context) error {
	user, err := currentUser(c, h.identity)
	if err != nil {
		return response.Error(c, err)
	}

	var req createChatRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	chat, err := h.chatUseCase.CreateChat(c.Request().Context(), user.ID, usecase.CreateChatInput{
		ParticipantIDs: req.ParticipantIDs,
		Name:           req.Name,
		IsGroup:        req.IsGroup,
		ImageRef:       req.ImageRef,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, chat)
}

func (h *ChatHandler) ListChats(c echo.Context) error {
	user, err := currentUser(c, h.identity)
	if err != nil {
		return response.Error(c, err)
	}

	params := utils.GetPaginationParams(c, 20)

	chats, total, err := h.chatUseCase.ListChats(c.Request().Context(), user.ID, params.Limit, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, chats, total, params.Limit, params.Offset)
}

func (h *ChatHandler) GetChatByID(c echo.Context) error {
	user, err := currentUser(c, h.identity)
	if err != nil {
		return response.Error(c, err)
	}

	chat, err := h.chatUseCase.GetChatByID(c.Request().Context(), user.ID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, chat)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	user, err := currentUser(c, h.identity)
	if err != nil {
		return response.Error(c, err)
	}

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.messageUseCase.SendMessage(c.Request().Context(), user.ID, usecase.SendMessageInput{
		ChatID: c.Param("id"),
		Text:   req.Text,
		Media:  req.Media,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *ChatHandler) ListMessages(c echo.Context) error {
	user, err := currentUser(c, h.identity)
	if err != nil {
		return response.Error(c, err)
	}

	params := utils.GetPaginationParams(c, 50)

	var before time.Time
	if beforeStr := c.QueryParam("before"); beforeStr != "" {
		parsed, err := time.Parse(time.RFC3339, beforeStr)
		if err == nil {
			before = parsed
		}
	}

	messages, err := h.messageUseCase.ListMessages(c.Request().Context(), user.ID, c.Param("id"), params.Limit, before)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, messages)
}

func (h *ChatHandler) MarkRead(c echo.Context) error {
	user, err := currentUser(c, h.identity)
	if err != nil {
		return response.Error(c, err)
	}

	var req markReadRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	if err := h.messageUseCase.MarkRead(c.Request().Context(), user.ID, c.Param("id"), req.MessageIDs); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusOK)
}
