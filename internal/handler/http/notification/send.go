package notification

import (
	"encoding/json"
	"errors"
	"net/http"

	"notify-dispatch/internal/domain/entity"
	"notify-dispatch/internal/handler/http/respond"
	notifUC "notify-dispatch/internal/usecase/notification"
)

type sentResponse struct {
	Status  string `json:"status"`
	Channel string `json:"channel"`
}

type SendEmailHandler struct{ Svc *notifUC.Service }

type sendEmailRequest struct {
	To          string              `json:"to"`
	Subject     string              `json:"subject"`
	Body        string              `json:"body"`
	HTML        bool                `json:"html"`
	Credentials *entity.Credentials `json:"credentials"`
}

// ServeHTTP sends one email synchronously without storing it.
// @Summary      Send an email now
// @Tags         send
// @Accept       json
// @Produce      json
// @Param        email body sendEmailRequest true "Email"
// @Success      200 {object} sentResponse
// @Failure      400 {string} string "Bad request - invalid input"
// @Failure      502 {string} string "Transport rejected the message"
// @Failure      503 {string} string "Email channel unavailable"
// @Router       /send/email [post]
func (h SendEmailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req sendEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	in := notifUC.EmailInput{
		To:      req.To,
		Subject: req.Subject,
		Body:    req.Body,
		HTML:    req.HTML,
	}
	if req.Credentials != nil {
		in.Credentials = *req.Credentials
	}
	if err := h.Svc.SendEmail(r.Context(), in); err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, sentResponse{Status: "sent", Channel: entity.ChannelEmail.String()})
}

type SendTelegramHandler struct{ Svc *notifUC.Service }

type sendTelegramRequest struct {
	ChatID             string  `json:"chat_id"`
	Text               string  `json:"text"`
	BotToken           string  `json:"bot_token"`
	ParseMode          *string `json:"parse_mode"`
	DisableLinkPreview *bool   `json:"disable_web_page_preview"`
}

// @Summary      Send a Telegram message now
// @Tags         send
// @Accept       json
// @Produce      json
// @Param        message body sendTelegramRequest true "Message"
// @Success      200 {object} sentResponse
// @Failure      400 {string} string "Bad request - invalid input"
// @Failure      502 {string} string "Transport rejected the message"
// @Failure      503 {string} string "Telegram channel unavailable"
// @Router       /send/telegram [post]
func (h SendTelegramHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req sendTelegramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	err := h.Svc.SendTelegram(r.Context(), notifUC.TelegramInput{
		ChatID:             req.ChatID,
		Text:               req.Text,
		BotToken:           req.BotToken,
		ParseMode:          req.ParseMode,
		DisableLinkPreview: req.DisableLinkPreview,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, sentResponse{Status: "sent", Channel: entity.ChannelTelegram.String()})
}
