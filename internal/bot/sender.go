package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const maxMessageRunes = 3500

// Sender wraps the Bot API with markdown delivery, UTF-8 sanitizing and
// splitting of long texts. It is shared by the command handlers and the
// reminder loops.
type Sender struct {
	api *tgbotapi.BotAPI
	log *zap.Logger
}

func NewSender(api *tgbotapi.BotAPI, log *zap.Logger) *Sender {
	return &Sender{api: api, log: log}
}

// SendMessage delivers markdown text, splitting it when Telegram's message
// size limit would reject it.
func (s *Sender) SendMessage(chatID int64, text string) error {
	// Telegram API rejects invalid UTF-8.
	text = strings.ToValidUTF8(text, " ")
	for _, part := range splitMessageText(text, maxMessageRunes) {
		msg := tgbotapi.NewMessage(chatID, part)
		msg.ParseMode = tgbotapi.ModeMarkdown
		if _, err := s.api.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

// Send is the best-effort variant: failures are logged, never returned.
func (s *Sender) Send(chatID int64, text string) {
	if err := s.SendMessage(chatID, text); err != nil {
		s.log.Error("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// SendDocument uploads a file from memory.
func (s *Sender) SendDocument(chatID int64, name string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	_, err := s.api.Send(doc)
	return err
}

func splitMessageText(text string, maxRunes int) []string {
	r := []rune(text)
	if len(r) <= maxRunes {
		return []string{text}
	}

	parts := make([]string, 0, (len(r)/maxRunes)+1)
	for len(r) > maxRunes {
		split := maxRunes
		for i := maxRunes; i > maxRunes/2; i-- {
			if r[i] == '\n' {
				split = i + 1
				break
			}
		}
		parts = append(parts, strings.TrimSpace(string(r[:split])))
		r = r[split:]
	}
	if rest := strings.TrimSpace(string(r)); rest != "" {
		parts = append(parts, rest)
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{text}
	}
	return out
}
