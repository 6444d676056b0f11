package service

import (
	"context"
	"regexp"
	"strings"

	"connectsphere/internal/model"
	"connectsphere/internal/repository"
	"connectsphere/pkg/errs"
)

// snippetLength is how much of a message a mention activity keeps.
const snippetLength = 100

var mentionPattern = regexp.MustCompile(`@(\w+)`)

// ExtractMentions returns each distinct @name in text, in order of first
// appearance, leaving out author.
func ExtractMentions(text, author string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		name := m[1]
		if name == author {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Snippet cuts text to the first n runes.
func Snippet(text string, n int) string {
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n])
}

type MessageService struct {
	messages   *repository.MessageRepository
	activities *repository.ActivityRepository
}

func NewMessageService(messages *repository.MessageRepository, activities *repository.ActivityRepository) *MessageService {
	return &MessageService{messages: messages, activities: activities}
}

// Post stores msg, then one mention activity per distinct user mentioned
// other than the author. msg carries its stored ID even when recording the
// activities fails.
func (s *MessageService) Post(ctx context.Context, msg *model.Message) ([]*model.Activity, error) {
	msg.Room = strings.TrimSpace(msg.Room)
	if msg.Room == "" || msg.Author == "" {
		return nil, errs.Invalid("room and author are required")
	}
	if strings.TrimSpace(msg.Content) == "" {
		return nil, errs.Invalid("message is empty")
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	mentions := ExtractMentions(msg.Content, msg.Author)
	if len(mentions) == 0 {
		return nil, nil
	}
	snippet := Snippet(msg.Content, snippetLength)
	activities := make([]*model.Activity, 0, len(mentions))
	for _, target := range mentions {
		activities = append(activities, &model.Activity{
			Type:       model.ActivityMention,
			TargetUser: target,
			FromUser:   msg.Author,
			Channel:    msg.Room,
			Message:    snippet,
		})
	}
	if err := s.activities.CreateBatch(ctx, activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// History latest limit messages of room, oldest first.
func (s *MessageService) History(ctx context.Context, room string, limit int) ([]model.Message, error) {
	return s.messages.History(ctx, room, limit)
}

// Clear deletes the whole history of room.
func (s *MessageService) Clear(ctx context.Context, room string) (int64, error) {
	if room == "" {
		return 0, errs.Invalid("room is required")
	}
	return s.messages.DeleteByRoom(ctx, room)
}
